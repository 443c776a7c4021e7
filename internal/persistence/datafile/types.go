package datafile

import (
	"errors"
	"os"
)

/*

	datafile — append-only файл со всеми сообщениями клиентов.
	Запись — только в конец, с fsync перед возвратом.
	Чтение — отдельным read-only дескриптором, кусками фиксированного размера.

	Store не потокобезопасен: сервер обрабатывает соединения по одному.

*/

const (
	DefaultPath      = "/var/tmp/aesdsocketdata"
	DefaultMode      = os.FileMode(0644)
	DefaultChunkSize = 1024
)

// ErrClosed — операция над закрытым Store.
var ErrClosed = errors.New("datafile: store is closed")

// Store — открытый на дозапись файл данных.
type Store struct {
	path      string
	mode      os.FileMode
	chunkSize int
	file      *os.File
	closed    bool
}

// Option — функциональная опция Store.
type Option func(*Store)

// WithMode задаёт права при создании файла.
func WithMode(mode os.FileMode) Option {
	return func(s *Store) {
		s.mode = mode
	}
}

// WithChunkSize задаёт размер куска при чтении.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}
