package datafile

import (
	"fmt"
	"io"
	"os"
)

// Open открывает (создаёт при отсутствии) файл на дозапись.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		mode:      DefaultMode,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s.file = f

	return s, nil
}

// Path возвращает путь к файлу.
func (s *Store) Path() string { return s.path }

// Append дописывает p целиком и делает fsync.
// Частичные записи продолжаются с оставшимися байтами.
func (s *Store) Append(p []byte) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := writeFull(s.file, p); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("fsync %s: %w", s.path, err)
	}
	return nil
}

// Close закрывает дескриптор. Повторный вызов ничего не делает.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// Remove удаляет файл с диска. Закрывать Store нужно отдельно.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeFull пишет p до конца, повторяя Write после частичной записи.
func writeFull(w io.Writer, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := w.Write(p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
