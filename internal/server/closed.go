package server

import (
	"errors"
	"io"
	"net"
	"syscall"

	"aesdsocket/internal/linebuf"
)

// clientHungUp отличает уход клиента от поломки сервера.
//
// Клиент шлёт одну строку и ждёт весь файл, но может закрыть сокет
// раньше: до перевода строки (EOF, ErrUnterminated) или пока мы ещё
// пишем ответ (EPIPE, ECONNRESET). Строка при этом либо отброшена,
// либо уже на диске, так что это warn. net.ErrClosed приходит, когда
// соединение закрыто с нашей стороны.
func clientHungUp(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, linebuf.ErrUnterminated),
		errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}
	return false
}
