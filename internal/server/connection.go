package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"aesdsocket/internal/linebuf"
	"aesdsocket/internal/persistence/datafile"
)

// handleConnection обрабатывает одно соединение: читает строку,
// дописывает её в файл с fsync и отправляет клиенту весь файл.
// Соединение закрывает вызывающий.
func (s *Server) handleConnection(conn net.Conn, store *datafile.Store) error {
	peer := peerIP(conn)
	s.logger.Info("Accepted connection from " + peer)

	buf := linebuf.New(s.initialLineSize, s.maxLineBytes)
	n, err := buf.ReadLine(bufio.NewReader(conn))
	if err != nil {
		return &connError{peer: peer, op: "receive", err: err}
	}

	// Ответ уходит только после того, как строка легла на диск.
	if err := store.Append(buf.Bytes()); err != nil {
		return &connError{peer: peer, op: "append", err: err}
	}
	size, err := store.Size()
	if err != nil {
		return &connError{peer: peer, op: "stat", err: err}
	}
	s.logger.Debug("stored packet", "peer", peer, "bytes", n, "file_size", size)

	sent, err := store.WriteTo(conn)
	if err != nil {
		return &connError{peer: peer, op: "send", err: err}
	}
	if sent != size {
		// Файл растёт только под этим же циклом, расхождение значит,
		// что его трогает кто-то снаружи.
		s.logger.Warn("data file changed while sending", "peer", peer, "expected", size, "sent", sent)
	}
	s.logger.Debug("sent data file", "peer", peer, "bytes", sent)

	s.logger.Info("Closed connection from " + peer)
	return nil
}

// peerIP возвращает IP клиента без порта.
func peerIP(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// connError — ошибка одного соединения. Сервер её логирует и продолжает.
type connError struct {
	peer string
	op   string
	err  error
}

func (e *connError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.op, e.peer, e.err)
}

func (e *connError) Unwrap() error { return e.err }

func (s *Server) logConnError(err error) {
	var ce *connError
	peer := ""
	if errors.As(err, &ce) {
		peer = ce.peer
	}
	if clientHungUp(err) {
		s.logger.Warn("connection dropped", "peer", peer, "error", err)
		return
	}
	s.logger.Error("connection failed", "peer", peer, "error", err)
}
