package server

import (
	"context"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Listen привязывает TCP-сокет к addr с SO_REUSEADDR,
// чтобы рестарт не упирался в адрес в TIME_WAIT.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	return lc.Listen(ctx, "tcp", addr)
}

func reuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func (s *Server) listen(ctx context.Context) (net.Listener, error) {
	ln := s.inherited
	if ln == nil {
		var err error
		ln, err = Listen(ctx, s.addr)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return ln, nil
}

// Addr возвращает адрес сокета после bind, до него — nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// interruptAccept будит заблокированный Accept: дедлайн в прошлом
// даёт timeout-ошибку, после которой цикл перепроверяет флаг.
func (s *Server) interruptAccept() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return
	}
	if d, ok := s.listener.(interface{ SetDeadline(time.Time) error }); ok {
		if err := d.SetDeadline(time.Now()); err == nil {
			return
		}
	}
	// Дедлайн не поддерживается — закрываем, Accept вернёт net.ErrClosed.
	s.listener.Close()
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}
