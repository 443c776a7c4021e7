package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"aesdsocket/internal/persistence/datafile"
)

// Run поднимает сервер и обслуживает соединения, пока не придёт Shutdown
// (или не отменится ctx). Возвращает nil при чистом завершении и
// у родителя после ухода в фон; ошибку — при сбое bind/accept/open.
//
// Ресурсы освобождаются ровно один раз на любом пути: файл данных
// закрывается всегда, удаляется только при чистом завершении;
// сокет закрывается всегда.
func (s *Server) Run(ctx context.Context) error {
	s.setState(StateStarting)
	defer s.setState(StateStopped)

	ln, err := s.listen(ctx)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	defer s.closeListener()
	s.setState(StateListening)

	if s.detach != nil {
		pid, err := s.detach(ln)
		if err != nil {
			return fmt.Errorf("fork: %w", err)
		}
		s.logger.Info(fmt.Sprintf("Forked daemon process %d. Exiting", pid))
		return nil
	}

	store, err := datafile.Open(s.dataPath, s.storeOpts...)
	if err != nil {
		return err
	}

	clean := false
	defer func() {
		s.setState(StateShuttingDown)
		if err := store.Close(); err != nil {
			s.logger.Error("close data file", "path", store.Path(), "error", err)
		}
		if !clean {
			return
		}
		if err := store.Remove(); err != nil {
			s.logger.Error("remove data file", "path", store.Path(), "error", err)
			return
		}
		s.logger.Info("removed data file", "path", store.Path())
	}()

	stop := context.AfterFunc(ctx, s.Shutdown)
	defer stop()

	s.logger.Info("aesdsocket listening", "addr", ln.Addr().String(), "data_file", store.Path())
	s.readyOnce.Do(func() { close(s.ready) })

	if err := s.acceptLoop(ln, store); err != nil {
		return err
	}

	s.logger.Info("Caught signal, exiting")
	clean = true
	return nil
}

// Shutdown выставляет флаг завершения и будит Accept.
// Текущее соединение дорабатывает до конца, флаг проверяется только
// между соединениями.
func (s *Server) Shutdown() {
	s.shutdown.Store(true)
	s.interruptAccept()
}

// Ready закрывается, когда сервер начал принимать соединения.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// acceptLoop принимает соединения по одному и обрабатывает каждое
// целиком до следующего Accept. nil — выход по флагу.
func (s *Server) acceptLoop(ln net.Listener, store *datafile.Store) error {
	for !s.shutdown.Load() {
		s.setState(StateAccepting)

		conn, err := ln.Accept()
		if err != nil {
			if s.shutdown.Load() || isInterrupted(err) {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.setState(StateHandling)
		if err := s.serveConn(conn, store); err != nil {
			s.logConnError(err)
		}
	}
	return nil
}

func (s *Server) serveConn(conn net.Conn, store *datafile.Store) error {
	defer conn.Close()
	return s.handleConnection(conn, store)
}

// isInterrupted — Accept прерван дедлайном из Shutdown.
func isInterrupted(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
