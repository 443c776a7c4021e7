package server

import (
	"log/slog"
	"net"

	"aesdsocket/internal/persistence/datafile"
)

// Option — функциональная опция сервера.
type Option func(*Server)

// WithLogger задаёт логгер.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithListener отдаёт серверу уже привязанный сокет вместо bind по addr.
func WithListener(ln net.Listener) Option {
	return func(s *Server) {
		s.inherited = ln
	}
}

// WithDetacher включает режим демона: после bind вызывается detach,
// и родительский Run возвращается без обработки соединений.
func WithDetacher(detach Detacher) Option {
	return func(s *Server) {
		s.detach = detach
	}
}

// WithStoreOptions передаёт опции в datafile.Open.
func WithStoreOptions(opts ...datafile.Option) Option {
	return func(s *Server) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// WithLineSize задаёт стартовую ёмкость буфера строки и лимит (0 = без лимита).
func WithLineSize(initial, limit int) Option {
	return func(s *Server) {
		if initial > 0 {
			s.initialLineSize = initial
		}
		s.maxLineBytes = limit
	}
}
