package server

import (
	"log/slog"

	"aesdsocket/internal/linebuf"
)

// New создаёт сервер, слушающий addr и пишущий в файл dataPath.
func New(addr, dataPath string, opts ...Option) *Server {
	s := &Server{
		addr:            addr,
		dataPath:        dataPath,
		initialLineSize: linebuf.DefaultInitialSize,
		logger:          slog.Default(),
		ready:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
