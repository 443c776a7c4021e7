package server

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"aesdsocket/internal/persistence/datafile"
)

// Server — TCP-сервер aesdsocket. Соединения обрабатываются строго по одному.
type Server struct {
	addr            string
	dataPath        string
	storeOpts       []datafile.Option
	initialLineSize int
	maxLineBytes    int
	logger          *slog.Logger
	detach          Detacher
	inherited       net.Listener // уже привязанный сокет (daemon-потомок, тесты)

	mu       sync.Mutex
	listener net.Listener

	shutdown  atomic.Bool
	state     atomic.Int32
	ready     chan struct{}
	readyOnce sync.Once
}

// Detacher уводит процесс в фон, получив привязанный сокет.
// Возвращает pid потомка; родитель после этого завершает Run.
type Detacher func(ln net.Listener) (pid int, err error)
