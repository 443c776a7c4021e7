package server

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestListenReusesAddress(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()

	// Сервер закрывает соединение первым — его сторона уходит в TIME_WAIT
	accepted := make(chan struct{})
	go func() {
		defer close(accepted)
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()
	client, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	<-accepted
	client.SetReadDeadline(time.Now().Add(time.Second))
	client.Read(make([]byte, 1))
	client.Close()
	ln.Close()

	again, err := Listen(context.Background(), addr)
	if err != nil {
		t.Fatalf("rebinding %s must succeed with SO_REUSEADDR: %v", addr, err)
	}
	again.Close()
}

func TestShutdownWithoutDeadlineClosesListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := New("", "", WithLogger(discardLogger()))
	srv.listener = noDeadline{ln}

	srv.Shutdown()
	if _, err := ln.Accept(); err == nil {
		t.Fatal("listener without SetDeadline must be closed by Shutdown")
	}
}

type noDeadline struct{ net.Listener }
