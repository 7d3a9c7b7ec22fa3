package server

import (
	"fmt"
	"log"
	"net"
	"sync"
)

// ConnectionHandler is called for each accepted chat connection. The
// handler is responsible for running the connection and closing it.
type ConnectionHandler func(conn net.Conn)

// Listener accepts incoming chat connections and enforces the
// max-clients limit.
type Listener struct {
	addr       string
	handler    ConnectionHandler
	maxClients int

	mu     sync.Mutex
	active int
}

// NewListener creates a new TCP listener for chat connections.
func NewListener(port, maxClients int, handler ConnectionHandler) *Listener {
	return &Listener{
		addr:       fmt.Sprintf(":%d", port),
		handler:    handler,
		maxClients: maxClients,
	}
}

// ListenAndServe starts accepting connections. Blocks until the listener
// is closed or a fatal error occurs.
func (l *Listener) ListenAndServe() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	defer ln.Close()

	log.Printf("Chat server listening on %s", l.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("Accept error: %v", err)
			continue
		}

		if !l.acquire() {
			fmt.Fprintln(conn, "* server is full, try again later")
			conn.Close()
			continue
		}

		go func() {
			defer l.release()
			l.handler(conn)
		}()
	}
}

func (l *Listener) acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxClients > 0 && l.active >= l.maxClients {
		return false
	}
	l.active++
	return true
}

func (l *Listener) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active--
}

// Active returns the number of connections currently being served.
func (l *Listener) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}
