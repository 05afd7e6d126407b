// Package server exposes the command boundary over JSON-RPC 2.0.
//
// The primary transport is a Unix socket (a named pipe on Windows) used by
// the CLI; every connection gets its own jrpc2 server with push enabled so
// task events reach it as notifications. An optional HTTP endpoint serves the
// same methods over plain JSON-RPC and WebSocket behind a bearer token.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/powersched/powersched/pkg/logger"
)

// Server accepts CLI connections on the daemon socket.
type Server struct {
	log      logger.Logger
	methods  handler.Map
	notifier *RPCNotifier
	path     string
	listener net.Listener
	mu       sync.Mutex
	conns    sync.WaitGroup
}

// NewServer returns a Server that will listen on path, a Unix socket path or
// a Windows pipe path.
func NewServer(l logger.Logger, methods handler.Map, notifier *RPCNotifier, path string) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Server{
		log:      l,
		methods:  methods,
		notifier: notifier,
		path:     path,
	}
}

// Listen opens the listener. It is separate from Serve so the daemon can
// report readiness only once clients are able to connect.
func (s *Server) Listen() error {
	l, err := createListener(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("server: listening on %s", s.path)
	return nil
}

// Serve accepts connections until ctx is cancelled or Shutdown is called.
// Each connection is served in its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("server: Serve called before Listen")
	}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.conns.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				s.conns.Wait()
				return nil
			}
			s.log.Error("server: accept: %v", err)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// Start listens and serves; it blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown closes the listener and removes the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	if err := s.listener.Close(); err != nil {
		s.log.Warning("server: close listener: %v", err)
	}
	s.listener = nil
	if err := cleanupSocket(s.path); err != nil {
		s.log.Warning("server: remove socket: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(channel.Line(conn, conn))
	if s.notifier != nil {
		s.notifier.Register(srv)
		defer s.notifier.Unregister(srv)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-done:
		}
	}()

	if err := srv.Wait(); err != nil && !isClosedErr(err) {
		s.log.Warning("server: connection ended: %v", err)
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe)
}
