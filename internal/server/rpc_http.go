package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/pkg/logger"
	"golang.org/x/time/rate"
)

// WebConfig configures the optional HTTP endpoint.
type WebConfig struct {
	// Addr is the listen address. Empty binds a free loopback port.
	Addr string
	// Secret is the bearer token; requests without it are rejected.
	Secret string
	// RateLimit is the number of requests per second accepted across both
	// endpoints. Zero disables limiting.
	RateLimit float64
}

// WebServer serves the method table over HTTP POST at /jsonrpc and over
// WebSocket at /jsonrpc/ws. Only WebSocket clients receive notifications.
type WebServer struct {
	log      logger.Logger
	cfg      WebConfig
	methods  handler.Map
	notifier *RPCNotifier
	bridge   jhttp.Bridge
	limiter  *rate.Limiter

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
	stop     sync.Once
}

func NewWebServer(l logger.Logger, methods handler.Map, notifier *RPCNotifier, cfg WebConfig) *WebServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &WebServer{
		log:      l,
		cfg:      cfg,
		methods:  methods,
		notifier: notifier,
		bridge:   jhttp.NewBridge(methods, nil),
		limiter:  newLimiter(cfg.RateLimit, 0),
		done:     make(chan struct{}),
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.cfg.Secret, limitRequests(s.limiter, s.bridge)))
	mux.Handle("/jsonrpc/ws", requireToken(s.cfg.Secret, limitRequests(s.limiter, http.HandlerFunc(s.serveWS))))
	return mux
}

func (s *WebServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("server: websocket accept: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true}).Start(ch)
	if s.notifier != nil {
		s.notifier.Register(srv)
		defer s.notifier.Unregister(srv)
	}

	// Hijacked connections outlive http.Server.Shutdown.
	go func() {
		select {
		case <-s.done:
			srv.Stop()
		case <-r.Context().Done():
		}
	}()

	if err := srv.Wait(); err != nil && !isClosedErr(err) && cws.CloseStatus(err) == -1 {
		s.log.Warning("server: websocket session ended: %v", err)
	}
}

// Listen binds the loopback port.
func (s *WebServer) Listen() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = net.JoinHostPort(common.TCPHost, "0")
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	s.log.Info("server: http endpoint on %s", l.Addr())
	return nil
}

// Addr returns the bound address, or an empty string before Listen.
func (s *WebServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve blocks until Shutdown is called.
func (s *WebServer) Serve() error {
	s.mu.Lock()
	srv, l := s.server, s.listener
	s.mu.Unlock()
	if srv == nil {
		return errors.New("server: Serve called before Listen")
	}
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server and releases the bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.stop.Do(func() {
		close(s.done)
		if s.server != nil {
			err = s.server.Shutdown(ctx)
		}
		err = errors.Join(err, s.bridge.Close())
	})
	return err
}
