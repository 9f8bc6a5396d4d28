// Package remote serves blackjack sessions over WebSocket and provides the
// matching client. Every connection plays its own session with its own deck.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/sessionid"
)

const shutdownTimeout = 5 * time.Second

// Server hosts single-player sessions on /play
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	logger      *log.Logger
	newSource   func() game.CardSource
	ids         *sessionid.Generator
	sessionOpts []game.SessionOption

	mu          sync.Mutex
	connections map[*Connection]struct{}
	closing     bool
	sessions    sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithSourceFactory sets how each connection gets its cards
func WithSourceFactory(fn func() game.CardSource) Option {
	return func(s *Server) {
		s.newSource = fn
	}
}

// WithSessionIDs sets the generator for session IDs
func WithSessionIDs(g *sessionid.Generator) Option {
	return func(s *Server) {
		s.ids = g
	}
}

// WithSessionOptions applies opts to every session the server starts
func WithSessionOptions(opts ...game.SessionOption) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// NewServer creates a server listening on addr
func NewServer(addr string, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		ids:         sessionid.NewGenerator(nil, nil),
		connections: make(map[*Connection]struct{}),
	}
	s.newSource = func() game.CardSource {
		d := deck.NewDeck(randutil.NewRandom())
		d.OnReshuffle = func() { s.logger.Warn("Warning: Deck is empty! Reshuffling...") }
		return d
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving /play and /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run listens on the server address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// open connection and waits for their sessions to end.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down", "connections", s.ConnectionCount())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by http.Server
		s.closeAll()
		err := srv.Shutdown(shutdownCtx)
		s.sessions.Wait()
		return err
	})

	return g.Wait()
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	// Sessions are counted before the upgrade so shutdown waits for them
	if !s.startSession() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sessions.Done()
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	id := s.ids.New()
	client := NewConnection(conn, s.logger.With("session", id))
	if !s.register(client) {
		s.sessions.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	client.Start()
	_ = client.SendMessage(&Message{Type: MessageTypeWelcome, Session: id})

	go func() {
		defer s.sessions.Done()
		defer s.unregister(client)
		s.runSession(client, id, r.RemoteAddr)
	}()
}

func (s *Server) runSession(conn *Connection, id, remote string) {
	logger := s.logger.With("session", id, "remote", remote)
	session := game.NewSession(s.newSource(), conn, conn, logger, s.sessionOpts...)

	if err := session.Run(); err != nil {
		logger.Error("Session failed", "error", err)
	}
	logger.Info("Session over", "rounds", len(session.Records()))
	conn.Finish()

	// Give the write pump a chance to flush before unregistering
	select {
	case <-conn.Done():
	case <-time.After(writeWait):
	}
}

func (s *Server) startSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions.Add(1)
	return true
}

func (s *Server) register(conn *Connection) bool {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return false
	}
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
	return true
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	_ = conn.Close()
	s.logger.Info("Client disconnected", "total", total)
}

// closeAll stops new sessions and closes every open connection
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
