package uciws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/strawberry-chess/internal/chess/uci"
)

type Config struct {
	MaxSessions int
	Engine      uci.Config
	Logger      *zap.Logger
}

// Server runs one UCI session per WebSocket connection. Every inbound text
// message holds one or more command lines; every response line goes out as
// its own text message.
type Server struct {
	engine uci.Config
	logger *zap.Logger
	slots  chan struct{}

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func NewServer(cfg Config) *Server {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Server{
		engine:   cfg.Engine,
		logger:   cfg.Logger,
		slots:    make(chan struct{}, cfg.MaxSessions),
		sessions: make(map[string]context.CancelFunc),
	}
}

// Active returns the number of live sessions.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.Error(err))
		return
	}

	select {
	case s.slots <- struct{}{}:
	default:
		s.logger.Warn("ws_session_refused", zap.Int("max_sessions", cap(s.slots)))
		_ = conn.Close(websocket.StatusTryAgainLater, "session limit reached")
		return
	}
	defer func() { <-s.slots }()

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !s.register(id, cancel) {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer s.unregister(id)

	logger := s.logger.With(zap.String("session_id", id))
	logger.Info("ws_session_start", zap.String("remote", r.RemoteAddr))
	err = s.serve(ctx, conn, logger)
	logger.Info("ws_session_end", zap.Error(err))
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, logger *zap.Logger) error {
	cfg := s.engine
	cfg.Logger = logger
	handler := uci.NewHandler(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pr, pw := io.Pipe()
	go func() {
		// a dropped connection cancels ctx, which also stops a running search
		defer cancel()
		defer pw.Close()
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if typ != websocket.MessageText {
				continue
			}
			text := strings.TrimRight(string(data), "\r\n")
			if _, err := io.WriteString(pw, text+"\n"); err != nil {
				return
			}
		}
	}()

	err := handler.Run(ctx, pr, &lineWriter{ctx: ctx, conn: conn})
	_ = pr.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		_ = conn.Close(websocket.StatusInternalError, "engine error")
		return err
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
	return nil
}

// Shutdown cancels every session and waits for them to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.sessions {
		cancel()
	}
	s.sessions = nil
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) register(id string, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return false
	}
	s.sessions[id] = cancel
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.wg.Done()
}

// lineWriter sends each complete line as one text message.
type lineWriter struct {
	ctx  context.Context
	conn *websocket.Conn
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := w.buf[:i]
		if err := w.conn.Write(w.ctx, websocket.MessageText, line); err != nil {
			return 0, err
		}
		w.buf = w.buf[i+1:]
	}
}
