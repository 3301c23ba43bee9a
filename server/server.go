package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/poiesic/energuide/core"
)

// DefaultBodyLimit caps request bodies.
const DefaultBodyLimit = 1 * 1024 * 1024

// Searcher runs raw nearest-neighbor searches.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]core.ScoredDocument, error)
}

// Server is the HTTP front end of the chatbot.
type Server struct {
	app         *fiber.App
	sessions    *SessionStore
	searcher    Searcher
	corsOrigins []string
	bodyLimit   int
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithSearcher enables POST /api/rag/search.
func WithSearcher(searcher Searcher) Option {
	return func(s *Server) error {
		s.searcher = searcher
		return nil
	}
}

// WithCORSOrigins sets the allowed origins. Default is "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) error {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
		return nil
	}
}

// WithBodyLimit sets the maximum request body size in bytes.
func WithBodyLimit(n int) Option {
	return func(s *Server) error {
		if n > 0 {
			s.bodyLimit = n
		}
		return nil
	}
}

// WithLogger sets the logger for the server.
// If nil, uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// New creates a server handing each session its own agent from sessions.
func New(sessions *SessionStore, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, ErrSessionsRequired
	}

	s := &Server{
		sessions:    sessions,
		corsOrigins: []string{"*"},
		bodyLimit:   DefaultBodyLimit,
		logger:      slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "energuide",
		BodyLimit:             s.bodyLimit,
		DisableStartupMessage: true,
	})

	// Credentials cannot be combined with a wildcard origin.
	allowCredentials := !containsWildcard(s.corsOrigins)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(s.corsOrigins, ","),
		AllowCredentials: allowCredentials,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
	}))

	app.Get("/health", s.health)
	api := app.Group("/api")
	s.registerRoutes(api)

	s.app = app
	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
