package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/naija-emoji/apiserver/config"
	"github.com/naija-emoji/apiserver/internal/db"
	"github.com/naija-emoji/apiserver/internal/events"
	"github.com/naija-emoji/apiserver/internal/handlers"
	"github.com/naija-emoji/apiserver/internal/logging"
	"github.com/naija-emoji/apiserver/internal/mq"
	"github.com/naija-emoji/apiserver/internal/services"
	"github.com/naija-emoji/apiserver/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sqlx.DB
	queue      *mq.MQ
	logger     *slog.Logger
}

// New opens the database and event broker and wires the routes.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, cfg, db.Up); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var publisher services.EventPublisher = events.Nop{}
	if queue != nil {
		publisher = events.NewBrokerPublisher(queue, cfg.Events.Channel)
	}

	authService := services.NewAuthService(store.NewUserRepository(dbConn), cfg.Auth.TokenTTL, logger)
	emojiService := services.NewEmojiService(store.NewEmojiRepository(dbConn), publisher, logger)
	requireToken := handlers.RequireToken(authService, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logging.RequestLogger(logger),
		middleware.StripSlashes,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/", handlers.Welcome)
	router.Get("/healthz", handlers.Healthz(dbConn))
	router.Route("/emojis", func(r chi.Router) {
		handlers.EmojiRouter(r, emojiService, requireToken, logger)
	})
	router.Route("/search", func(r chi.Router) {
		handlers.SearchRouter(r, emojiService, logger)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, logger)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		_ = s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if closeErr := s.close(); err == nil {
		err = closeErr
	}
	return err
}

// Shutdown closes the listener and releases the database and broker.
func (s *Server) Shutdown() error {
	err := s.httpServer.Close()
	if closeErr := s.close(); err == nil {
		err = closeErr
	}
	return err
}

func (s *Server) close() error {
	var errs []error
	if s.queue != nil {
		errs = append(errs, s.queue.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
