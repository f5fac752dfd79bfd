package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/game"
	"github.com/hrygo/musclequiz/internal/observability"
	"github.com/hrygo/musclequiz/internal/profile"
	"github.com/hrygo/musclequiz/internal/progress"
	"github.com/hrygo/musclequiz/server/middleware"
	apiv1 "github.com/hrygo/musclequiz/server/router/api/v1"
	"github.com/hrygo/musclequiz/store"
)

const shutdownTimeout = 10 * time.Second

// Server hosts the quiz API for a single player.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer wires the API routes over store.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, cat *catalog.Catalog, logger *slog.Logger, opts ...game.Option) (*Server, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Profile: profile,
		Store:   store,
		logger:  logger,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler(logger)
	echoServer.Use(echomiddleware.Recover())
	metrics := observability.NewMetrics(1000)
	echoServer.Use(middleware.RequestLogger(logger, metrics))
	echoServer.Use(middleware.NewRateLimiter(middleware.DefaultRate, middleware.DefaultBurst).Middleware())
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	var kv progress.Store
	if store != nil {
		kv = progress.NewKVStore(store)
	}
	apiv1.NewAPIV1Service(ctx, profile, cat, kv, metrics, logger, opts...).RegisterRoutes(echoServer)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", slog.String("address", address), slog.String("mode", s.Profile.Mode))
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	var errs []error
	if err := s.echoServer.Shutdown(ctx); err != nil {
		errs = append(errs, errors.Wrap(err, "failed to shutdown server"))
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close store"))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	s.logger.Info("server stopped properly")
	return nil
}
