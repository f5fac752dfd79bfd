package v1

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/game"
	"github.com/hrygo/musclequiz/internal/observability"
	"github.com/hrygo/musclequiz/internal/profile"
	"github.com/hrygo/musclequiz/internal/progress"
	"github.com/hrygo/musclequiz/internal/study"
	"github.com/hrygo/musclequiz/internal/tracker"
)

// APIV1Service serves one player's game over HTTP.
type APIV1Service struct {
	Profile *profile.Profile
	Catalog *catalog.Catalog
	Metrics *observability.Metrics

	logger *slog.Logger

	// mu serializes every call into session; the recorder buffers intents per call.
	mu       sync.Mutex
	session  *game.Session
	recorder *game.Recorder
}

// NewAPIV1Service loads the player's progress from store and starts a session.
// Storage failures are counted in metrics; a nil metrics gets a private collector.
func NewAPIV1Service(ctx context.Context, profile *profile.Profile, cat *catalog.Catalog, store progress.Store, metrics *observability.Metrics, logger *slog.Logger, opts ...game.Option) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(0)
	}
	persister := progress.NewPersister(store, logger, progress.ReporterFunc(func(progress.Outcome) {
		metrics.RecordStorageFailure()
	}))
	engine := study.NewEngine(cat, persister,
		study.WithDefaultRegion(catalog.Region(profile.DefaultRegion)),
		study.WithLogger(logger),
	)
	recorder := &game.Recorder{}
	sessionOpts := append([]game.Option{
		game.WithLocation(profile.Location()),
		game.WithSink(recorder),
		game.WithLogger(logger),
	}, opts...)

	return &APIV1Service{
		Profile:  profile,
		Catalog:  cat,
		Metrics:  metrics,
		logger:   logger,
		session:  game.NewSession(ctx, cat, engine, tracker.New(persister), sessionOpts...),
		recorder: recorder,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")
	g.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	g.GET("/catalog", s.ListCatalog)
	g.GET("/state", s.GetState)
	g.POST("/mode", s.SwitchMode)
	g.POST("/region", s.SwitchRegion)
	g.POST("/guess", s.SubmitGuess)
	g.POST("/reveal", s.Reveal)
	g.POST("/next", s.Next)
	g.POST("/show", s.ShowEntry)
	g.GET("/daily", s.GetDaily)
	g.GET("/study", s.GetStudy)
	g.POST("/study/reset", s.ResetStudy)
	g.GET("/system/metrics/overview", s.GetMetricsOverview)
}

// call runs fn with exclusive access to the session and returns the intents it emitted.
func (s *APIV1Service) call(fn func(*game.Session) error) ([]IntentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder.Drain()
	err := fn(s.session)
	return intentViews(s.recorder.Drain()), err
}
