package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/progress"
)

const (
	// StorageKey holds the current progress record. Bump the suffix when the shape changes.
	StorageKey = "study_progress_v2"
	// storageKeyPrefix is shared by every version of the record; keys other
	// than StorageKey under it are stale and removed on load.
	storageKeyPrefix = "study_progress_"
)

// State is the deck's lifecycle state.
type State string

const (
	StateEmpty      State = "empty"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Settings are the options a deck was built with.
type Settings struct {
	Region catalog.Region `json:"region"`
}

// Progress is the persisted traversal of one deck.
type Progress struct {
	Order     []string `json:"order"`
	Index     int      `json:"index"`
	Completed bool     `json:"completed"`
	Settings  Settings `json:"settings"`
}

// State reports the lifecycle state of p.
func (p Progress) State() State {
	switch {
	case len(p.Order) == 0:
		return StateEmpty
	case p.Completed:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// CurrentID returns the entry at the cursor. It is false when the deck is empty or completed.
func (p Progress) CurrentID() (string, bool) {
	if len(p.Order) == 0 || p.Completed {
		return "", false
	}
	return p.Order[p.Index], true
}

// Position returns the 1-based cursor position and the deck length.
func (p Progress) Position() (int, int) {
	if len(p.Order) == 0 {
		return 0, 0
	}
	return p.Index + 1, len(p.Order)
}

func (p Progress) clone() Progress {
	out := p
	out.Order = append([]string(nil), p.Order...)
	return out
}

// Engine loads, rebuilds and advances study progress.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	catalog       *catalog.Catalog
	persister     *progress.Persister
	clock         func() time.Time
	defaultRegion catalog.Region
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to seed shuffles.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDefaultRegion sets the region used when no valid progress exists.
func WithDefaultRegion(r catalog.Region) Option {
	return func(e *Engine) { e.defaultRegion = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine over c, persisting through p.
func NewEngine(c *catalog.Catalog, p *progress.Persister, opts ...Option) *Engine {
	e := &Engine{
		catalog:       c,
		persister:     p,
		clock:         time.Now,
		defaultRegion: catalog.RegionAll,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.defaultRegion.Valid() {
		e.defaultRegion = catalog.RegionAll
	}
	return e
}

// Load returns the persisted progress when it is present and valid. Otherwise it
// builds a fresh deck for the default region and persists it. Records left by
// older versions are deleted.
func (e *Engine) Load(ctx context.Context) Progress {
	e.pruneStale(ctx)
	data, out := e.persister.Load(ctx, StorageKey)
	if out.OK() && !out.Missing {
		p, err := e.decode(data)
		if err == nil {
			return p
		}
		e.persister.Discard(StorageKey, err)
	}
	return e.Reset(ctx, e.defaultRegion)
}

func (e *Engine) pruneStale(ctx context.Context) {
	keys, out := e.persister.Keys(ctx, storageKeyPrefix)
	if !out.OK() {
		return
	}
	for _, key := range keys {
		if key == StorageKey {
			continue
		}
		if e.persister.Delete(ctx, key).OK() {
			e.logger.Info("removed stale study progress", slog.String("key", key))
		}
	}
}

// Reset rebuilds the deck for region with a fresh date-seeded shuffle and persists it.
func (e *Engine) Reset(ctx context.Context, region catalog.Region) Progress {
	if !region.Valid() {
		e.logger.Warn("unknown study region, using default",
			slog.String("region", string(region)),
			slog.String("default", string(e.defaultRegion)),
		)
		region = e.defaultRegion
	}
	order := BuildDeck(e.catalog, region, NowSeed(e.clock()))
	p := Progress{
		Order:     order,
		Index:     0,
		Completed: len(order) == 0,
		Settings:  Settings{Region: region},
	}
	e.persister.Save(ctx, StorageKey, p)
	return p
}

// SetRegion returns current unchanged when region matches its filter;
// otherwise it behaves as Reset(region).
func (e *Engine) SetRegion(ctx context.Context, current Progress, region catalog.Region) Progress {
	if region == current.Settings.Region {
		return current
	}
	return e.Reset(ctx, region)
}

// Advance moves the cursor one step. Completion is detected when the step would
// run past the end; the index then stays pinned on the last entry. Advancing a
// completed deck is a no-op.
func (e *Engine) Advance(ctx context.Context, current Progress) Progress {
	if current.Completed {
		return current
	}
	next := current.clone()
	step := current.Index + 1
	last := len(next.Order) - 1
	if last < 0 {
		last = 0
	}
	next.Index = min(step, last)
	next.Completed = step >= len(next.Order)
	e.persister.Save(ctx, StorageKey, next)
	return next
}

// storedProgress mirrors Progress with pointer fields so missing fields are detectable.
type storedProgress struct {
	Order     *[]string `json:"order"`
	Index     *int      `json:"index"`
	Completed *bool     `json:"completed"`
	Settings  *struct {
		Region *string `json:"region"`
	} `json:"settings"`
}

func (e *Engine) decode(data []byte) (Progress, error) {
	var raw storedProgress
	if err := progress.DecodeStrict(data, &raw); err != nil {
		return Progress{}, err
	}
	if raw.Order == nil || raw.Index == nil || raw.Completed == nil || raw.Settings == nil || raw.Settings.Region == nil {
		return Progress{}, errors.New("missing field")
	}
	region := catalog.Region(*raw.Settings.Region)
	if !region.Valid() {
		return Progress{}, errors.Errorf("unknown region %q", region)
	}
	order := *raw.Order
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return Progress{}, errors.Errorf("duplicate id %q", id)
		}
		entry, ok := e.catalog.Get(id)
		if !ok {
			return Progress{}, errors.Errorf("unknown id %q", id)
		}
		if !entry.InRegion(region) {
			return Progress{}, errors.Errorf("id %q is not in region %q", id, region)
		}
		seen[id] = true
	}
	upper := max(0, len(order)-1)
	if *raw.Index < 0 || *raw.Index > upper {
		return Progress{}, errors.Errorf("index %d out of range", *raw.Index)
	}
	// A completed deck is pinned on its last entry; an empty deck is always completed.
	if *raw.Completed && len(order) > 0 && *raw.Index != len(order)-1 {
		return Progress{}, errors.Errorf("completed deck with index %d of %d", *raw.Index, len(order))
	}
	if !*raw.Completed && len(order) == 0 {
		return Progress{}, errors.New("empty deck not marked completed")
	}
	if order == nil {
		order = []string{}
	}
	return Progress{
		Order:     order,
		Index:     *raw.Index,
		Completed: *raw.Completed,
		Settings:  Settings{Region: region},
	}, nil
}
