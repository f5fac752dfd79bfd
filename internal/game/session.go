// Package game is the presentation core of the quiz: it switches between the
// daily challenge, the study deck and free practice, judges guesses and tells
// the viewer what to show through intents.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/daily"
	"github.com/hrygo/musclequiz/internal/matcher"
	"github.com/hrygo/musclequiz/internal/observability"
	"github.com/hrygo/musclequiz/internal/study"
	"github.com/hrygo/musclequiz/internal/timezone"
	"github.com/hrygo/musclequiz/internal/tracker"
)

var (
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUnknownRegion   = errors.New("unknown region")
	ErrUnknownEntry    = errors.New("unknown entry")
	ErrNoEntry         = errors.New("no entry to play")
	ErrChallengeClosed = errors.New("today's challenge is already finished")
	ErrRoundOver       = errors.New("round is over, move on to the next entry")
	ErrEntryMismatch   = errors.New("entry does not match the current mode")
	ErrNotAvailable    = errors.New("not available in this mode")
)

// Verdict is the result of one guess.
type Verdict struct {
	Correct bool `json:"correct"`
	// Finished is set once the current round can no longer be guessed.
	Finished bool `json:"finished"`
}

// State is a snapshot of what the shell shows.
type State struct {
	Mode   Mode           `json:"mode"`
	Region catalog.Region `json:"region"`
	Date   string         `json:"date,omitempty"`
	// NextAt is when the next daily challenge starts. Daily mode only.
	NextAt  *time.Time `json:"nextAt,omitempty"`
	EntryID string     `json:"entryId,omitempty"`
	// Entry is only filled in once the round is finished so the answer is not leaked.
	Entry     *catalog.Entry `json:"entry,omitempty"`
	Score     int            `json:"score"`
	Attempts  int            `json:"attempts"`
	ScoreText string         `json:"scoreText"`
	Position  int            `json:"position,omitempty"`
	Total     int            `json:"total,omitempty"`
	Solved    bool           `json:"solved"`
	Revealed  bool           `json:"revealed"`
	Finished  bool           `json:"finished"`
	Disabled  bool           `json:"disabled"`
	Message   string         `json:"message,omitempty"`
}

type round struct {
	solved   bool
	revealed bool
}

func (r round) over() bool {
	return r.solved || r.revealed
}

type practiceState struct {
	current  string
	score    int
	attempts int
}

// Session is one player's game. It is not safe for concurrent use.
type Session struct {
	catalog *catalog.Catalog
	engine  *study.Engine
	tracker *tracker.Tracker

	loc                 *time.Location
	clock               func() time.Time
	rng                 *rand.Rand
	sink                IntentSink
	logger              *slog.Logger
	viewerPicksPractice bool

	mode     Mode
	day      tracker.Record
	dayOK    bool
	deck     study.Progress
	practice practiceState
	round    round
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLocation sets the canonical timezone of the daily challenge.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

// WithSink sets where intents are delivered.
func WithSink(sink IntentSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithRand sets the generator used to pick practice entries.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithViewerPicksPractice makes Next in practice mode ask the viewer for an
// entry instead of choosing one.
func WithViewerPicksPractice(v bool) Option {
	return func(s *Session) { s.viewerPicksPractice = v }
}

// WithMode sets the starting mode.
func WithMode(m Mode) Option {
	return func(s *Session) { s.mode = m }
}

// NewSession loads the study deck and today's record and starts in daily mode
// unless WithMode says otherwise.
func NewSession(ctx context.Context, c *catalog.Catalog, engine *study.Engine, tr *tracker.Tracker, opts ...Option) *Session {
	s := &Session{
		catalog: c,
		engine:  engine,
		tracker: tr,
		loc:     time.UTC,
		clock:   time.Now,
		sink:    discardSink{},
		logger:  slog.Default(),
		mode:    ModeDaily,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(s.clock().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if !s.mode.Valid() {
		s.mode = ModeDaily
	}
	s.deck = engine.Load(ctx)
	s.refreshDay(ctx)
	if s.mode == ModePractice && !s.viewerPicksPractice {
		s.pickPractice()
	}
	return s
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Deck returns the current study progress.
func (s *Session) Deck() study.Progress {
	return s.deck
}

// Day returns today's daily record. It is false when the catalog is empty.
func (s *Session) Day(ctx context.Context) (tracker.Record, bool) {
	s.refreshDay(ctx)
	return s.day, s.dayOK
}

// SwitchMode changes the active mode and asks the viewer to show its entry.
func (s *Session) SwitchMode(ctx context.Context, m Mode) error {
	if !m.Valid() {
		return errors.Wrapf(ErrUnknownMode, "%q", m)
	}
	if m == s.mode {
		return nil
	}
	s.logger.Info("switching mode",
		slog.String(observability.LogFieldMode, string(m)),
		slog.String("previous_mode", string(s.mode)),
	)
	s.mode = m
	s.round = round{}

	switch m {
	case ModeDaily:
		s.refreshDay(ctx)
	case ModePractice:
		if s.practice.current == "" {
			if s.viewerPicksPractice {
				s.sink.Emit(RequestNext{})
				return nil
			}
			s.pickPractice()
		}
	}
	s.emitCurrent()
	return nil
}

// SwitchRegion changes the study deck filter. The deck is rebuilt only when the
// region differs from the current one.
func (s *Session) SwitchRegion(ctx context.Context, r catalog.Region) error {
	if !r.Valid() {
		return errors.Wrapf(ErrUnknownRegion, "%q", r)
	}
	prev := s.deck.Settings.Region
	s.deck = s.engine.SetRegion(ctx, s.deck, r)
	if r != prev && s.mode == ModeStudy {
		s.round = round{}
		s.emitCurrent()
	}
	return nil
}

// ResetDeck reshuffles the study deck for its current region.
func (s *Session) ResetDeck(ctx context.Context) {
	s.deck = s.engine.Reset(ctx, s.deck.Settings.Region)
	if s.mode == ModeStudy {
		s.round = round{}
		s.emitCurrent()
	}
}

// Submit judges a free-text guess against the current entry.
func (s *Session) Submit(ctx context.Context, input string) (Verdict, error) {
	switch s.mode {
	case ModeDaily:
		s.refreshDay(ctx)
		if !s.dayOK {
			return Verdict{}, ErrNoEntry
		}
		if s.day.Completed {
			return Verdict{}, ErrChallengeClosed
		}
		correct := s.matches(s.day.ID, input)
		s.day = s.tracker.RecordAttempt(ctx, s.day)
		if correct {
			s.day = s.tracker.RecordCorrect(ctx, s.day)
			s.sink.Emit(RequestReveal{})
		}
		return Verdict{Correct: correct, Finished: s.day.Completed}, nil

	case ModeStudy:
		id, ok := s.deck.CurrentID()
		if !ok {
			return Verdict{}, ErrNoEntry
		}
		if s.round.over() {
			return Verdict{}, ErrRoundOver
		}
		correct := s.matches(id, input)
		if correct {
			s.round.solved = true
			s.sink.Emit(RequestReveal{})
		}
		return Verdict{Correct: correct, Finished: s.round.over()}, nil

	default:
		if s.practice.current == "" {
			return Verdict{}, ErrNoEntry
		}
		if s.round.over() {
			return Verdict{}, ErrRoundOver
		}
		correct := s.matches(s.practice.current, input)
		s.practice.attempts++
		if correct {
			s.practice.score++
			s.round.solved = true
			s.sink.Emit(RequestReveal{})
		}
		return Verdict{Correct: correct, Finished: s.round.over()}, nil
	}
}

// Reveal gives up on the current entry. In daily mode this ends the day's
// challenge and counts as an attempt.
func (s *Session) Reveal(ctx context.Context) error {
	switch s.mode {
	case ModeDaily:
		s.refreshDay(ctx)
		if !s.dayOK {
			return ErrNoEntry
		}
		if s.day.Completed {
			return ErrChallengeClosed
		}
		s.day = s.tracker.RecordReveal(ctx, s.day)

	case ModeStudy:
		if _, ok := s.deck.CurrentID(); !ok {
			return ErrNoEntry
		}
		if s.round.over() {
			return nil
		}
		s.round.revealed = true

	default:
		if s.practice.current == "" {
			return ErrNoEntry
		}
		if s.round.over() {
			return nil
		}
		s.practice.attempts++
		s.round.revealed = true
	}
	s.sink.Emit(RequestReveal{})
	return nil
}

// Next moves on to another entry. Daily mode has no next entry.
func (s *Session) Next(ctx context.Context) error {
	switch s.mode {
	case ModeDaily:
		return errors.Wrap(ErrNotAvailable, "next")

	case ModeStudy:
		if s.deck.State() != study.StateInProgress {
			return ErrNoEntry
		}
		s.deck = s.engine.Advance(ctx, s.deck)
		s.round = round{}
		s.emitCurrent()
		return nil

	default:
		s.round = round{}
		if s.viewerPicksPractice {
			s.practice.current = ""
			s.sink.Emit(RequestNext{})
			return nil
		}
		if !s.pickPractice() {
			return ErrNoEntry
		}
		s.emitCurrent()
		return nil
	}
}

// ShowEntry is called by the viewer when it displays id. In practice mode the
// viewer may choose freely; in the other modes id must match the mode's entry.
func (s *Session) ShowEntry(ctx context.Context, id string) error {
	if !s.catalog.Has(id) {
		return errors.Wrapf(ErrUnknownEntry, "%q", id)
	}
	if s.mode == ModePractice {
		if id != s.practice.current {
			s.practice.current = id
			s.round = round{}
		}
		return nil
	}
	if s.mode == ModeDaily {
		s.refreshDay(ctx)
	}
	if cur, ok := s.currentID(); ok && cur == id {
		return nil
	}
	return errors.Wrapf(ErrEntryMismatch, "%q in %s mode", id, s.mode)
}

// Current returns a snapshot of the shell.
func (s *Session) Current(ctx context.Context) State {
	if s.mode == ModeDaily {
		s.refreshDay(ctx)
	}
	st := State{Mode: s.mode, Region: s.deck.Settings.Region}
	if s.catalog.Len() == 0 {
		st.Disabled = true
		st.Message = "No entries available."
	}

	switch s.mode {
	case ModeDaily:
		st.Score, st.Attempts = s.day.Score, s.day.Attempts
		st.ScoreText = fmt.Sprintf("%d / %d", st.Score, st.Attempts)
		if s.dayOK {
			st.Date = s.day.Date
			next := timezone.NextDay(s.clock(), s.loc)
			st.NextAt = &next
			st.EntryID = s.day.ID
			st.Solved = s.day.Completed && s.day.Score > 0
			st.Revealed = s.day.Completed && s.day.Score == 0
			st.Finished = s.day.Completed
			if s.day.Completed {
				st.Disabled = true
				st.Message = "Come back tomorrow for a new challenge."
			}
		}

	case ModeStudy:
		st.Position, st.Total = s.deck.Position()
		st.ScoreText = fmt.Sprintf("%d / %d", st.Position, st.Total)
		st.EntryID, _ = s.deck.CurrentID()
		st.Solved, st.Revealed, st.Finished = s.round.solved, s.round.revealed, s.round.over()
		switch s.deck.State() {
		case study.StateEmpty:
			st.Disabled = true
			if st.Message == "" {
				st.Message = "No entries in this region."
			}
		case study.StateCompleted:
			st.Disabled = true
			st.Message = "Deck complete. Reset it or pick another region."
		}

	default:
		st.Score, st.Attempts = s.practice.score, s.practice.attempts
		st.ScoreText = fmt.Sprintf("%d / %d", st.Score, st.Attempts)
		st.EntryID = s.practice.current
		st.Solved, st.Revealed, st.Finished = s.round.solved, s.round.revealed, s.round.over()
		if st.EntryID == "" {
			st.Disabled = true
		}
	}

	if st.Finished && st.EntryID != "" {
		if e, ok := s.catalog.Get(st.EntryID); ok {
			st.Entry = &e
		}
	}
	return st
}

func (s *Session) currentID() (string, bool) {
	switch s.mode {
	case ModeDaily:
		return s.day.ID, s.dayOK
	case ModeStudy:
		return s.deck.CurrentID()
	default:
		return s.practice.current, s.practice.current != ""
	}
}

func (s *Session) emitCurrent() {
	if id, ok := s.currentID(); ok {
		s.sink.Emit(RequestSetEntry{ID: id})
	}
}

func (s *Session) matches(id, input string) bool {
	e, ok := s.catalog.Get(id)
	if !ok {
		return false
	}
	return matcher.IsMatch(input, e)
}

// refreshDay reloads the daily record when the calendar day has changed.
func (s *Session) refreshDay(ctx context.Context) {
	now := s.clock()
	if s.dayOK && s.day.Date == daily.DateKey(now, s.loc) {
		return
	}
	prev := s.day.ID
	s.day, s.dayOK = s.tracker.EnsureToday(ctx, s.loc, s.catalog, now)
	if !s.dayOK || prev == "" || prev == s.day.ID {
		return
	}
	s.logger.Info("daily challenge rolled over", slog.String("date", s.day.Date))
	if s.mode == ModeDaily {
		s.round = round{}
		s.emitCurrent()
	}
}

// pickPractice chooses a random entry other than the current one.
func (s *Session) pickPractice() bool {
	ids := s.catalog.IDs(catalog.RegionAll)
	candidates := ids[:0]
	for _, id := range ids {
		if id != s.practice.current {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		// Single-entry catalog keeps replaying the same entry.
		return s.practice.current != ""
	}
	s.practice.current = candidates[s.rng.IntN(len(candidates))]
	return true
}
