package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/game"
	apierrors "github.com/hrygo/musclequiz/server/internal/errors"
)

// ListCatalog returns every entry without answers.
// GET /api/v1/catalog
func (s *APIV1Service) ListCatalog(c echo.Context) error {
	entries := s.Catalog.Entries()
	resp := CatalogResponse{
		Entries: make([]EntrySummary, 0, len(entries)),
		Regions: catalog.Regions(),
		Modes:   game.Modes(),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, EntrySummary{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			Region:      e.EffectiveRegion(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetState returns the current shell state.
// GET /api/v1/state
func (s *APIV1Service) GetState(c echo.Context) error {
	return s.respondState(c, func(*game.Session) error { return nil })
}

// SwitchMode changes the game mode.
// POST /api/v1/mode
func (s *APIV1Service) SwitchMode(c echo.Context) error {
	var req ModeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		return sess.SwitchMode(ctx, mode)
	})
}

// SwitchRegion changes the study deck filter.
// POST /api/v1/region
func (s *APIV1Service) SwitchRegion(c echo.Context) error {
	var req RegionRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	region, err := catalog.ParseRegion(req.Region)
	if err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
	}
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		return sess.SwitchRegion(ctx, region)
	})
}

// SubmitGuess judges a guess for the current entry.
// POST /api/v1/guess
func (s *APIV1Service) SubmitGuess(c echo.Context) error {
	var req GuessRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	ctx := c.Request().Context()

	var resp GuessResponse
	intents, err := s.call(func(sess *game.Session) error {
		v, err := sess.Submit(ctx, req.Input)
		if err != nil {
			return err
		}
		resp.Verdict = v
		resp.State = sess.Current(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	resp.Intents = intents
	return c.JSON(http.StatusOK, resp)
}

// Reveal gives up on the current entry.
// POST /api/v1/reveal
func (s *APIV1Service) Reveal(c echo.Context) error {
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		return sess.Reveal(ctx)
	})
}

// Next moves to another entry.
// POST /api/v1/next
func (s *APIV1Service) Next(c echo.Context) error {
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		return sess.Next(ctx)
	})
}

// ShowEntry records the entry the viewer is displaying.
// POST /api/v1/show
func (s *APIV1Service) ShowEntry(c echo.Context) error {
	var req ShowRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return apierrors.InvalidArgument("id is required")
	}
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		return sess.ShowEntry(ctx, req.ID)
	})
}

// GetDaily returns today's record.
// GET /api/v1/daily
func (s *APIV1Service) GetDaily(c echo.Context) error {
	ctx := c.Request().Context()
	var resp DailyResponse
	if _, err := s.call(func(sess *game.Session) error {
		resp.Record, resp.Available = sess.Day(ctx)
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStudy returns the study deck progress.
// GET /api/v1/study
func (s *APIV1Service) GetStudy(c echo.Context) error {
	var resp StudyResponse
	if _, err := s.call(func(sess *game.Session) error {
		p := sess.Deck()
		resp.Progress = p
		resp.State = p.State()
		resp.Position, resp.Total = p.Position()
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetStudy reshuffles the study deck.
// POST /api/v1/study/reset
func (s *APIV1Service) ResetStudy(c echo.Context) error {
	ctx := c.Request().Context()
	return s.respondState(c, func(sess *game.Session) error {
		sess.ResetDeck(ctx)
		return nil
	})
}

func (s *APIV1Service) respondState(c echo.Context, fn func(*game.Session) error) error {
	ctx := c.Request().Context()
	var resp StateResponse
	intents, err := s.call(func(sess *game.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		resp.State = sess.Current(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	resp.Intents = intents
	return c.JSON(http.StatusOK, resp)
}
