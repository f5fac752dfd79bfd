package v1

import (
	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/game"
	"github.com/hrygo/musclequiz/internal/study"
	"github.com/hrygo/musclequiz/internal/tracker"
)

// IntentView is the wire form of a game intent.
type IntentView struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

func intentViews(intents []game.Intent) []IntentView {
	out := make([]IntentView, 0, len(intents))
	for _, i := range intents {
		v := IntentView{Kind: i.Kind()}
		if set, ok := i.(game.RequestSetEntry); ok {
			v.ID = set.ID
		}
		out = append(out, v)
	}
	return out
}

// EntrySummary lists an entry without its accepted answers.
type EntrySummary struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Region      catalog.Region `json:"region"`
}

// CatalogResponse is returned by GET /catalog.
type CatalogResponse struct {
	Entries []EntrySummary   `json:"entries"`
	Regions []catalog.Region `json:"regions"`
	Modes   []game.Mode      `json:"modes"`
}

// StateResponse carries the shell state and the intents a call emitted.
type StateResponse struct {
	State   game.State   `json:"state"`
	Intents []IntentView `json:"intents"`
}

// GuessResponse is returned by POST /guess.
type GuessResponse struct {
	Verdict game.Verdict `json:"verdict"`
	StateResponse
}

// DailyResponse is returned by GET /daily.
type DailyResponse struct {
	Available bool           `json:"available"`
	Record    tracker.Record `json:"record"`
}

// StudyResponse is returned by GET /study.
type StudyResponse struct {
	Progress study.Progress `json:"progress"`
	State    study.State    `json:"state"`
	Position int            `json:"position"`
	Total    int            `json:"total"`
}

// ModeRequest is the body of POST /mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// RegionRequest is the body of POST /region.
type RegionRequest struct {
	Region string `json:"region"`
}

// GuessRequest is the body of POST /guess.
type GuessRequest struct {
	Input string `json:"input"`
}

// ShowRequest is the body of POST /show.
type ShowRequest struct {
	ID string `json:"id"`
}
