package game

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects where the current entry comes from.
type Mode string

const (
	// ModeDaily plays the shared entry of the day, once.
	ModeDaily Mode = "daily"
	// ModeStudy walks the shuffled study deck.
	ModeStudy Mode = "study"
	// ModePractice plays random entries with an unpersisted tally.
	ModePractice Mode = "practice"
)

// Modes returns every mode in display order.
func Modes() []Mode {
	return []Mode{ModeDaily, ModeStudy, ModePractice}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDaily, ModeStudy, ModePractice:
		return true
	}
	return false
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errors.Wrapf(ErrUnknownMode, "%q", s)
	}
	return m, nil
}
