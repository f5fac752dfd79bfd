package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/musclequiz/internal/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pec Major", "pec major"},
		{"  Pec   Major  ", "pec major"},
		{"pectoralis-major", "pectoralis major"},
		{"Tailor's muscle", "tailor s muscle"},
		{"Músculo Bíceps", "musculo biceps"},
		{"SCM!!", "scm"},
		{"T7-L5", "t7 l5"},
		{"   ", ""},
		{"--", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsMatch(t *testing.T) {
	entry := catalog.Entry{
		ID:              "pectoralis-major",
		DisplayName:     "Pectoralis Major",
		AcceptedAnswers: []string{"pec major", "pecs"},
	}

	assert.True(t, IsMatch("Pec Major", entry))
	assert.True(t, IsMatch("PECS", entry))
	assert.True(t, IsMatch("pectoralis major", entry))
	assert.True(t, IsMatch("pectoralis_major", entry))
	assert.True(t, IsMatch("Pectorális Májor", entry))

	assert.False(t, IsMatch("  ", entry))
	assert.False(t, IsMatch("", entry))
	assert.False(t, IsMatch("pec", entry))
	assert.False(t, IsMatch("pectoralis minor", entry))
}

func TestCandidatesSkipEmpty(t *testing.T) {
	c := Candidates(catalog.Entry{ID: "soleus", DisplayName: "Soleus", AcceptedAnswers: []string{"", "!!"}})
	assert.Len(t, c, 1)
	assert.Contains(t, c, "soleus")
}
