package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Greater(t, c.Len(), 0)

	seen := make(map[string]bool)
	for _, e := range c.Entries() {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
		assert.NotEmpty(t, e.DisplayName)
	}

	diaphragm, ok := c.Get("diaphragm")
	require.True(t, ok)
	assert.Equal(t, RegionOther, diaphragm.EffectiveRegion())
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty id", []Entry{{ID: "  "}}},
		{"duplicate id", []Entry{{ID: "a"}, {ID: "a"}}},
		{"unknown region", []Entry{{ID: "a", Region: "arms"}}},
		{"all as tag", []Entry{{ID: "a", Region: RegionAll}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			assert.Error(t, err)
		})
	}
}

func TestNewDefaultsDisplayName(t *testing.T) {
	c, err := New([]Entry{{ID: "soleus"}})
	require.NoError(t, err)
	e, ok := c.Get("soleus")
	require.True(t, ok)
	assert.Equal(t, "soleus", e.DisplayName)
}

func TestIDsFiltersByRegion(t *testing.T) {
	c, err := New([]Entry{
		{ID: "a", Region: RegionUpper},
		{ID: "b", Region: RegionLower},
		{ID: "c"},
		{ID: "d", Region: RegionUpper},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, c.IDs(RegionAll))
	assert.Equal(t, []string{"a", "d"}, c.IDs(RegionUpper))
	assert.Equal(t, []string{"c"}, c.IDs(RegionOther))
	assert.Empty(t, c.IDs(RegionHead))
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" Upper ")
	require.NoError(t, err)
	assert.Equal(t, RegionUpper, r)

	_, err = ParseRegion("legs")
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `entries:
  - id: soleus
    name: Soleus
    answers: [soleus muscle]
    region: lower
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"soleus muscle"}, c.At(0).AcceptedAnswers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
