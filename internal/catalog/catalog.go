// Package catalog holds the static, read-only list of quiz entries.
//
// A Catalog is built once at startup (from the embedded default or a YAML
// file) and never mutated afterwards, so it is safe to share between
// goroutines without locking.
package catalog

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalogYAML []byte

// Region is an optional partition tag on entries, also used as the study deck filter.
type Region string

const (
	// RegionAll matches every entry. It is a filter value only, never an entry tag.
	RegionAll Region = "all"
	// RegionUpper covers shoulder, arm and chest muscles.
	RegionUpper Region = "upper"
	// RegionLower covers hip, thigh, leg and foot muscles.
	RegionLower Region = "lower"
	// RegionCore covers abdominal and back muscles.
	RegionCore Region = "core"
	// RegionHead covers head and neck muscles.
	RegionHead Region = "head"
	// RegionOther is the catch-all tag for entries with no region.
	RegionOther Region = "other"
)

var knownRegions = []Region{RegionAll, RegionUpper, RegionLower, RegionCore, RegionHead, RegionOther}

// Regions returns every known region, "all" first.
func Regions() []Region {
	out := make([]Region, len(knownRegions))
	copy(out, knownRegions)
	return out
}

// Valid reports whether r is one of the known region values.
func (r Region) Valid() bool {
	for _, known := range knownRegions {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRegion parses a region name case-insensitively.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.Errorf("unknown region %q", s)
	}
	return r, nil
}

// Detail holds the optional anatomy notes shown once an entry is revealed.
type Detail struct {
	Origin      string `yaml:"origin" json:"origin"`
	Insertion   string `yaml:"insertion" json:"insertion"`
	Action      string `yaml:"action" json:"action"`
	Innervation string `yaml:"innervation" json:"innervation"`
}

// Entry is one quiz subject.
type Entry struct {
	ID              string   `yaml:"id" json:"id"`
	DisplayName     string   `yaml:"name" json:"displayName"`
	AcceptedAnswers []string `yaml:"answers" json:"acceptedAnswers,omitempty"`
	Detail          *Detail  `yaml:"detail,omitempty" json:"detail,omitempty"`
	Region          Region   `yaml:"region,omitempty" json:"region,omitempty"`
}

// EffectiveRegion returns the entry's region, defaulting untagged entries to RegionOther.
func (e Entry) EffectiveRegion() Region {
	if e.Region == "" {
		return RegionOther
	}
	return e.Region
}

// InRegion reports whether the entry belongs to the given filter.
func (e Entry) InRegion(r Region) bool {
	return r == RegionAll || e.EffectiveRegion() == r
}

// Catalog is an immutable, ordered list of entries indexed by id.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// New validates entries and builds a catalog. Ids must be non-empty and unique,
// and region tags must be known values other than "all".
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, errors.Errorf("entry %d has an empty id", i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, errors.Errorf("duplicate entry id %q", e.ID)
		}
		if e.Region != "" && (!e.Region.Valid() || e.Region == RegionAll) {
			return nil, errors.Errorf("entry %q has invalid region %q", e.ID, e.Region)
		}
		if e.DisplayName == "" {
			e.DisplayName = e.ID
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}
	return New(file.Entries)
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}
	return Parse(data)
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// At returns the entry at position i.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Get looks an entry up by id.
func (c *Catalog) Get(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns the ids of entries matching region, in catalog order.
func (c *Catalog) IDs(region Region) []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		if e.InRegion(region) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
