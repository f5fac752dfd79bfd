package store

import "strings"

// Value is one persisted record, addressed by a fixed key such as "study_progress_v2".
type Value struct {
	Key       string
	Data      string // JSON document
	UpdatedTs int64
}

func (v *Value) clone() *Value {
	c := *v
	return &c
}

// FindValue specifies the conditions for finding values.
// Key selects one value; KeyPrefix lists every value whose key starts with it.
type FindValue struct {
	Key       *string
	KeyPrefix *string
}

// UpsertValue specifies the data for upserting a value.
type UpsertValue struct {
	Key  string
	Data string
}

// DeleteValue specifies the value to delete.
type DeleteValue struct {
	Key string
}

// EscapeLike escapes LIKE wildcards in s using backslash as the escape character.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
