// Package progress persists per-concern game state under fixed, versioned keys.
//
// Storage is best-effort: every call yields an Outcome instead of an error that
// must be handled. Callers log or report failed outcomes and keep going with
// their in-memory state.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Store when a key has no value.
var ErrNotFound = errors.New("progress: not found")

// Store is the durable key-value backend.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists the stored keys starting with prefix, in key order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Op names a storage operation.
type Op string

const (
	OpLoad   Op = "load"
	OpSave   Op = "save"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

// Outcome is the result of one storage call.
type Outcome struct {
	Op  Op
	Key string
	// Missing is set when a load found no value. It is not a failure.
	Missing bool
	Err     error
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Reporter receives failed outcomes.
type Reporter interface {
	Report(o Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(o Outcome)

// Report calls f(o).
func (f ReporterFunc) Report(o Outcome) {
	f(o)
}

// Persister wraps a Store with JSON encoding and outcome reporting.
type Persister struct {
	store    Store
	logger   *slog.Logger
	reporter Reporter
}

// NewPersister creates a Persister. A nil store behaves as permanently unavailable storage.
func NewPersister(store Store, logger *slog.Logger, reporter Reporter) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{store: store, logger: logger, reporter: reporter}
}

var errNoStore = errors.New("progress: storage unavailable")

// Load returns the raw bytes stored under key.
func (p *Persister) Load(ctx context.Context, key string) ([]byte, Outcome) {
	out := Outcome{Op: OpLoad, Key: key}
	if p.store == nil {
		out.Err = errNoStore
		p.report(out)
		return nil, out
	}
	data, err := p.store.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		out.Missing = true
		return nil, out
	case err != nil:
		out.Err = errors.Wrapf(err, "failed to load %s", key)
		p.report(out)
		return nil, out
	}
	return data, out
}

// Save marshals v as JSON and stores it under key.
func (p *Persister) Save(ctx context.Context, key string, v any) Outcome {
	out := Outcome{Op: OpSave, Key: key}
	data, err := json.Marshal(v)
	if err != nil {
		out.Err = errors.Wrapf(err, "failed to encode %s", key)
		p.report(out)
		return out
	}
	if p.store == nil {
		out.Err = errNoStore
		p.report(out)
		return out
	}
	if err := p.store.Save(ctx, key, data); err != nil {
		out.Err = errors.Wrapf(err, "failed to save %s", key)
		p.report(out)
	}
	return out
}

// Delete removes key. Deleting a missing key is not a failure.
func (p *Persister) Delete(ctx context.Context, key string) Outcome {
	out := Outcome{Op: OpDelete, Key: key}
	if p.store == nil {
		out.Err = errNoStore
		p.report(out)
		return out
	}
	if err := p.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		out.Err = errors.Wrapf(err, "failed to delete %s", key)
		p.report(out)
	}
	return out
}

// Keys lists the keys under prefix.
func (p *Persister) Keys(ctx context.Context, prefix string) ([]string, Outcome) {
	out := Outcome{Op: OpList, Key: prefix}
	if p.store == nil {
		out.Err = errNoStore
		p.report(out)
		return nil, out
	}
	keys, err := p.store.Keys(ctx, prefix)
	if err != nil {
		out.Err = errors.Wrapf(err, "failed to list %s*", prefix)
		p.report(out)
		return nil, out
	}
	return keys, out
}

// Discard logs that a stored value was rejected by its validator.
func (p *Persister) Discard(key string, reason error) {
	p.logger.Warn("discarding malformed progress",
		slog.String("key", key),
		slog.String("error", reason.Error()),
	)
}

func (p *Persister) report(o Outcome) {
	p.logger.Warn("progress storage failed",
		slog.String("op", string(o.Op)),
		slog.String("key", o.Key),
		slog.String("error", o.Err.Error()),
	)
	if p.reporter != nil {
		p.reporter.Report(o)
	}
}
