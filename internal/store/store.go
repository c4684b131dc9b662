// Package store persists generation results: an append-only generation log and
// a profile store.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/jobcraft/internal/types"
)

// LogSink appends generation log rows. Implementations never rewrite rows.
type LogSink interface {
	Append(ctx context.Context, rec types.LogRecord) error
}

// ProfileStore saves and retrieves generated profiles. GetProfile returns
// nil, nil when the ID is unknown.
type ProfileStore interface {
	SaveProfile(ctx context.Context, sp *types.StoredProfile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*types.StoredProfile, error)
	ListProfiles(ctx context.Context, limit int) ([]*types.StoredProfile, error)
}

// MultiSink appends to every sink and joins their errors.
type MultiSink []LogSink

func (m MultiSink) Append(ctx context.Context, rec types.LogRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Append(context.Context, types.LogRecord) error { return nil }
