// Package status owns the singleton backup status record. Each pipeline
// writes its own field family through its own method; there is no generic
// writer.
package status

import (
	"context"
	"github.com/pkg/errors"
	"time"
	"warden/internal/docstore"
	"warden/internal/types"
)

type (
	Reporter interface {
		// Ensure creates the record if it does not exist yet
		Ensure(ctx context.Context) error
		RecordBackup(ctx context.Context, outcome types.BackupOutcome) error
		RecordSmokeTest(ctx context.Context, outcome types.SmokeTestOutcome) error
		Get(ctx context.Context) (*types.BackupStatus, error)
	}

	reporter struct {
		store docstore.Store
	}
)

func NewReporter(store docstore.Store) Reporter {
	return &reporter{store: store}
}

func (r *reporter) Ensure(ctx context.Context) error {
	return r.store.Merge(ctx, types.StatusCollection, types.StatusDocumentID, map[string]interface{}{})
}

func (r *reporter) RecordBackup(ctx context.Context, outcome types.BackupOutcome) error {
	if outcome.At.IsZero() {
		outcome.At = time.Now().UTC()
	}
	err := r.store.Merge(ctx, types.StatusCollection, types.StatusDocumentID, outcome.Fields())
	return errors.Wrap(err, "failed to record backup status")
}

func (r *reporter) RecordSmokeTest(ctx context.Context, outcome types.SmokeTestOutcome) error {
	if outcome.At.IsZero() {
		outcome.At = time.Now().UTC()
	}
	err := r.store.Merge(ctx, types.StatusCollection, types.StatusDocumentID, outcome.Fields())
	return errors.Wrap(err, "failed to record smoke test status")
}

func (r *reporter) Get(ctx context.Context) (*types.BackupStatus, error) {
	st := &types.BackupStatus{}
	doc, err := r.store.Get(ctx, types.StatusCollection, types.StatusDocumentID)
	if errors.Is(err, docstore.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}

	if err := doc.Decode(st); err != nil {
		return nil, errors.Wrap(err, "corrupt backup status record")
	}
	return st, nil
}
