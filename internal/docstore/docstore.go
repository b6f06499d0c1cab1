// Package docstore is the document database backed up by the orchestrator and
// restored by the smoke test. Besides plain reads and writes it offers managed
// export and import operations that run in the background and are awaited
// through an Operation handle.
package docstore

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"warden/internal/database"
	"warden/internal/storage"
	"warden/internal/types"
)

var (
	ErrNotFound = errors.New("document not found")
)

type (
	Store interface {
		Get(ctx context.Context, collection, id string) (*types.Document, error)
		Set(ctx context.Context, collection, id string, v interface{}) error
		Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error
		Collections(ctx context.Context) ([]string, error)
		List(ctx context.Context, collection string, limit int) ([]*types.Document, error)
		DeleteBatch(ctx context.Context, collection string, limit int) (int, error)
		Export(ctx context.Context, st storage.Storage, prefix string) (Operation, error)
		Import(ctx context.Context, st storage.Storage, prefix string) (Operation, error)
	}

	store struct {
		documents database.DocumentRepository
	}
)

func New(documents database.DocumentRepository) Store {
	return &store{documents: documents}
}

func (s *store) Get(ctx context.Context, collection, id string) (*types.Document, error) {
	doc, err := s.documents.Find(ctx, collection, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s/%s", collection, id)
	}
	return doc, nil
}

func (s *store) Set(ctx context.Context, collection, id string, v interface{}) error {
	doc, err := types.NewDocument(collection, id, v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s/%s", collection, id)
	}
	return s.documents.Save(ctx, doc)
}

// Merge writes only the given top level fields, creating the document when it
// does not exist yet. A nil value clears the field.
func (s *store) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s/%s", collection, id)
	}
	return s.documents.Merge(ctx, &types.Document{Collection: collection, ID: id, Data: string(patch)})
}

func (s *store) Collections(ctx context.Context) ([]string, error) {
	return s.documents.Collections(ctx)
}

func (s *store) List(ctx context.Context, collection string, limit int) ([]*types.Document, error) {
	return s.documents.FindAfter(ctx, collection, "", limit)
}

func (s *store) DeleteBatch(ctx context.Context, collection string, limit int) (int, error) {
	return s.documents.DeleteBatch(ctx, collection, limit)
}
