package database

import (
	"context"
	"warden/internal/types"
)

type DocumentRepository interface {
	Find(ctx context.Context, collection, id string) (*types.Document, error)
	Save(ctx context.Context, doc *types.Document) error
	Merge(ctx context.Context, doc *types.Document) error
	SaveAll(ctx context.Context, docs []*types.Document) error
	Collections(ctx context.Context) ([]string, error)
	FindAfter(ctx context.Context, collection, afterID string, limit int) ([]*types.Document, error)
	Count(ctx context.Context, collection string) (int64, error)
	DeleteBatch(ctx context.Context, collection string, limit int) (int, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *types.DirectoryUser) error
	FindAfter(ctx context.Context, afterUID string, limit int) ([]*types.DirectoryUser, error)
}
