package storage

import (
	"context"
	"fmt"
	"warden/internal/types"
)

type (
	Type string

	Storage interface {
		Save(ctx context.Context, location string, f types.File) error
		Get(ctx context.Context, location string) (*types.File, error)
		List(ctx context.Context, prefix string) ([]string, error)
		// Location turns a key into the externally visible path recorded in the status record
		Location(key string) string
		// Resolve turns a path produced by Location back into a key
		Resolve(location string) (string, error)
		Ping(ctx context.Context) error
	}
)

const (
	TypeFS Type = "File"
	TypeS3 Type = "S3"
)

func (t Type) String() string {
	return string(t)
}

func New(cred types.StorageCredentials) (Storage, error) {
	switch Type(cred.Type) {
	case TypeFS:
		return NewFileStorage(cred.RootDir), nil
	case TypeS3:
		return NewObjectStorage(cred)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cred.Type)
	}
}
