// Package directory reads the identity directory page by page.
package directory

import (
	"context"
	"encoding/base64"
	"github.com/pkg/errors"
	"warden/internal/database"
	"warden/internal/types"
)

// MaxPageSize is the largest page the directory hands out.
const MaxPageSize = 1000

type (
	Directory interface {
		// ListUsers returns up to pageSize users following pageToken. An empty
		// NextPageToken marks the last page.
		ListUsers(ctx context.Context, pageSize int, pageToken string) (*types.UserPage, error)
	}

	directory struct {
		users database.UserRepository
	}
)

func New(users database.UserRepository) Directory {
	return &directory{users: users}
}

func (d *directory) ListUsers(ctx context.Context, pageSize int, pageToken string) (*types.UserPage, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	after, err := decodeToken(pageToken)
	if err != nil {
		return nil, err
	}

	// one extra row tells whether another page follows
	users, err := d.users.FindAfter(ctx, after, pageSize+1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	page := &types.UserPage{Users: users}
	if len(users) > pageSize {
		page.Users = users[:pageSize]
		page.NextPageToken = encodeToken(page.Users[pageSize-1].UID)
	}
	return page, nil
}

func encodeToken(uid string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(uid))
}

func decodeToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	uid, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Wrap(err, "invalid page token")
	}
	return string(uid), nil
}
