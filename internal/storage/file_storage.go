package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"warden/internal/types"
)

const (
	fileScheme = "file://"
)

type fileStorage struct {
	root string
}

func NewFileStorage(root string) Storage {
	return &fileStorage{root: filepath.Clean(root)}
}

func (f fileStorage) Save(ctx context.Context, location string, file types.File) error {
	target, err := f.path(location)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return err
	}

	fi, err := os.Create(target)
	if err != nil {
		return err
	}
	defer fi.Close()

	if _, err = io.Copy(fi, file.Content); err != nil {
		return err
	}
	return fi.Sync()
}

func (f fileStorage) Get(ctx context.Context, location string) (*types.File, error) {
	target, err := f.path(location)
	if err != nil {
		return nil, err
	}

	fi, err := os.Open(target)
	if err != nil {
		return nil, err
	}

	stat, err := fi.Stat()
	if err != nil {
		_ = fi.Close()
		return nil, err
	}

	return &types.File{
		Content: fi,
		Stat:    types.FileStat{Size: stat.Size(), Name: stat.Name(), Mode: stat.Mode()},
	}, nil
}

func (f fileStorage) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

func (f fileStorage) Location(key string) string {
	return fileScheme + filepath.ToSlash(filepath.Join(f.root, key))
}

func (f fileStorage) Resolve(location string) (string, error) {
	prefix := fileScheme + filepath.ToSlash(f.root) + "/"
	if !strings.HasPrefix(location, prefix) {
		return "", fmt.Errorf("location %q is outside %s", location, f.root)
	}
	return strings.TrimPrefix(location, prefix), nil
}

func (f fileStorage) Ping(ctx context.Context) error {
	return os.MkdirAll(f.root, 0700)
}

func (f fileStorage) path(location string) (string, error) {
	target := filepath.Join(f.root, filepath.FromSlash(location))
	if target != f.root && !strings.HasPrefix(target, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("location %q escapes storage root", location)
	}
	return target, nil
}
