package storage

import (
	"context"
	"fmt"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"strings"
	"time"
	"warden/internal/types"
)

const (
	defaultBucket = "backups"
)

type objectStorage struct {
	client        *minio.Client
	bucket        string
	region        string
	retentionDays int
}

func NewObjectStorage(cred types.StorageCredentials) (Storage, error) {
	mn, err := minio.New(cred.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cred.AccessKeyID, cred.SecretKey, ""),
		Secure: cred.Secure,
		Region: cred.Region,
	})
	if err != nil {
		return nil, err
	}

	bucket := cred.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return &objectStorage{
		region:        cred.Region,
		client:        mn,
		bucket:        bucket,
		retentionDays: cred.RetentionDays,
	}, nil
}

func (s objectStorage) Save(ctx context.Context, location string, file types.File) error {
	if err := s.makeBucket(ctx); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{
		ContentType: file.GetContentType(),
	}
	if s.retentionDays > 0 {
		opts.Mode = minio.Governance
		opts.RetainUntilDate = time.Now().UTC().AddDate(0, 0, s.retentionDays)
	}

	_, err := s.client.PutObject(ctx, s.bucket, location, file.Content, file.Stat.Size, opts)
	if err != nil {
		return err
	}
	return nil
}

func (s objectStorage) Get(ctx context.Context, location string) (*types.File, error) {
	r, err := s.client.GetObject(ctx, s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	stat, err := r.Stat()
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return &types.File{
		Content: r,
		Stat:    types.FileStat{Size: stat.Size, Name: stat.Key, ContentType: stat.ContentType},
	}, nil
}

func (s objectStorage) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make([]string, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s objectStorage) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

func (s objectStorage) Resolve(location string) (string, error) {
	prefix := fmt.Sprintf("s3://%s/", s.bucket)
	if !strings.HasPrefix(location, prefix) {
		return "", fmt.Errorf("location %q is not in bucket %s", location, s.bucket)
	}
	return strings.TrimPrefix(location, prefix), nil
}

// makeBucket creates the bucket with object locking when retention is on,
// locking cannot be enabled on an existing bucket afterwards.
func (s objectStorage) makeBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{
		Region:        s.region,
		ObjectLocking: s.retentionDays > 0,
	})
}

func (s objectStorage) Ping(ctx context.Context) error {
	_, err := s.client.ListBuckets(ctx)
	if err != nil {
		return err
	}
	return nil
}
