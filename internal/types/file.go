package types

import (
	"bytes"
	"io"
	"os"
)

type File struct {
	Content io.ReadCloser
	Stat    FileStat
}

type FileStat struct {
	Size        int64
	Name        string
	Mode        os.FileMode
	ContentType string
}

type NoOpReadCloser struct {
	io.Reader
}

func (NoOpReadCloser) Close() error {
	return nil
}

// NewBytesFile wraps an in-memory payload so it can be handed to a Storage.
func NewBytesFile(name, contentType string, content []byte) File {
	return File{
		Content: NoOpReadCloser{Reader: bytes.NewReader(content)},
		Stat: FileStat{
			Size:        int64(len(content)),
			Name:        name,
			ContentType: contentType,
		},
	}
}

func (f File) GetContentType() string {
	if f.Stat.ContentType == "" {
		return "application/octet-stream"
	}
	return f.Stat.ContentType
}
