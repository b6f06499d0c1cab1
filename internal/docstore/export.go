package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"path"
	"time"
	"warden/internal/storage"
	"warden/internal/types"
)

const (
	ManifestFile = "export_metadata.json"

	documentFileExt = ".ndjson"
	exportBatchSize = 500
	importBatchSize = 500
)

type (
	Manifest struct {
		CreatedAt   time.Time            `json:"createdAt"`
		Collections []ManifestCollection `json:"collections"`
	}

	ManifestCollection struct {
		Name      string `json:"name"`
		File      string `json:"file"`
		Documents int    `json:"documents"`
	}

	exportRecord struct {
		ID        string          `json:"id"`
		Data      json.RawMessage `json:"data"`
		CreatedAt time.Time       `json:"createTime"`
		UpdatedAt time.Time       `json:"updateTime"`
	}
)

// Export writes every collection below prefix as one ndjson file per
// collection plus a manifest, which is written last.
func (s *store) Export(ctx context.Context, st storage.Storage, prefix string) (Operation, error) {
	if err := st.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "export destination unavailable")
	}
	return startOperation(ctx, "export:"+prefix, func(ctx context.Context) error {
		return s.export(ctx, st, prefix)
	}), nil
}

// Import loads an export written by Export. Existing documents with the same
// key are overwritten.
func (s *store) Import(ctx context.Context, st storage.Storage, prefix string) (Operation, error) {
	if err := st.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "import source unavailable")
	}
	return startOperation(ctx, "import:"+prefix, func(ctx context.Context) error {
		return s.importFrom(ctx, st, prefix)
	}), nil
}

func (s *store) export(ctx context.Context, st storage.Storage, prefix string) error {
	collections, err := s.documents.Collections(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list collections")
	}

	manifest := Manifest{
		CreatedAt:   time.Now().UTC(),
		Collections: make([]ManifestCollection, 0, len(collections)),
	}
	for _, name := range collections {
		entry, err := s.exportCollection(ctx, st, prefix, name)
		if err != nil {
			return err
		}
		manifest.Collections = append(manifest.Collections, entry)
	}

	content, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}

	f := types.NewBytesFile(ManifestFile, "application/json", content)
	if err := st.Save(ctx, path.Join(prefix, ManifestFile), f); err != nil {
		return errors.Wrap(err, "failed to write export manifest")
	}
	return nil
}

func (s *store) exportCollection(ctx context.Context, st storage.Storage, prefix, name string) (ManifestCollection, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0
	last := ""
	for {
		batch, err := s.documents.FindAfter(ctx, name, last, exportBatchSize)
		if err != nil {
			return ManifestCollection{}, errors.Wrapf(err, "failed to read collection %s", name)
		}

		for _, doc := range batch {
			rec := exportRecord{
				ID:        doc.ID,
				Data:      json.RawMessage(doc.Data),
				CreatedAt: doc.CreatedAt,
				UpdatedAt: doc.UpdatedAt,
			}
			if err := enc.Encode(rec); err != nil {
				return ManifestCollection{}, errors.Wrapf(err, "failed to encode %s/%s", name, doc.ID)
			}
			count++
			last = doc.ID
		}

		if len(batch) < exportBatchSize {
			break
		}
	}

	file := name + documentFileExt
	f := types.NewBytesFile(file, "application/x-ndjson", buf.Bytes())
	if err := st.Save(ctx, path.Join(prefix, file), f); err != nil {
		return ManifestCollection{}, errors.Wrapf(err, "failed to write collection %s", name)
	}

	return ManifestCollection{Name: name, File: file, Documents: count}, nil
}

func (s *store) importFrom(ctx context.Context, st storage.Storage, prefix string) error {
	f, err := st.Get(ctx, path.Join(prefix, ManifestFile))
	if err != nil {
		return errors.Wrap(err, "failed to read export manifest")
	}
	defer func() {
		_ = f.Content.Close()
	}()

	var manifest Manifest
	if err := json.NewDecoder(f.Content).Decode(&manifest); err != nil {
		return errors.Wrap(err, "corrupt export manifest")
	}

	for _, c := range manifest.Collections {
		if err := s.importCollection(ctx, st, prefix, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) importCollection(ctx context.Context, st storage.Storage, prefix string, c ManifestCollection) error {
	f, err := st.Get(ctx, path.Join(prefix, c.File))
	if err != nil {
		return errors.Wrapf(err, "failed to read collection %s", c.Name)
	}
	defer func() {
		_ = f.Content.Close()
	}()

	dec := json.NewDecoder(f.Content)
	batch := make([]*types.Document, 0, importBatchSize)
	count := 0
	for {
		var rec exportRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "corrupt record in collection %s", c.Name)
		}

		batch = append(batch, &types.Document{
			Collection: c.Name,
			ID:         rec.ID,
			Data:       string(rec.Data),
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		})
		count++

		if len(batch) == importBatchSize {
			if err := s.documents.SaveAll(ctx, batch); err != nil {
				return errors.Wrapf(err, "failed to import collection %s", c.Name)
			}
			batch = batch[:0]
		}
	}

	if err := s.documents.SaveAll(ctx, batch); err != nil {
		return errors.Wrapf(err, "failed to import collection %s", c.Name)
	}

	if count != c.Documents {
		return fmt.Errorf("collection %s: manifest lists %d documents, export holds %d", c.Name, c.Documents, count)
	}

	// the target may already hold other documents, never fewer
	stored, err := s.documents.Count(ctx, c.Name)
	if err != nil {
		return errors.Wrapf(err, "failed to count collection %s", c.Name)
	}
	if stored < int64(count) {
		return fmt.Errorf("collection %s: imported %d documents, found %d", c.Name, count, stored)
	}
	return nil
}
