package database

import (
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"warden/internal/types"
)

var (
	documentKey = []clause.Column{{Name: "collection"}, {Name: "id"}}
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (d documentRepository) Find(ctx context.Context, collection, id string) (*types.Document, error) {
	doc := &types.Document{}
	err := d.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(doc).Error
	return doc, err
}

// Save replaces the whole document.
func (d documentRepository) Save(ctx context.Context, doc *types.Document) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   documentKey,
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(doc).Error
}

// Merge applies doc.Data as a JSON merge patch on top of the stored document,
// so keys absent from the patch are left untouched. The merge runs inside the
// upsert statement and is atomic.
func (d documentRepository) Merge(ctx context.Context, doc *types.Document) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: documentKey,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       gorm.Expr("json_patch(documents.data, excluded.data)"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(doc).Error
}

func (d documentRepository) SaveAll(ctx context.Context, docs []*types.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   documentKey,
		DoUpdates: clause.AssignmentColumns([]string{"data", "created_at", "updated_at"}),
	}).Create(&docs).Error
}

func (d documentRepository) Collections(ctx context.Context) ([]string, error) {
	result := make([]string, 0)
	err := d.db.WithContext(ctx).Model(&types.Document{}).
		Distinct("collection").
		Order("collection").
		Pluck("collection", &result).Error
	return result, err
}

func (d documentRepository) FindAfter(ctx context.Context, collection, afterID string, limit int) ([]*types.Document, error) {
	result := make([]*types.Document, 0)
	err := d.db.WithContext(ctx).
		Where("collection = ? AND id > ?", collection, afterID).
		Order("id").
		Limit(limit).
		Find(&result).Error
	return result, err
}

func (d documentRepository) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&types.Document{}).Where("collection = ?", collection).Count(&count).Error
	return count, err
}

// DeleteBatch removes at most limit documents of a collection and returns how
// many were deleted.
func (d documentRepository) DeleteBatch(ctx context.Context, collection string, limit int) (int, error) {
	batch := d.db.Model(&types.Document{}).
		Select("id").
		Where("collection = ?", collection).
		Order("id").
		Limit(limit)

	result := d.db.WithContext(ctx).
		Where("collection = ? AND id IN (?)", collection, batch).
		Delete(&types.Document{})
	return int(result.RowsAffected), result.Error
}
