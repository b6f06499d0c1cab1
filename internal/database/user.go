package database

import (
	"context"
	"gorm.io/gorm"
	"warden/internal/types"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (u userRepository) Save(ctx context.Context, user *types.DirectoryUser) error {
	return u.db.WithContext(ctx).Save(user).Error
}

func (u userRepository) FindAfter(ctx context.Context, afterUID string, limit int) ([]*types.DirectoryUser, error) {
	result := make([]*types.DirectoryUser, 0)
	err := u.db.WithContext(ctx).
		Where("uid > ?", afterUID).
		Order("uid").
		Limit(limit).
		Find(&result).Error
	return result, err
}
