package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/types"
)

type BookRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.Book, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Book, error)
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	repoLog := baseLog.With("repo", "BookRepo")
	return &bookRepo{db: db, log: repoLog}
}

func (r *bookRepo) GetByID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Book
	if err := transaction.WithContext(ctx).
		Where("id = ?", bookID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *bookRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Book
	if err := transaction.WithContext(ctx).
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
