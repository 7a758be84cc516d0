package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/types"
)

type SegmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, segments []*types.Segment) ([]*types.Segment, error)
	GetByID(ctx context.Context, tx *gorm.DB, segmentID uuid.UUID) (*types.Segment, error)
	GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.Segment, error)
	SoftDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error
}

type segmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSegmentRepo(db *gorm.DB, baseLog *logger.Logger) SegmentRepo {
	repoLog := baseLog.With("repo", "SegmentRepo")
	return &segmentRepo{db: db, log: repoLog}
}

func (r *segmentRepo) Create(ctx context.Context, tx *gorm.DB, segments []*types.Segment) ([]*types.Segment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(segments) == 0 {
		return []*types.Segment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *segmentRepo) GetByID(ctx context.Context, tx *gorm.DB, segmentID uuid.UUID) (*types.Segment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Segment
	if err := transaction.WithContext(ctx).
		Where("id = ?", segmentID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *segmentRepo) GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.Segment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Segment
	if err := transaction.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *segmentRepo) SoftDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("book_id = ?", bookID).
		Delete(&types.Segment{}).Error; err != nil {
		return err
	}
	return nil
}
