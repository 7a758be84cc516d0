package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/reader"
	"github.com/readwave/readwave-backend/internal/repos"
	"github.com/readwave/readwave-backend/internal/types"
)

type ContentService interface {
	ListBooks(ctx context.Context, tx *gorm.DB) ([]*types.Book, error)
	GetBook(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.Book, error)
	FetchSegments(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]reader.Segment, error)
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	bookRepo    repos.BookRepo
	segmentRepo repos.SegmentRepo
}

func NewContentService(db *gorm.DB, baseLog *logger.Logger, bookRepo repos.BookRepo, segmentRepo repos.SegmentRepo) ContentService {
	return &contentService{
		db:          db,
		log:         baseLog.With("service", "ContentService"),
		bookRepo:    bookRepo,
		segmentRepo: segmentRepo,
	}
}

func (s *contentService) ListBooks(ctx context.Context, tx *gorm.DB) ([]*types.Book, error) {
	return s.bookRepo.List(ctx, tx)
}

func (s *contentService) GetBook(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.Book, error) {
	return s.bookRepo.GetByID(ctx, tx, bookID)
}

// FetchSegments loads a book's segments in reading order and maps them to
// the reader's view. Malformed alignment JSON on one segment degrades that
// segment to no-alignment rather than failing the whole book, and a repo
// failure degrades to an empty book so the session still opens.
func (s *contentService) FetchSegments(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]reader.Segment, error) {
	rows, err := s.segmentRepo.GetByBookID(ctx, tx, bookID)
	if err != nil {
		s.log.Warn("Failed to load segments, opening book as empty", "book_id", bookID, "error", err)
		return nil, nil
	}

	segments := make([]reader.Segment, 0, len(rows))
	for _, row := range rows {
		segments = append(segments, s.toReaderSegment(row))
	}
	return segments, nil
}

func (s *contentService) toReaderSegment(row *types.Segment) reader.Segment {
	seg := reader.Segment{
		ID:        row.ID,
		Title:     row.Title,
		Text:      row.Text,
		Position:  row.Position,
		Kind:      row.Kind,
		AudioPath: row.AudioPath,
	}
	if len(row.Alignment) > 0 {
		var alignment reader.AlignmentData
		if err := json.Unmarshal(row.Alignment, &alignment); err != nil {
			s.log.Warn("Discarding malformed alignment data", "segment_id", row.ID, "error", err)
		} else if len(alignment.Spans) > 0 {
			seg.Alignment = &alignment
		}
	}
	return seg
}
