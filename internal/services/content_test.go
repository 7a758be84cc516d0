package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/types"
)

type fakeBookRepo struct {
	books map[uuid.UUID]*types.Book
}

func (r *fakeBookRepo) GetByID(_ context.Context, _ *gorm.DB, bookID uuid.UUID) (*types.Book, error) {
	if b, ok := r.books[bookID]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBookRepo) List(_ context.Context, _ *gorm.DB) ([]*types.Book, error) {
	out := make([]*types.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	return out, nil
}

type fakeSegmentRepo struct {
	segments []*types.Segment
	listErr  error
}

func (r *fakeSegmentRepo) Create(_ context.Context, _ *gorm.DB, segments []*types.Segment) ([]*types.Segment, error) {
	r.segments = append(r.segments, segments...)
	return segments, nil
}

func (r *fakeSegmentRepo) GetByID(_ context.Context, _ *gorm.DB, segmentID uuid.UUID) (*types.Segment, error) {
	for _, s := range r.segments {
		if s.ID == segmentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSegmentRepo) GetByBookID(_ context.Context, _ *gorm.DB, bookID uuid.UUID) ([]*types.Segment, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*types.Segment
	for _, s := range r.segments {
		if s.BookID == bookID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSegmentRepo) SoftDeleteByBookID(_ context.Context, _ *gorm.DB, _ uuid.UUID) error {
	return nil
}

func TestContentService_FetchSegmentsMapsAlignment(t *testing.T) {
	bookID := uuid.New()
	alignment := []byte(`{"language":"en","segments":[{"start":0,"end":2.5,"text":"Hello there."}]}`)
	repo := &fakeSegmentRepo{segments: []*types.Segment{
		{
			ID:        uuid.New(),
			BookID:    bookID,
			Title:     "Chapter One",
			Text:      "Hello there.",
			Kind:      types.SegmentKindText,
			AudioPath: "audio/ch1.mp3",
			Alignment: alignment,
		},
		{
			ID:     uuid.New(),
			BookID: bookID,
			Title:  "Part One",
			Kind:   types.SegmentKindSection,
		},
	}}
	svc := NewContentService(nil, logger.NewNop(), &fakeBookRepo{}, repo)

	segments, err := svc.FetchSegments(context.Background(), nil, bookID)
	if err != nil {
		t.Fatalf("FetchSegments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	text := segments[0]
	if text.Alignment == nil || len(text.Alignment.Spans) != 1 {
		t.Fatalf("alignment not mapped: %+v", text.Alignment)
	}
	if text.Alignment.Spans[0].End != 2.5 {
		t.Fatalf("span end = %v, want 2.5", text.Alignment.Spans[0].End)
	}
	if !text.IsText() || text.AudioPath != "audio/ch1.mp3" {
		t.Fatalf("text segment mapped wrong: %+v", text)
	}

	section := segments[1]
	if section.IsText() || section.Alignment != nil {
		t.Fatalf("section segment mapped wrong: %+v", section)
	}
}

func TestContentService_MalformedAlignmentDegradesToNone(t *testing.T) {
	bookID := uuid.New()
	repo := &fakeSegmentRepo{segments: []*types.Segment{
		{
			ID:        uuid.New(),
			BookID:    bookID,
			Title:     "Chapter",
			Text:      "Some text.",
			Kind:      types.SegmentKindText,
			Alignment: []byte(`{not json`),
		},
	}}
	svc := NewContentService(nil, logger.NewNop(), &fakeBookRepo{}, repo)

	segments, err := svc.FetchSegments(context.Background(), nil, bookID)
	if err != nil {
		t.Fatalf("FetchSegments: %v", err)
	}
	if segments[0].Alignment != nil {
		t.Fatalf("malformed alignment should map to nil, got %+v", segments[0].Alignment)
	}
}

func TestContentService_FetchSegmentsRepoErrorYieldsEmptyBook(t *testing.T) {
	repo := &fakeSegmentRepo{listErr: gorm.ErrInvalidDB}
	svc := NewContentService(nil, logger.NewNop(), &fakeBookRepo{}, repo)

	segments, err := svc.FetchSegments(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatalf("FetchSegments: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected empty book on repo failure, got %d segments", len(segments))
	}
}
