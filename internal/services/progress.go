package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/repos"
	"github.com/readwave/readwave-backend/internal/types"
)

const (
	eventTypeSubPageViewed = "reader.sub_page_viewed"
	eventTypeQuizAnswered  = "reader.quiz_answered"
	eventTypeBookCompleted = "reader.book_completed"
)

// ProgressService persists reading progress signals. Writes are
// fire-and-forget: the reader core reports and moves on, and a lost write
// costs one analytics row, never a stuck session.
type ProgressService interface {
	RecordAttempt(userID, questionID uuid.UUID, isCorrect bool, answer string)
	RecordPageView(userID, segmentID uuid.UUID, subPageIndex int)
	RecordBookCompleted(userID, bookID uuid.UUID)
	History(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserEvent, error)
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	attemptRepo repos.QuizAttemptRepo
	eventRepo   repos.UserEventRepo
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, attemptRepo repos.QuizAttemptRepo, eventRepo repos.UserEventRepo) ProgressService {
	return &progressService{
		db:          db,
		log:         baseLog.With("service", "ProgressService"),
		attemptRepo: attemptRepo,
		eventRepo:   eventRepo,
	}
}

func (s *progressService) RecordAttempt(userID, questionID uuid.UUID, isCorrect bool, answer string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := s.attemptRepo.Create(ctx, nil, &types.QuizAttempt{
			UserID:     userID,
			QuestionID: questionID,
			Answer:     answer,
			IsCorrect:  isCorrect,
		})
		if err != nil {
			s.log.Warn("Failed to persist quiz attempt", "user_id", userID, "question_id", questionID, "error", err)
			return
		}
		s.writeEvent(ctx, userID, nil, nil, eventTypeQuizAnswered, map[string]any{
			"question_id": questionID,
			"is_correct":  isCorrect,
		})
	}()
}

func (s *progressService) RecordPageView(userID, segmentID uuid.UUID, subPageIndex int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.writeEvent(ctx, userID, nil, &segmentID, eventTypeSubPageViewed, map[string]any{
			"sub_page_index": subPageIndex,
		})
	}()
}

func (s *progressService) RecordBookCompleted(userID, bookID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.writeEvent(ctx, userID, &bookID, nil, eventTypeBookCompleted, nil)
	}()
}

func (s *progressService) History(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserEvent, error) {
	return s.eventRepo.GetByUserID(ctx, tx, userID, limit)
}

func (s *progressService) writeEvent(ctx context.Context, userID uuid.UUID, bookID, segmentID *uuid.UUID, eventType string, data map[string]any) {
	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			s.log.Warn("Failed to marshal event payload", "type", eventType, "error", err)
			return
		}
		payload = raw
	}
	_, err := s.eventRepo.Create(ctx, nil, &types.UserEvent{
		UserID:    userID,
		BookID:    bookID,
		SegmentID: segmentID,
		Type:      eventType,
		Data:      payload,
	})
	if err != nil {
		s.log.Warn("Failed to persist user event", "user_id", userID, "type", eventType, "error", err)
	}
}
