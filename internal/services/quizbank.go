package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/reader"
	"github.com/readwave/readwave-backend/internal/repos"
	"github.com/readwave/readwave-backend/internal/types"
)

const quizCacheTTL = 10 * time.Minute

// QuizBankService supplies segment quiz sets to reading sessions. Lookups
// go redis first, then postgres, with singleflight collapsing concurrent
// fetches for the same segment. Every failure path degrades to an empty
// quiz set; a reading session must never stall on quiz infrastructure.
type QuizBankService interface {
	reader.QuizBank
	Invalidate(ctx context.Context, segmentID uuid.UUID)
}

type quizBankService struct {
	db    *gorm.DB
	log   *logger.Logger
	rdb   *goredis.Client
	repo  repos.QuizQuestionRepo
	group singleflight.Group
}

func NewQuizBankService(db *gorm.DB, baseLog *logger.Logger, rdb *goredis.Client, repo repos.QuizQuestionRepo) QuizBankService {
	return &quizBankService{
		db:   db,
		log:  baseLog.With("service", "QuizBankService"),
		rdb:  rdb,
		repo: repo,
	}
}

func quizCacheKey(segmentID uuid.UUID) string {
	return "quiz:segment:" + segmentID.String()
}

func (s *quizBankService) FetchQuestions(ctx context.Context, segmentID uuid.UUID) ([]reader.Question, error) {
	if cached, ok := s.readCache(ctx, segmentID); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(segmentID.String(), func() (any, error) {
		rows, err := s.repo.GetBySegmentID(ctx, nil, segmentID)
		if err != nil {
			return nil, err
		}
		questions := make([]reader.Question, 0, len(rows))
		for _, row := range rows {
			questions = append(questions, toReaderQuestion(s.log, row))
		}
		s.writeCache(ctx, segmentID, questions)
		return questions, nil
	})
	if err != nil {
		s.log.Warn("Quiz fetch failed, serving empty set", "segment_id", segmentID, "error", err)
		return nil, nil
	}
	return v.([]reader.Question), nil
}

// Invalidate drops a segment's cached quiz set, for when questions are
// re-ingested.
func (s *quizBankService) Invalidate(ctx context.Context, segmentID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, quizCacheKey(segmentID)).Err(); err != nil {
		s.log.Warn("Failed to invalidate quiz cache", "segment_id", segmentID, "error", err)
	}
}

func (s *quizBankService) readCache(ctx context.Context, segmentID uuid.UUID) ([]reader.Question, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, quizCacheKey(segmentID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.log.Debug("Quiz cache read failed", "segment_id", segmentID, "error", err)
		}
		return nil, false
	}
	var questions []reader.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		s.log.Warn("Dropping corrupt quiz cache entry", "segment_id", segmentID, "error", err)
		_ = s.rdb.Del(ctx, quizCacheKey(segmentID)).Err()
		return nil, false
	}
	return questions, true
}

func (s *quizBankService) writeCache(ctx context.Context, segmentID uuid.UUID, questions []reader.Question) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, quizCacheKey(segmentID), raw, quizCacheTTL).Err(); err != nil {
		s.log.Debug("Quiz cache write failed", "segment_id", segmentID, "error", err)
	}
}

func toReaderQuestion(log *logger.Logger, row *types.QuizQuestion) reader.Question {
	q := reader.Question{
		ID:            row.ID,
		Prompt:        row.Question,
		CorrectAnswer: row.CorrectAnswer,
		Explanation:   row.Explanation,
	}
	if len(row.IncorrectAnswers) > 0 {
		if err := json.Unmarshal(row.IncorrectAnswers, &q.IncorrectAnswers); err != nil {
			log.Warn("Malformed incorrect_answers payload", "question_id", row.ID, "error", err)
		}
	}
	return q
}
