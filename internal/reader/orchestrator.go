package reader

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
)

// QuizBank supplies a segment's quiz set. An empty result is valid; fetch
// failures are expected to degrade to empty rather than error.
type QuizBank interface {
	FetchQuestions(ctx context.Context, segmentID uuid.UUID) ([]Question, error)
}

// ProgressSink receives best-effort progress reports. Implementations are
// fire-and-forget; the core never waits on them or retries.
type ProgressSink interface {
	RecordAttempt(userID, questionID uuid.UUID, isCorrect bool, answer string)
	RecordPageView(userID, segmentID uuid.UUID, subPageIndex int)
}

// OrchestratorEvents is the segment-level escape hatch: navigation that
// leaves the current segment's merged content/quiz space is forwarded here.
type OrchestratorEvents struct {
	RequestNextSegment     func(autoPlayAudio bool)
	RequestPreviousSegment func()
	StateChanged           func()
}

// Orchestrator merges the reading controller's sub-page space and the quiz
// controller's question space into one linear navigable sequence per
// segment. Quiz mode holds iff the linear position passed the last sub-page
// and the segment actually has questions.
type Orchestrator struct {
	mu  sync.Mutex
	log *logger.Logger

	reading  *ReadingController
	quiz     *QuizController
	quizBank QuizBank
	progress ProgressSink
	userID   uuid.UUID

	segment   Segment
	epoch     uint64
	questions []Question
	mode      PositionKind

	events OrchestratorEvents
}

type OrchestratorConfig struct {
	Log      *logger.Logger
	Clock    Clock
	Reading  *ReadingController
	QuizBank QuizBank
	Progress ProgressSink
	UserID   uuid.UUID
	Events   OrchestratorEvents
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		log:      cfg.Log.With("component", "Orchestrator"),
		reading:  cfg.Reading,
		quizBank: cfg.QuizBank,
		progress: cfg.Progress,
		userID:   cfg.UserID,
		events:   cfg.Events,
	}
	o.quiz = NewQuizController(cfg.Log, cfg.Clock, o.handleQuizResult, o.handleQuizAutoAdvance)
	o.reading.onAudioFinished = o.handleAudioFinished
	o.reading.onPageChanged = o.handlePageChanged
	return o
}

func (o *Orchestrator) Quiz() *QuizController { return o.quiz }

func (o *Orchestrator) Reading() *ReadingController { return o.reading }

// SetSegment mounts a segment into the orchestrator: content mode, sub-page
// zero, empty quiz set, and a background quiz fetch. The fetch is gated on
// the segment being text and a user identity being present; either gate
// failing yields an empty quiz set, not an error. The epoch captured at
// dispatch discards fetch results arriving after another segment mounted.
func (o *Orchestrator) SetSegment(ctx context.Context, seg Segment, autoPlayAudio bool) {
	o.mu.Lock()
	o.epoch++
	myEpoch := o.epoch
	o.segment = seg
	o.questions = nil
	o.mode = PositionContent
	o.mu.Unlock()

	o.quiz.SetQuestions(nil)
	o.reading.SetSegment(ctx, seg, autoPlayAudio)

	if o.quizBank == nil || !seg.IsText() || o.userID == uuid.Nil {
		return
	}
	go func() {
		questions, err := o.quizBank.FetchQuestions(ctx, seg.ID)
		if err != nil {
			o.log.Warn("Quiz fetch failed, continuing without quiz", "segment_id", seg.ID, "error", err)
			questions = nil
		}
		o.mu.Lock()
		if myEpoch != o.epoch {
			o.mu.Unlock()
			o.log.Debug("Discarding stale quiz fetch", "segment_id", seg.ID)
			return
		}
		o.questions = questions
		o.mu.Unlock()
		o.quiz.SetQuestions(questions)
	}()
}

// Position reports the current point in the segment's merged space.
func (o *Orchestrator) Position() Position {
	o.mu.Lock()
	mode := o.mode
	o.mu.Unlock()
	if mode == PositionQuiz {
		return Position{Kind: PositionQuiz, Index: o.quiz.Index()}
	}
	return Position{Kind: PositionContent, Index: o.reading.Index()}
}

func (o *Orchestrator) QuestionCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.questions)
}

// Navigate applies one step of the merged-space transition function and
// carries out its outcome: a child index move, a mode switch, or a
// segment-level request raised to the owner.
func (o *Orchestrator) Navigate(dir Direction, keepAudioPlaying bool) {
	if o.reading.Loading() && o.Position().Kind == PositionContent {
		// Sub-page state is still settling; acting now could race an
		// out-of-range index.
		o.log.Debug("Ignoring navigation while segment content is loading")
		return
	}

	pos := o.Position()
	next, boundary := NextPosition(pos, dir, o.reading.PageCount(), o.QuestionCount())

	switch boundary {
	case BoundaryNextSegment:
		o.quiz.CancelPending()
		if o.events.RequestNextSegment != nil {
			o.events.RequestNextSegment(keepAudioPlaying && dir == Forward)
		}
		return
	case BoundaryPrevSegment:
		if o.events.RequestPreviousSegment != nil {
			o.events.RequestPreviousSegment()
		}
		return
	}

	if next.Kind != pos.Kind {
		o.switchMode(next)
	} else if next.Kind == PositionQuiz {
		o.quiz.SetIndex(next.Index)
	} else {
		o.reading.SetIndex(next.Index, keepAudioPlaying)
	}
	o.stateChanged()
}

func (o *Orchestrator) switchMode(next Position) {
	o.mu.Lock()
	o.mode = next.Kind
	o.mu.Unlock()

	if next.Kind == PositionQuiz {
		// Entering the quiz: narration stops, first question shows.
		o.reading.StopAudio()
		o.quiz.SetIndex(next.Index)
		return
	}
	o.quiz.CancelPending()
	o.reading.SetIndex(next.Index, false)
}

// Submit grades a quiz answer; outside quiz mode it is ignored.
func (o *Orchestrator) Submit(answer string) {
	o.mu.Lock()
	inQuiz := o.mode == PositionQuiz
	o.mu.Unlock()
	if !inQuiz {
		o.log.Debug("Ignoring quiz submission outside quiz mode")
		return
	}
	o.quiz.Submit(answer)
	o.stateChanged()
}

func (o *Orchestrator) handleQuizResult(res QuizResult) {
	if o.progress != nil && o.userID != uuid.Nil {
		o.progress.RecordAttempt(o.userID, res.QuestionID, res.IsCorrect, res.Answer)
	}
}

func (o *Orchestrator) handleQuizAutoAdvance() {
	o.Navigate(Forward, false)
}

// handleAudioFinished is the transport boundary signal routed through the
// reading controller: the same forward path as a user tap, with audio kept
// playing so narration continues across sub-page boundaries.
func (o *Orchestrator) handleAudioFinished() {
	o.Navigate(Forward, true)
}

func (o *Orchestrator) handlePageChanged(index, total int) {
	o.mu.Lock()
	segID := o.segment.ID
	o.mu.Unlock()
	if o.progress != nil && o.userID != uuid.Nil && segID != uuid.Nil {
		o.progress.RecordPageView(o.userID, segID, index)
	}
	o.stateChanged()
}

func (o *Orchestrator) stateChanged() {
	if o.events.StateChanged != nil {
		o.events.StateChanged()
	}
}

// Close tears down both child controllers.
func (o *Orchestrator) Close() {
	o.quiz.CancelPending()
	o.reading.Close()
}
