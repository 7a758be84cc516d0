package reader

import (
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
)

const (
	// CorrectAdvanceDelay is how long a correctly answered question stays
	// on screen before auto-advancing.
	CorrectAdvanceDelay = 800 * time.Millisecond
	// IncorrectAdvanceDelay leaves time to read the explanation after a
	// wrong answer. Navigating away cancels it.
	IncorrectAdvanceDelay = 10 * time.Second
)

// QuizResult is reported exactly once per question instance, on first
// submission.
type QuizResult struct {
	QuestionID uuid.UUID
	Answer     string
	IsCorrect  bool
}

// QuizController owns the question index within a segment's quiz set,
// grades submissions and schedules auto-advance. Edge navigation and
// auto-advance steps are raised to the owner; the controller never decides
// segment-level moves itself.
type QuizController struct {
	mu    sync.Mutex
	log   *logger.Logger
	clock Clock

	questions []Question
	index     int
	answered  []bool
	gen       uint64

	advanceTimer Timer

	onResult      func(QuizResult)
	onAutoAdvance func()
}

func NewQuizController(log *logger.Logger, clock Clock, onResult func(QuizResult), onAutoAdvance func()) *QuizController {
	return &QuizController{
		log:           log.With("component", "QuizController"),
		clock:         clock,
		onResult:      onResult,
		onAutoAdvance: onAutoAdvance,
	}
}

// SetQuestions replaces the quiz set, resetting the index and all
// submission state and cancelling any pending auto-advance.
func (q *QuizController) SetQuestions(questions []Question) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.cancelTimerLocked()
	q.questions = questions
	q.index = 0
	q.answered = make([]bool, len(questions))
}

func (q *QuizController) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.questions)
}

func (q *QuizController) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Current returns the question being shown, or false when the set is empty.
func (q *QuizController) Current() (Question, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.index < 0 || q.index >= len(q.questions) {
		return Question{}, false
	}
	return q.questions[q.index], true
}

// Answered reports whether the current question instance has a submission.
func (q *QuizController) Answered() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index >= 0 && q.index < len(q.answered) && q.answered[q.index]
}

// SetIndex moves to the given question, clamped into range. Any pending
// auto-advance timer belongs to the question being left and is cancelled.
func (q *QuizController) SetIndex(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.cancelTimerLocked()
	if len(q.questions) == 0 {
		q.index = 0
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(q.questions)-1 {
		index = len(q.questions) - 1
	}
	q.index = index
}

// Submit grades an answer against the current question. A second submit on
// an already-answered question is a no-op; the result callback fires at
// most once per question instance. Correct answers schedule a short
// auto-advance, incorrect ones a long cancellable one.
func (q *QuizController) Submit(answer string) {
	q.mu.Lock()
	if q.index < 0 || q.index >= len(q.questions) || q.answered[q.index] {
		q.mu.Unlock()
		return
	}
	question := q.questions[q.index]
	q.answered[q.index] = true
	isCorrect := answer == question.CorrectAnswer

	delay := IncorrectAdvanceDelay
	if isCorrect {
		delay = CorrectAdvanceDelay
	}
	q.cancelTimerLocked()
	myGen := q.gen
	myIndex := q.index
	q.advanceTimer = q.clock.AfterFunc(delay, func() {
		q.fireAutoAdvance(myGen, myIndex)
	})

	onResult := q.onResult
	q.mu.Unlock()

	q.log.Debug("Quiz answer submitted", "question_id", question.ID, "is_correct", isCorrect)
	if onResult != nil {
		onResult(QuizResult{QuestionID: question.ID, Answer: answer, IsCorrect: isCorrect})
	}
}

// fireAutoAdvance runs in the timer goroutine. The generation captured at
// scheduling time is compared here so a timer that outlived its question
// (navigation, new quiz set) fires into the void.
func (q *QuizController) fireAutoAdvance(gen uint64, index int) {
	q.mu.Lock()
	if gen != q.gen || index != q.index {
		q.mu.Unlock()
		return
	}
	handler := q.onAutoAdvance
	q.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// CancelPending invalidates any scheduled auto-advance without moving.
func (q *QuizController) CancelPending() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.cancelTimerLocked()
}

func (q *QuizController) cancelTimerLocked() {
	if q.advanceTimer != nil {
		q.advanceTimer.Stop()
		q.advanceTimer = nil
	}
}

// ShuffleAnswers returns the question's full answer set in a deterministic
// pseudo-random order keyed by the question id: the same question always
// renders its answers the same way, while different questions get
// different-looking orders. The sin-derived generator is nowhere near
// cryptographic and must not be treated as such.
func ShuffleAnswers(q Question) []string {
	answers := make([]string, 0, len(q.IncorrectAnswers)+1)
	answers = append(answers, q.CorrectAnswer)
	answers = append(answers, q.IncorrectAnswers...)

	h := fnv.New32a()
	_, _ = h.Write([]byte(q.ID.String()))
	seed := float64(h.Sum32())

	next := func() float64 {
		seed++
		x := math.Sin(seed) * 10000
		return x - math.Floor(x)
	}

	for i := len(answers) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		if j > i {
			j = i
		}
		answers[i], answers[j] = answers[j], answers[i]
	}
	return answers
}
