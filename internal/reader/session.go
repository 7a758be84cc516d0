package reader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
)

// SessionEvents is how a session reports outward: state snapshots worth
// pushing to the device, and completion of the whole book.
type SessionEvents struct {
	StateChanged func()
	Completed    func()
}

// Session is the top level of a reading session: it owns the ordered
// segment list and which segment is current, delegating everything inside a
// segment to the orchestrator.
type Session struct {
	mu  sync.Mutex
	log *logger.Logger

	ID     uuid.UUID
	UserID uuid.UUID
	BookID uuid.UUID

	segments  []Segment
	index     int
	orch      *Orchestrator
	transport *Transport
	completed bool
	closed    bool
	createdAt time.Time

	events SessionEvents
}

type SessionConfig struct {
	Log      *logger.Logger
	Clock    Clock
	Player   Player
	Resolver URLResolver
	QuizBank QuizBank
	Progress ProgressSink

	UserID      uuid.UUID
	BookID      uuid.UUID
	Segments    []Segment
	EnableAudio bool
	Paginate    PaginateOpts

	Events SessionEvents
}

func NewSession(cfg SessionConfig) *Session {
	log := cfg.Log.With("component", "Session", "book_id", cfg.BookID)
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock()
	}

	s := &Session{
		log:       log,
		ID:        uuid.New(),
		UserID:    cfg.UserID,
		BookID:    cfg.BookID,
		segments:  cfg.Segments,
		createdAt: clock.Now(),
		events:    cfg.Events,
	}

	s.transport = NewTransport(log, cfg.Player)
	reading := NewReadingController(ReadingControllerConfig{
		Log:         log,
		Clock:       clock,
		Transport:   s.transport,
		Resolver:    cfg.Resolver,
		Opts:        cfg.Paginate,
		EnableAudio: cfg.EnableAudio,
	})
	s.orch = NewOrchestrator(OrchestratorConfig{
		Log:      log,
		Clock:    clock,
		Reading:  reading,
		QuizBank: cfg.QuizBank,
		Progress: cfg.Progress,
		UserID:   cfg.UserID,
		Events: OrchestratorEvents{
			RequestNextSegment:     s.nextSegment,
			RequestPreviousSegment: s.previousSegment,
			StateChanged:           s.stateChanged,
		},
	})

	if len(cfg.Segments) > 0 {
		s.orch.SetSegment(context.Background(), cfg.Segments[0], false)
	}
	return s
}

// Empty reports a session over a book with no segments. It is a valid,
// displayable state, not an error.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments) == 0
}

func (s *Session) SegmentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) SegmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

// Navigate steps through the current segment's merged space; exhausted
// edges move between segments, and moving past the final segment completes
// the session instead of incrementing anything.
func (s *Session) Navigate(dir Direction, keepAudioPlaying bool) {
	s.mu.Lock()
	if s.closed || len(s.segments) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.orch.Navigate(dir, keepAudioPlaying)
}

// JumpToSegment mounts the segment at index directly, clamped into range.
func (s *Session) JumpToSegment(ctx context.Context, index int) {
	s.mu.Lock()
	if s.closed || len(s.segments) == 0 {
		s.mu.Unlock()
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.segments)-1 {
		index = len(s.segments) - 1
	}
	s.index = index
	seg := s.segments[index]
	s.mu.Unlock()
	s.orch.SetSegment(ctx, seg, false)
}

// Submit grades a quiz answer. A non-zero questionID pins the answer to
// the question it was given for: if the session has since moved on, the
// answer is dropped rather than graded against the wrong question.
func (s *Session) Submit(questionID uuid.UUID, answer string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if questionID != uuid.Nil {
		if q, ok := s.orch.Quiz().Current(); !ok || q.ID != questionID {
			s.log.Debug("Dropping answer for stale question", "question_id", questionID)
			return
		}
	}
	s.orch.Submit(answer)
}

// Tick forwards one transport position report from the device.
func (s *Session) Tick(position float64, ended bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.transport.Tick(position, ended)
}

// PlayAudio and PauseAudio expose the transport controls to the device.
func (s *Session) PlayAudio() {
	s.transport.Play()
	s.stateChanged()
}

func (s *Session) PauseAudio() {
	s.transport.Pause()
	s.stateChanged()
}

func (s *Session) nextSegment(autoPlayAudio bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.index >= len(s.segments)-1 {
		alreadyDone := s.completed
		s.completed = true
		done := s.events.Completed
		s.mu.Unlock()
		s.log.Info("Book session completed")
		if !alreadyDone && done != nil {
			done()
		}
		s.stateChanged()
		return
	}
	s.index++
	seg := s.segments[s.index]
	s.mu.Unlock()
	s.orch.SetSegment(context.Background(), seg, autoPlayAudio)
}

func (s *Session) previousSegment() {
	s.mu.Lock()
	if s.closed || s.index == 0 {
		s.mu.Unlock()
		return
	}
	s.index--
	seg := s.segments[s.index]
	s.mu.Unlock()
	s.orch.SetSegment(context.Background(), seg, false)
}

func (s *Session) stateChanged() {
	s.mu.Lock()
	closed := s.closed
	handler := s.events.StateChanged
	s.mu.Unlock()
	if !closed && handler != nil {
		handler()
	}
}

// Close tears the session down: timers cancelled, audio released. Async
// work still in flight will find its epoch stale and change nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.orch.Close()
}

// SessionState is the wire snapshot of a session, pushed over SSE and
// returned from the state endpoint.
type SessionState struct {
	SessionID    uuid.UUID  `json:"session_id"`
	BookID       uuid.UUID  `json:"book_id"`
	Empty        bool       `json:"empty"`
	Completed    bool       `json:"completed"`
	SegmentIndex int        `json:"segment_index"`
	SegmentCount int        `json:"segment_count"`
	SegmentTitle string     `json:"segment_title"`
	SegmentKind  string     `json:"segment_kind"`
	Mode         string     `json:"mode"`
	Audio        AudioState `json:"audio"`

	SubPageIndex int          `json:"sub_page_index"`
	SubPageCount int          `json:"sub_page_count"`
	SubPageText  string       `json:"sub_page_text,omitempty"`
	AudioWindow  *AudioWindow `json:"audio_window,omitempty"`

	QuizIndex      int      `json:"quiz_index"`
	QuizCount      int      `json:"quiz_count"`
	QuizQuestionID string   `json:"quiz_question_id,omitempty"`
	QuizQuestion   string   `json:"quiz_question,omitempty"`
	QuizAnswers    []string `json:"quiz_answers,omitempty"`
	QuizAnswered   bool     `json:"quiz_answered"`
}

type AudioState struct {
	State    string  `json:"state"`
	Position float64 `json:"position"`
}

// State builds a point-in-time snapshot for the device.
func (s *Session) State() SessionState {
	s.mu.Lock()
	state := SessionState{
		SessionID:    s.ID,
		BookID:       s.BookID,
		Empty:        len(s.segments) == 0,
		Completed:    s.completed,
		SegmentIndex: s.index,
		SegmentCount: len(s.segments),
	}
	if s.index >= 0 && s.index < len(s.segments) {
		state.SegmentTitle = s.segments[s.index].Title
		state.SegmentKind = s.segments[s.index].Kind
	}
	s.mu.Unlock()

	pos := s.orch.Position()
	state.Mode = pos.Kind.String()
	state.Audio = AudioState{
		State:    s.transport.State().String(),
		Position: s.transport.Position(),
	}

	reading := s.orch.Reading()
	state.SubPageIndex = reading.Index()
	state.SubPageCount = reading.PageCount()
	if page, ok := reading.Current(); ok {
		state.SubPageText = page.Text
		state.AudioWindow = page.Audio
	}

	quiz := s.orch.Quiz()
	state.QuizIndex = quiz.Index()
	state.QuizCount = quiz.Count()
	if pos.Kind == PositionQuiz {
		if q, ok := quiz.Current(); ok {
			state.QuizQuestionID = q.ID.String()
			state.QuizQuestion = q.Prompt
			state.QuizAnswers = ShuffleAnswers(q)
			state.QuizAnswered = quiz.Answered()
		}
	}
	return state
}
