package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/reader"
	"github.com/readwave/readwave-backend/internal/sse"
	"github.com/readwave/readwave-backend/internal/utils"
)

// ReadingSessionService owns the live reading sessions, one per user. A
// session is server-side state: the device renders snapshots pushed over
// SSE and sends taps, answers, and audio position ticks back up.
type ReadingSessionService interface {
	Start(ctx context.Context, userID, bookID uuid.UUID) (reader.SessionState, error)
	State(userID uuid.UUID) (reader.SessionState, error)
	Navigate(userID uuid.UUID, dir reader.Direction, keepAudioPlaying bool) error
	JumpToSegment(ctx context.Context, userID uuid.UUID, index int) error
	Answer(userID uuid.UUID, questionID uuid.UUID, answer string) error
	Tick(userID uuid.UUID, position float64, ended bool) error
	PlayAudio(userID uuid.UUID) error
	PauseAudio(userID uuid.UUID) error
	End(userID uuid.UUID) error
}

type readingSessionService struct {
	mu       sync.Mutex
	log      *logger.Logger
	hub      *sse.SSEHub
	content  ContentService
	bucket   BucketService
	quizBank QuizBankService
	progress ProgressService
	settings SettingsService

	paginate reader.PaginateOpts
	sessions map[uuid.UUID]*reader.Session
}

func NewReadingSessionService(
	baseLog *logger.Logger,
	hub *sse.SSEHub,
	content ContentService,
	bucket BucketService,
	quizBank QuizBankService,
	progress ProgressService,
	settings SettingsService,
) ReadingSessionService {
	paginate := reader.DefaultPaginateOpts()
	paginate.SentencesPerPage = utils.GetEnvAsInt("READER_SENTENCES_PER_PAGE", paginate.SentencesPerPage, baseLog)
	return &readingSessionService{
		log:      baseLog.With("service", "ReadingSessionService"),
		paginate: paginate,
		hub:      hub,
		content:  content,
		bucket:   bucket,
		quizBank: quizBank,
		progress: progress,
		settings: settings,
		sessions: make(map[uuid.UUID]*reader.Session),
	}
}

// Start opens a session over the given book, replacing and closing any
// session the user already has. Audio is enabled per the user's settings
// and only if a resolver is available to sign audio URLs.
func (s *readingSessionService) Start(ctx context.Context, userID, bookID uuid.UUID) (reader.SessionState, error) {
	if _, err := s.content.GetBook(ctx, nil, bookID); err != nil {
		return reader.SessionState{}, fmt.Errorf("book %s: %w", bookID, err)
	}
	segments, err := s.content.FetchSegments(ctx, nil, bookID)
	if err != nil {
		return reader.SessionState{}, err
	}

	userSettings := s.settings.Get(ctx, userID)

	var resolver reader.URLResolver
	if s.bucket != nil {
		resolver = s.bucket
	}

	var sess *reader.Session
	sess = reader.NewSession(reader.SessionConfig{
		Log:         s.log,
		Player:      sse.NewRemotePlayer(s.log, s.hub, userID),
		Resolver:    resolver,
		QuizBank:    s.quizBank,
		Progress:    s.progress,
		UserID:      userID,
		BookID:      bookID,
		Segments:    segments,
		EnableAudio: userSettings.EnableAudio && resolver != nil,
		Paginate:    s.paginate,
		Events: reader.SessionEvents{
			StateChanged: func() { s.pushState(userID, sess) },
			Completed: func() {
				s.progress.RecordBookCompleted(userID, bookID)
				s.hub.Broadcast(sse.SSEMessage{
					Channel: sse.UserChannel(userID),
					Event:   sse.SSEEventSessionCompleted,
					Data:    map[string]any{"book_id": bookID},
				})
			},
		},
	})

	s.mu.Lock()
	old := s.sessions[userID]
	s.sessions[userID] = sess
	s.mu.Unlock()
	if old != nil {
		s.log.Info("Replacing active reading session", "user_id", userID)
		old.Close()
	}

	s.log.Info("Reading session started", "user_id", userID, "book_id", bookID, "segments", len(segments))
	state := sess.State()
	s.pushState(userID, sess)
	return state, nil
}

func (s *readingSessionService) get(userID uuid.UUID) (*reader.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("no active reading session")
	}
	return sess, nil
}

func (s *readingSessionService) State(userID uuid.UUID) (reader.SessionState, error) {
	sess, err := s.get(userID)
	if err != nil {
		return reader.SessionState{}, err
	}
	return sess.State(), nil
}

func (s *readingSessionService) Navigate(userID uuid.UUID, dir reader.Direction, keepAudioPlaying bool) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.Navigate(dir, keepAudioPlaying)
	s.pushState(userID, sess)
	return nil
}

func (s *readingSessionService) JumpToSegment(ctx context.Context, userID uuid.UUID, index int) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.JumpToSegment(ctx, index)
	s.pushState(userID, sess)
	return nil
}

func (s *readingSessionService) Answer(userID uuid.UUID, questionID uuid.UUID, answer string) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.Submit(questionID, answer)
	return nil
}

func (s *readingSessionService) Tick(userID uuid.UUID, position float64, ended bool) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.Tick(position, ended)
	return nil
}

func (s *readingSessionService) PlayAudio(userID uuid.UUID) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.PlayAudio()
	return nil
}

func (s *readingSessionService) PauseAudio(userID uuid.UUID) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	sess.PauseAudio()
	return nil
}

func (s *readingSessionService) End(userID uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no active reading session")
	}
	sess.Close()
	s.log.Info("Reading session ended", "user_id", userID)
	return nil
}

func (s *readingSessionService) pushState(userID uuid.UUID, sess *reader.Session) {
	// State changes raised during session construction arrive before the
	// session variable is assigned; the explicit push after Start covers
	// that window.
	if sess == nil {
		return
	}
	s.hub.Broadcast(sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventSessionState,
		Data:    sess.State(),
	})
}
