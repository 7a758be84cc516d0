package reader

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type sessionFixture struct {
	sess      *Session
	completed int
	changes   int
}

func newSessionFixture(segments []Segment, bank QuizBank) *sessionFixture {
	f := &sessionFixture{}
	f.sess = NewSession(SessionConfig{
		Log:      testLogger(),
		Clock:    newFakeClock(),
		Player:   &fakePlayer{},
		QuizBank: bank,
		Progress: &fakeProgress{},
		UserID:   uuid.New(),
		BookID:   uuid.New(),
		Segments: segments,
		Paginate: PaginateOpts{SentencesPerPage: 1},
		Events: SessionEvents{
			StateChanged: func() { f.changes++ },
			Completed:    func() { f.completed++ },
		},
	})
	return f
}

func TestSession_EmptyBook(t *testing.T) {
	f := newSessionFixture(nil, &fakeQuizBank{})
	if !f.sess.Empty() {
		t.Fatalf("expected empty session")
	}
	f.sess.Navigate(Forward, false)
	if f.completed != 0 {
		t.Fatalf("empty session must not complete")
	}
	state := f.sess.State()
	if !state.Empty || state.SegmentCount != 0 {
		t.Fatalf("unexpected empty-book state: %+v", state)
	}
}

func TestSession_ForwardAcrossSegments(t *testing.T) {
	segments := []Segment{textSegment("One. Two."), textSegment("Three.")}
	f := newSessionFixture(segments, &fakeQuizBank{})
	waitUntil(t, func() bool { return !f.sess.orch.Reading().Loading() })

	f.sess.Navigate(Forward, false)
	f.sess.Navigate(Forward, false)
	waitUntil(t, func() bool { return f.sess.SegmentIndex() == 1 })

	state := f.sess.State()
	if state.SubPageIndex != 0 || state.SubPageText != "Three." {
		t.Fatalf("expected first sub-page of second segment, got %+v", state)
	}
}

func TestSession_CompletesPastLastSegment(t *testing.T) {
	f := newSessionFixture([]Segment{textSegment("One.")}, &fakeQuizBank{})
	waitUntil(t, func() bool { return !f.sess.orch.Reading().Loading() })

	f.sess.Navigate(Forward, false)
	if f.completed != 1 {
		t.Fatalf("expected one completion callback, got %d", f.completed)
	}
	if f.sess.SegmentIndex() != 0 {
		t.Fatalf("completion must not advance the segment index")
	}

	// Completion is latched; further forward taps stay silent.
	f.sess.Navigate(Forward, false)
	if f.completed != 1 {
		t.Fatalf("completion fired again: %d", f.completed)
	}
	if !f.sess.State().Completed {
		t.Fatalf("state should report completion")
	}
}

func TestSession_QuizGatesSegmentExit(t *testing.T) {
	seg := textSegment("One.")
	bank := &fakeQuizBank{questions: map[uuid.UUID][]Question{seg.ID: testQuestions(1)}}
	f := newSessionFixture([]Segment{seg, textSegment("Two.")}, bank)
	waitUntil(t, func() bool { return f.sess.orch.QuestionCount() == 1 })

	f.sess.Navigate(Forward, false)
	state := f.sess.State()
	if state.Mode != "quiz" || state.QuizCount != 1 {
		t.Fatalf("expected quiz mode with one question, got %+v", state)
	}
	if len(state.QuizAnswers) != 4 {
		t.Fatalf("expected 4 shuffled answers, got %d", len(state.QuizAnswers))
	}
	if f.sess.SegmentIndex() != 0 {
		t.Fatalf("quiz must gate the segment exit")
	}

	f.sess.Submit(uuid.New(), "right")
	if f.sess.State().QuizAnswered {
		t.Fatalf("answer for a different question must be dropped")
	}

	questionID, err := uuid.Parse(state.QuizQuestionID)
	if err != nil {
		t.Fatalf("state missing current question id: %v", err)
	}
	f.sess.Submit(questionID, "right")
	if !f.sess.State().QuizAnswered {
		t.Fatalf("state should report the question answered")
	}

	f.sess.Navigate(Forward, false)
	waitUntil(t, func() bool { return f.sess.SegmentIndex() == 1 })
}

func TestSession_BackwardReturnsToPreviousSegment(t *testing.T) {
	segments := []Segment{textSegment("One."), textSegment("Two.")}
	f := newSessionFixture(segments, &fakeQuizBank{})
	f.sess.JumpToSegment(context.Background(), 1)
	waitUntil(t, func() bool { return !f.sess.orch.Reading().Loading() })

	f.sess.Navigate(Backward, false)
	waitUntil(t, func() bool { return f.sess.SegmentIndex() == 0 })

	// First segment, first sub-page: a further backward tap is absorbed.
	f.sess.Navigate(Backward, false)
	if f.sess.SegmentIndex() != 0 {
		t.Fatalf("backward at the book start must stay put")
	}
}

func TestSession_JumpToSegmentClamps(t *testing.T) {
	segments := []Segment{textSegment("One."), textSegment("Two."), textSegment("Three.")}
	f := newSessionFixture(segments, &fakeQuizBank{})

	f.sess.JumpToSegment(context.Background(), 99)
	if f.sess.SegmentIndex() != 2 {
		t.Fatalf("expected clamp to last segment, got %d", f.sess.SegmentIndex())
	}
	f.sess.JumpToSegment(context.Background(), -5)
	if f.sess.SegmentIndex() != 0 {
		t.Fatalf("expected clamp to first segment, got %d", f.sess.SegmentIndex())
	}
}

func TestSession_CloseStopsEventDelivery(t *testing.T) {
	f := newSessionFixture([]Segment{textSegment("One. Two.")}, &fakeQuizBank{})
	waitUntil(t, func() bool { return !f.sess.orch.Reading().Loading() })
	f.sess.Close()

	before := f.changes
	f.sess.Navigate(Forward, false)
	if f.changes != before {
		t.Fatalf("closed session still emitted state changes")
	}
}
