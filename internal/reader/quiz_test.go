package reader

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:               uuid.New(),
			Prompt:           "prompt",
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"wrong a", "wrong b", "wrong c"},
		}
	}
	return qs
}

func TestShuffleAnswers_DeterministicPerQuestion(t *testing.T) {
	q := Question{
		ID:               uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef"),
		CorrectAnswer:    "alpha",
		IncorrectAnswers: []string{"beta", "gamma", "delta", "epsilon"},
	}
	first := ShuffleAnswers(q)
	second := ShuffleAnswers(q)
	if len(first) != 5 {
		t.Fatalf("expected 5 answers, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("shuffle not deterministic: %v vs %v", first, second)
		}
	}

	seen := map[string]bool{}
	for _, a := range first {
		seen[a] = true
	}
	if len(seen) != 5 || !seen["alpha"] {
		t.Fatalf("shuffle lost answers: %v", first)
	}
}

func TestShuffleAnswers_DifferentQuestionsDiffer(t *testing.T) {
	incorrect := []string{"b", "c", "d", "e", "f", "g"}
	differs := false
	base := ShuffleAnswers(Question{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), CorrectAnswer: "a", IncorrectAnswers: incorrect})
	for i := 2; i < 10; i++ {
		id := uuid.MustParse("00000000-0000-0000-0000-00000000000" + string(rune('0'+i)))
		other := ShuffleAnswers(Question{ID: id, CorrectAnswer: "a", IncorrectAnswers: incorrect})
		for j := range base {
			if base[j] != other[j] {
				differs = true
			}
		}
	}
	if !differs {
		t.Fatalf("expected at least one differing permutation across question ids")
	}
}

func TestQuizController_SubmitIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	var results []QuizResult
	qc := NewQuizController(testLogger(), clock, func(r QuizResult) { results = append(results, r) }, func() {})
	qc.SetQuestions(testQuestions(2))

	qc.Submit("right")
	qc.Submit("wrong a")
	qc.Submit("right")
	if len(results) != 1 {
		t.Fatalf("expected exactly one result report, got %d", len(results))
	}
	if !results[0].IsCorrect {
		t.Fatalf("expected correct grading")
	}
}

func TestQuizController_CorrectAdvancesAfterShortDelay(t *testing.T) {
	clock := newFakeClock()
	advanced := 0
	qc := NewQuizController(testLogger(), clock, func(QuizResult) {}, func() { advanced++ })
	qc.SetQuestions(testQuestions(2))

	qc.Submit("right")
	clock.Advance(CorrectAdvanceDelay - time.Millisecond)
	if advanced != 0 {
		t.Fatalf("advance fired early")
	}
	clock.Advance(2 * time.Millisecond)
	if advanced != 1 {
		t.Fatalf("expected auto-advance after short delay, got %d", advanced)
	}
}

func TestQuizController_IncorrectAdvanceIsCancellable(t *testing.T) {
	clock := newFakeClock()
	advanced := 0
	qc := NewQuizController(testLogger(), clock, func(QuizResult) {}, func() { advanced++ })
	qc.SetQuestions(testQuestions(3))

	qc.Submit("wrong a")
	clock.Advance(time.Second)
	// User moves on manually; the pending 10s timer must die with the
	// question it was scheduled for.
	qc.SetIndex(1)
	clock.Advance(IncorrectAdvanceDelay)
	if advanced != 0 {
		t.Fatalf("stale auto-advance fired after navigation, advanced=%d", advanced)
	}
}

func TestQuizController_NewQuestionSetCancelsTimer(t *testing.T) {
	clock := newFakeClock()
	advanced := 0
	qc := NewQuizController(testLogger(), clock, func(QuizResult) {}, func() { advanced++ })
	qc.SetQuestions(testQuestions(1))

	qc.Submit("wrong a")
	qc.SetQuestions(testQuestions(2))
	clock.Advance(IncorrectAdvanceDelay + time.Second)
	if advanced != 0 {
		t.Fatalf("timer survived question set replacement")
	}
}

func TestQuizController_SubmitOnEmptySetIsIgnored(t *testing.T) {
	clock := newFakeClock()
	qc := NewQuizController(testLogger(), clock, func(QuizResult) { t.Fatal("no result expected") }, func() {})
	qc.SetQuestions(nil)
	qc.Submit("anything")
}

func TestQuizController_ResubmitAllowedOnNewInstance(t *testing.T) {
	clock := newFakeClock()
	var results []QuizResult
	qc := NewQuizController(testLogger(), clock, func(r QuizResult) { results = append(results, r) }, func() {})
	qs := testQuestions(1)

	qc.SetQuestions(qs)
	qc.Submit("right")
	// Remounting the same questions creates fresh instances.
	qc.SetQuestions(qs)
	qc.Submit("wrong a")
	if len(results) != 2 {
		t.Fatalf("expected one report per question instance, got %d", len(results))
	}
}
