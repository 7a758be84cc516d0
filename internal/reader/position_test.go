package reader

import "testing"

func TestNextPosition_TransitionTable(t *testing.T) {
	cases := []struct {
		name         string
		pos          Position
		dir          Direction
		pages, quiz  int
		wantPos      Position
		wantBoundary Boundary
	}{
		{"content forward mid", Position{PositionContent, 0}, Forward, 3, 2, Position{PositionContent, 1}, BoundaryNone},
		{"content forward edge with quiz", Position{PositionContent, 2}, Forward, 3, 2, Position{PositionQuiz, 0}, BoundaryNone},
		{"content forward edge no quiz", Position{PositionContent, 2}, Forward, 3, 0, Position{PositionContent, 2}, BoundaryNextSegment},
		{"content backward mid", Position{PositionContent, 2}, Backward, 3, 2, Position{PositionContent, 1}, BoundaryNone},
		{"content backward edge", Position{PositionContent, 0}, Backward, 3, 2, Position{PositionContent, 0}, BoundaryPrevSegment},
		{"quiz forward mid", Position{PositionQuiz, 0}, Forward, 3, 2, Position{PositionQuiz, 1}, BoundaryNone},
		{"quiz forward edge", Position{PositionQuiz, 1}, Forward, 3, 2, Position{PositionQuiz, 1}, BoundaryNextSegment},
		{"quiz backward mid", Position{PositionQuiz, 1}, Backward, 3, 2, Position{PositionQuiz, 0}, BoundaryNone},
		{"quiz backward edge", Position{PositionQuiz, 0}, Backward, 3, 2, Position{PositionContent, 2}, BoundaryNone},
	}
	for _, tc := range cases {
		gotPos, gotBoundary := NextPosition(tc.pos, tc.dir, tc.pages, tc.quiz)
		if gotPos != tc.wantPos || gotBoundary != tc.wantBoundary {
			t.Fatalf("%s: got (%+v, %v), want (%+v, %v)", tc.name, gotPos, gotBoundary, tc.wantPos, tc.wantBoundary)
		}
	}
}

func TestNextPosition_ClampsOutOfRangeInput(t *testing.T) {
	pos, boundary := NextPosition(Position{PositionContent, 99}, Forward, 3, 0)
	if boundary != BoundaryNextSegment {
		t.Fatalf("expected clamped index to behave like last page, got (%+v, %v)", pos, boundary)
	}

	pos, boundary = NextPosition(Position{PositionQuiz, 5}, Backward, 3, 0)
	if boundary != BoundaryNone || pos.Kind != PositionContent {
		t.Fatalf("quiz position with no questions should clamp to content, got (%+v, %v)", pos, boundary)
	}
}

func TestClampPosition_EmptySegment(t *testing.T) {
	p := ClampPosition(Position{PositionContent, 7}, 0, 0)
	if p.Index != 0 || p.Kind != PositionContent {
		t.Fatalf("expected safe zero position, got %+v", p)
	}
}
