package reader

// Direction is a user or audio driven navigation step.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// PositionKind tags which sub-space of a segment is being shown. Exactly
// one of content / quiz holds at any time.
type PositionKind int

const (
	PositionContent PositionKind = iota
	PositionQuiz
)

func (k PositionKind) String() string {
	if k == PositionQuiz {
		return "quiz"
	}
	return "content"
}

// Position is one point in a segment's linear navigable space: the
// concatenation of its sub-pages followed by its quiz questions.
type Position struct {
	Kind  PositionKind
	Index int
}

// Boundary is the segment-level request produced when a navigation step
// leaves the current segment's space.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryNextSegment
	BoundaryPrevSegment
)

// NextPosition is the pure transition function over a segment's merged
// content/quiz space. It never errors: out-of-range inputs are clamped
// before the step is applied.
func NextPosition(p Position, dir Direction, pageCount, quizCount int) (Position, Boundary) {
	p = ClampPosition(p, pageCount, quizCount)

	switch p.Kind {
	case PositionQuiz:
		if dir == Forward {
			if p.Index < quizCount-1 {
				return Position{Kind: PositionQuiz, Index: p.Index + 1}, BoundaryNone
			}
			return p, BoundaryNextSegment
		}
		if p.Index > 0 {
			return Position{Kind: PositionQuiz, Index: p.Index - 1}, BoundaryNone
		}
		return Position{Kind: PositionContent, Index: maxInt(0, pageCount-1)}, BoundaryNone
	default:
		if dir == Forward {
			if p.Index < pageCount-1 {
				return Position{Kind: PositionContent, Index: p.Index + 1}, BoundaryNone
			}
			if quizCount > 0 {
				return Position{Kind: PositionQuiz, Index: 0}, BoundaryNone
			}
			return p, BoundaryNextSegment
		}
		if p.Index > 0 {
			return Position{Kind: PositionContent, Index: p.Index - 1}, BoundaryNone
		}
		return p, BoundaryPrevSegment
	}
}

// ClampPosition forces a position into the valid range for the given
// counts. Index math runs on every navigation tap, so out-of-range values
// degrade to a safe position instead of panicking.
func ClampPosition(p Position, pageCount, quizCount int) Position {
	if p.Kind == PositionQuiz && quizCount <= 0 {
		p = Position{Kind: PositionContent, Index: maxInt(0, pageCount-1)}
	}
	limit := pageCount
	if p.Kind == PositionQuiz {
		limit = quizCount
	}
	if p.Index < 0 {
		p.Index = 0
	}
	if limit > 0 && p.Index > limit-1 {
		p.Index = limit - 1
	}
	if limit <= 0 {
		p.Index = 0
	}
	return p
}
