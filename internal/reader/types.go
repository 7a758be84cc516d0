package reader

import "github.com/google/uuid"

const (
	SegmentKindSection = "section"
	SegmentKindText    = "text"
)

// Segment is the reader-facing view of one unit of book content. It is
// immutable once mounted into a session; navigating to a different segment
// replaces it wholesale.
type Segment struct {
	ID        uuid.UUID
	Title     string
	Text      string
	Position  int
	Kind      string // "section" or "text"
	AudioPath string
	Alignment *AlignmentData
}

// IsText reports whether the segment carries paginated body text. Section
// segments render only a title card.
func (s Segment) IsText() bool { return s.Kind == SegmentKindText }

// Question is one multiple-choice quiz question. The displayed answer set
// is {CorrectAnswer} plus IncorrectAnswers, shuffled deterministically per
// question id.
type Question struct {
	ID               uuid.UUID `json:"id"`
	Prompt           string    `json:"prompt"`
	CorrectAnswer    string    `json:"correct_answer"`
	IncorrectAnswers []string  `json:"incorrect_answers"`
	Explanation      string    `json:"explanation"`
}
