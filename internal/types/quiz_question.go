package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizQuestion belongs to a segment. IncorrectAnswers is a JSON array of
// strings; the displayed answer set is {CorrectAnswer} plus that array,
// shuffled deterministically per question id by the reader core.
type QuizQuestion struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SegmentID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"segment_id"`
	Segment          *Segment       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SegmentID;references:ID" json:"segment,omitempty"`
	Index            int            `gorm:"column:index;not null" json:"index"`
	Question         string         `gorm:"column:question;not null" json:"question"`
	CorrectAnswer    string         `gorm:"column:correct_answer;not null" json:"correct_answer"`
	IncorrectAnswers datatypes.JSON `gorm:"column:incorrect_answers;type:jsonb" json:"incorrect_answers"`
	Explanation      string         `gorm:"column:explanation" json:"explanation"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }
