package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SegmentKindSection = "section"
	SegmentKindText    = "text"
)

// Segment is one unit of book content: either a title card (kind "section")
// or a block of readable text (kind "text"). AudioPath is either an absolute
// URL or an opaque storage key that needs signed-URL resolution. Alignment
// holds the time-stamped transcript spans produced upstream; it is optional
// and absent alignment is a normal state.
type Segment struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"book_id"`
	Book      *Book          `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Text      string         `gorm:"column:text" json:"text"`
	Position  int            `gorm:"column:position;not null" json:"position"`
	Kind      string         `gorm:"column:kind;not null;default:'text'" json:"kind"`
	AudioPath string         `gorm:"column:audio_path" json:"audio_path"`
	Alignment datatypes.JSON `gorm:"column:alignment;type:jsonb" json:"alignment,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Segment) TableName() string { return "segment" }
