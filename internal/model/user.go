package model

import (
	"time"
)

type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'citizen'" json:"role"`
	// Level 0 means an unassessed citizen. It is derived state: only account
	// creation, the placement exam and the progression engine write it.
	Level int `gorm:"default:0" json:"level"`
	// XP never decreases.
	XP                 int        `gorm:"default:0" json:"xp"`
	CanRetakePlacement bool       `gorm:"default:false" json:"canRetakePlacement"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// ScoreRecord is one entry of a user's score history. Append-only,
// insertion-ordered; used for trend display and cognitive insight prompts.
type ScoreRecord struct {
	BaseModel
	UserID    uint  `gorm:"index;not null" json:"userId"`
	ExamID    uint  `gorm:"index;not null" json:"examId"`
	ContentID *uint `json:"contentId,omitempty"`
	Score     int   `gorm:"not null" json:"score"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}
