package models

import "time"

type Subject struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	SchoolID    uint64 `gorm:"not null;index" json:"school_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// IsLocked blocks every mutating operation on the subject and its
	// enrollments, regardless of the actor's role.
	IsLocked  bool      `gorm:"not null;default:false" json:"is_locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	School      School             `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Teachers    []TeacherOnSubject `gorm:"foreignKey:SubjectID" json:"teachers,omitempty"`
	Students    []StudentOnSubject `gorm:"foreignKey:SubjectID" json:"students,omitempty"`
	Assignments []Assignment       `gorm:"foreignKey:SubjectID" json:"assignments,omitempty"`
}
