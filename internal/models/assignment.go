package models

import "time"

type AssignmentStatus string

const (
	AssignmentDraft     AssignmentStatus = "DRAFT"
	AssignmentPublished AssignmentStatus = "PUBLISHED"
)

type Assignment struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	SubjectID   uint64           `gorm:"not null;index" json:"subject_id"`
	SchoolID    uint64           `gorm:"not null;index" json:"school_id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Status      AssignmentStatus `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	MaxScore    float64          `json:"max_score"`
	DueDate     *time.Time       `json:"due_date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	Subject  Subject               `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Students []StudentOnAssignment `gorm:"foreignKey:AssignmentID" json:"students,omitempty"`
}

// StudentOnAssignment is a student's work item for an assignment.
// IsAssigned gates assignment-specific authorization: an unassigned
// student cannot read or submit work for the assignment.
type StudentOnAssignment struct {
	ID                 uint64     `gorm:"primarykey" json:"id"`
	StudentOnSubjectID uint64     `gorm:"not null;uniqueIndex:idx_student_on_assignment" json:"student_on_subject_id"`
	AssignmentID       uint64     `gorm:"not null;uniqueIndex:idx_student_on_assignment;index" json:"assignment_id"`
	StudentID          uint64     `gorm:"not null;index" json:"student_id"`
	// No column default: gorm would skip a false value on insert and let
	// the default win, turning an unassigned row into an assigned one.
	// Create sites set the flag explicitly.
	IsAssigned         bool       `gorm:"not null" json:"is_assigned"`
	Score              *float64   `json:"score"`
	Body               string     `gorm:"type:text" json:"body"`
	SubmittedAt        *time.Time `json:"submitted_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relations
	Assignment       Assignment       `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	StudentOnSubject StudentOnSubject `gorm:"foreignKey:StudentOnSubjectID" json:"student_on_subject,omitempty"`
}

type SkillOnAssignment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	AssignmentID uint64    `gorm:"not null;index" json:"assignment_id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Weight       float64   `json:"weight"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommentOnAssignment is authored either by a staff user or by the
// student who owns the work item; exactly one of UserID/StudentID is set.
type CommentOnAssignment struct {
	ID                    uint64    `gorm:"primarykey" json:"id"`
	StudentOnAssignmentID uint64    `gorm:"not null;index" json:"student_on_assignment_id"`
	UserID                *uint64   `json:"user_id"`
	StudentID             *uint64   `json:"student_id"`
	Content               string    `gorm:"type:text;not null" json:"content"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
