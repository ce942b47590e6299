package models

import "time"

// TeacherOnSubject is a staff member's enrollment on a subject. It carries
// both an invitation status and a role: only an ACCEPT-status, non-guest
// enrollment grants mutating access to the subject.
type TeacherOnSubject struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	UserID    uint64       `gorm:"not null;uniqueIndex:idx_teacher_on_subject" json:"user_id"`
	SubjectID uint64       `gorm:"not null;uniqueIndex:idx_teacher_on_subject;index" json:"subject_id"`
	SchoolID  uint64       `gorm:"not null;index" json:"school_id"`
	Role      MemberRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status    InviteStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subject Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// StudentOnSubject enrolls a student on a subject. Students are added
// directly by staff, so there is no invitation status to negotiate.
type StudentOnSubject struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	StudentID uint64    `gorm:"not null;uniqueIndex:idx_student_on_subject" json:"student_id"`
	SubjectID uint64    `gorm:"not null;uniqueIndex:idx_student_on_subject;index" json:"subject_id"`
	SchoolID  uint64    `gorm:"not null;index" json:"school_id"`
	// No column default; same insert trap as StudentOnAssignment.IsAssigned.
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}
