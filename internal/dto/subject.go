package dto

import (
	"time"

	"github.com/classhub/school-management-api/internal/models"
)

// SubjectDTO represents a subject in API responses
type SubjectDTO struct {
	ID          uint64    `json:"id"`
	SchoolID    uint64    `json:"school_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsLocked    bool      `json:"is_locked"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeacherOnSubjectDTO represents a teacher enrollment in API responses
type TeacherOnSubjectDTO struct {
	ID        uint64              `json:"id"`
	UserID    uint64              `json:"user_id"`
	SubjectID uint64              `json:"subject_id"`
	Role      models.MemberRole   `json:"role"`
	Status    models.InviteStatus `json:"status"`
	User      *UserDTO            `json:"user,omitempty"`
}

// StudentOnSubjectDTO represents a student enrollment in API responses
type StudentOnSubjectDTO struct {
	ID        uint64 `json:"id"`
	StudentID uint64 `json:"student_id"`
	SubjectID uint64 `json:"subject_id"`
	IsActive  bool   `json:"is_active"`
}

// AssignmentDTO represents an assignment in API responses
type AssignmentDTO struct {
	ID          uint64                  `json:"id"`
	SubjectID   uint64                  `json:"subject_id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Status      models.AssignmentStatus `json:"status"`
	MaxScore    float64                 `json:"max_score"`
	DueDate     *time.Time              `json:"due_date"`
	CreatedAt   time.Time               `json:"created_at"`
}

// FileOnAssignmentDTO represents an assignment file reference
type FileOnAssignmentDTO struct {
	ID           uint64          `json:"id"`
	AssignmentID uint64          `json:"assignment_id"`
	URL          string          `json:"url"`
	Size         int64           `json:"size"`
	Type         models.FileType `json:"type"`
}

// ToSubjectDTO converts a subject to DTO
func ToSubjectDTO(subject models.Subject) SubjectDTO {
	return SubjectDTO{
		ID:          subject.ID,
		SchoolID:    subject.SchoolID,
		Title:       subject.Title,
		Description: subject.Description,
		IsLocked:    subject.IsLocked,
		CreatedAt:   subject.CreatedAt,
	}
}

// ToTeacherOnSubjectDTO converts a teacher enrollment to DTO
func ToTeacherOnSubjectDTO(enrollment models.TeacherOnSubject) TeacherOnSubjectDTO {
	dto := TeacherOnSubjectDTO{
		ID:        enrollment.ID,
		UserID:    enrollment.UserID,
		SubjectID: enrollment.SubjectID,
		Role:      enrollment.Role,
		Status:    enrollment.Status,
	}
	if enrollment.User.ID != 0 {
		user := ToUserDTO(enrollment.User)
		dto.User = &user
	}
	return dto
}

// ToStudentOnSubjectDTO converts a student enrollment to DTO
func ToStudentOnSubjectDTO(enrollment models.StudentOnSubject) StudentOnSubjectDTO {
	return StudentOnSubjectDTO{
		ID:        enrollment.ID,
		StudentID: enrollment.StudentID,
		SubjectID: enrollment.SubjectID,
		IsActive:  enrollment.IsActive,
	}
}

// ToAssignmentDTO converts an assignment to DTO
func ToAssignmentDTO(assignment models.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:          assignment.ID,
		SubjectID:   assignment.SubjectID,
		Title:       assignment.Title,
		Description: assignment.Description,
		Status:      assignment.Status,
		MaxScore:    assignment.MaxScore,
		DueDate:     assignment.DueDate,
		CreatedAt:   assignment.CreatedAt,
	}
}

// ToFileOnAssignmentDTO converts an assignment file reference to DTO
func ToFileOnAssignmentDTO(file models.FileOnAssignment) FileOnAssignmentDTO {
	return FileOnAssignmentDTO{
		ID:           file.ID,
		AssignmentID: file.AssignmentID,
		URL:          file.URL,
		Size:         file.Size,
		Type:         file.Type,
	}
}
