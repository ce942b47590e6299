package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/cascade"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidSubjectTitle = errors.New("subject title cannot be empty")

// SubjectService provides business logic for subjects and their
// enrollments.
type SubjectService struct {
	subjectRepo    repository.SubjectRepository
	enrollmentRepo repository.EnrollmentRepository
	studentRepo    repository.StudentRepository
	engine         *access.Engine
	orchestrator   *cascade.Orchestrator
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(
	subjectRepo repository.SubjectRepository,
	enrollmentRepo repository.EnrollmentRepository,
	studentRepo repository.StudentRepository,
	engine *access.Engine,
	orchestrator *cascade.Orchestrator,
) *SubjectService {
	return &SubjectService{
		subjectRepo:    subjectRepo,
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		engine:         engine,
		orchestrator:   orchestrator,
	}
}

// requireUnlocked loads the subject and rejects every mutating operation
// on a locked subject, regardless of the actor's role.
func (s *SubjectService) requireUnlocked(subjectID uint64) (*models.Subject, error) {
	subject, err := s.subjectRepo.FindByID(subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("subject not found")
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}
	if subject.IsLocked {
		return nil, apierrors.Conflictf("subject is locked")
	}
	return subject, nil
}

// CreateSubjectInput represents parameters to create a subject.
type CreateSubjectInput struct {
	ActorID     uint64
	SchoolID    uint64
	Title       string
	Description string
}

// CreateSubject creates a subject and enrolls the creator as an accepted
// ADMIN teacher on it. The actor needs at least TEACHER role in the school.
func (s *SubjectService) CreateSubject(input CreateSubjectInput) (*models.Subject, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidSubjectTitle
	}

	if err := s.engine.Decide(access.Actor{UserID: input.ActorID}, access.Scope{
		SchoolID: input.SchoolID,
		MinRole:  models.RoleTeacher,
	}); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		SchoolID:    input.SchoolID,
		Title:       input.Title,
		Description: input.Description,
	}
	if err := s.subjectRepo.Create(subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	enrollment := &models.TeacherOnSubject{
		UserID:    input.ActorID,
		SubjectID: subject.ID,
		SchoolID:  input.SchoolID,
		Role:      models.RoleAdmin,
		Status:    models.StatusAccept,
	}
	if err := s.enrollmentRepo.CreateTeacherOnSubject(enrollment); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	return subject, nil
}

// GetSubject returns a subject. The actor must be an accepted teacher on
// it or a school ADMIN.
func (s *SubjectService) GetSubject(actorID, subjectID uint64) (*models.Subject, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}
	return s.subjectRepo.FindByID(subjectID)
}

// UpdateSubject updates title and description.
func (s *SubjectService) UpdateSubject(actorID, subjectID uint64, title, description string) (*models.Subject, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidSubjectTitle
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}

	subject, err := s.requireUnlocked(subjectID)
	if err != nil {
		return nil, err
	}

	subject.Title = title
	subject.Description = description
	if err := s.subjectRepo.Update(subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

// SetLocked flips the subject lock. School ADMIN only; unlocking is the
// one mutation lock does not block.
func (s *SubjectService) SetLocked(actorID, subjectID uint64, locked bool) (*models.Subject, error) {
	subject, err := s.subjectRepo.FindByID(subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("subject not found")
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: subject.SchoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	subject.IsLocked = locked
	if err := s.subjectRepo.Update(subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

// DeleteSubject tears down the subject and its whole subtree through the
// cascade orchestrator.
func (s *SubjectService) DeleteSubject(ctx context.Context, actorID, subjectID uint64) (*cascade.Summary, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}

	if _, err := s.requireUnlocked(subjectID); err != nil {
		return nil, err
	}

	return s.orchestrator.DeleteWithCascade(ctx, cascade.KindSubject, subjectID)
}

// EnrollTeacher creates a PENDING teacher enrollment on the subject.
func (s *SubjectService) EnrollTeacher(actorID, subjectID, targetUserID uint64, role models.MemberRole) (*models.TeacherOnSubject, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}

	subject, err := s.requireUnlocked(subjectID)
	if err != nil {
		return nil, err
	}

	if _, err := s.enrollmentRepo.FindTeacherOnSubject(subjectID, targetUserID); err == nil {
		return nil, apierrors.Conflictf("user is already enrolled on this subject")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify enrollment: %w", err)
	}

	enrollment := &models.TeacherOnSubject{
		UserID:    targetUserID,
		SubjectID: subjectID,
		SchoolID:  subject.SchoolID,
		Role:      role,
		Status:    models.StatusPending,
	}
	if err := s.enrollmentRepo.CreateTeacherOnSubject(enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return enrollment, nil
}

// RespondToEnrollment transitions the actor's own PENDING teacher
// enrollment to ACCEPT or REJECT. Terminal statuses conflict.
func (s *SubjectService) RespondToEnrollment(actorID, subjectID uint64, accept bool) (*models.TeacherOnSubject, error) {
	if _, err := s.requireUnlocked(subjectID); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindTeacherOnSubject(subjectID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("enrollment not found")
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}

	if enrollment.Status.IsTerminal() {
		return nil, apierrors.Conflictf("enrollment has already been %s", enrollment.Status)
	}

	if accept {
		enrollment.Status = models.StatusAccept
	} else {
		enrollment.Status = models.StatusReject
	}
	if err := s.enrollmentRepo.UpdateTeacherOnSubject(enrollment); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}
	return enrollment, nil
}

// AddStudent enrolls a student on the subject directly; there is no
// invitation to negotiate for students.
func (s *SubjectService) AddStudent(actorID, subjectID, studentID uint64) (*models.StudentOnSubject, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}

	subject, err := s.requireUnlocked(subjectID)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("student not found")
		}
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	if student.SchoolID != subject.SchoolID {
		return nil, apierrors.Conflictf("student belongs to a different school")
	}

	if _, err := s.enrollmentRepo.FindStudentOnSubject(subjectID, studentID); err == nil {
		return nil, apierrors.Conflictf("student is already enrolled on this subject")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify enrollment: %w", err)
	}

	enrollment := &models.StudentOnSubject{
		StudentID: studentID,
		SubjectID: subjectID,
		SchoolID:  subject.SchoolID,
		IsActive:  true,
	}
	if err := s.enrollmentRepo.CreateStudentOnSubject(enrollment); err != nil {
		return nil, fmt.Errorf("failed to enroll student: %w", err)
	}
	return enrollment, nil
}

// RemoveStudent removes a student's enrollment and every dependent row
// (work items, scores, attendance, submitted files) through the cascade
// orchestrator.
func (s *SubjectService) RemoveStudent(ctx context.Context, actorID, subjectID, studentID uint64) (*cascade.Summary, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: subjectID}); err != nil {
		return nil, err
	}

	if _, err := s.requireUnlocked(subjectID); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindStudentOnSubject(subjectID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("student enrollment not found")
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}

	return s.orchestrator.DeleteWithCascade(ctx, cascade.KindStudentOnSubject, enrollment.ID)
}
