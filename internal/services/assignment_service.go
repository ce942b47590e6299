package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/cascade"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidAssignmentTitle = errors.New("assignment title cannot be empty")

// AssignmentService provides business logic for assignments and student
// work items.
type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	subjectRepo    repository.SubjectRepository
	enrollmentRepo repository.EnrollmentRepository
	engine         *access.Engine
	orchestrator   *cascade.Orchestrator
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	subjectRepo repository.SubjectRepository,
	enrollmentRepo repository.EnrollmentRepository,
	engine *access.Engine,
	orchestrator *cascade.Orchestrator,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		subjectRepo:    subjectRepo,
		enrollmentRepo: enrollmentRepo,
		engine:         engine,
		orchestrator:   orchestrator,
	}
}

// CreateAssignmentInput represents parameters to create an assignment.
type CreateAssignmentInput struct {
	ActorID     uint64
	SubjectID   uint64
	Title       string
	Description string
	MaxScore    float64
	DueDate     *time.Time
}

// CreateAssignment creates an assignment on a subject.
func (s *AssignmentService) CreateAssignment(input CreateAssignmentInput) (*models.Assignment, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidAssignmentTitle
	}

	if err := s.engine.Decide(access.Actor{UserID: input.ActorID}, access.Scope{SubjectID: input.SubjectID}); err != nil {
		return nil, err
	}

	subject, err := s.subjectRepo.FindByID(input.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("subject not found")
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}
	if subject.IsLocked {
		return nil, apierrors.Conflictf("subject is locked")
	}

	assignment := &models.Assignment{
		SubjectID:   input.SubjectID,
		SchoolID:    subject.SchoolID,
		Title:       input.Title,
		Description: input.Description,
		MaxScore:    input.MaxScore,
		DueDate:     input.DueDate,
	}
	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return assignment, nil
}

// GetAssignment returns an assignment for staff, or for the owning
// student when studentID is set.
func (s *AssignmentService) GetAssignment(actor access.Actor, assignmentID uint64) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(assignmentID, "Students")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment not found")
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(actor, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return nil, err
	}

	if actor.StudentID != 0 {
		item, err := s.assignmentRepo.FindStudentOnAssignment(assignmentID, actor.StudentID)
		if err != nil || !item.IsAssigned {
			return nil, apierrors.Forbiddenf("not assigned to this assignment")
		}
	}

	return assignment, nil
}

// AssignStudents creates work items for the given subject enrollments.
func (s *AssignmentService) AssignStudents(actorID, assignmentID uint64, studentOnSubjectIDs []uint64) error {
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NotFoundf("assignment not found")
		}
		return fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return err
	}

	enrollments := make([]models.StudentOnSubject, 0, len(studentOnSubjectIDs))
	for _, id := range studentOnSubjectIDs {
		enrollment, err := s.enrollmentRepo.FindStudentOnSubjectByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFoundf("student enrollment not found")
			}
			return fmt.Errorf("failed to find enrollment: %w", err)
		}
		if enrollment.SubjectID != assignment.SubjectID {
			return apierrors.Conflictf("student is enrolled on a different subject")
		}
		enrollments = append(enrollments, *enrollment)
	}

	if err := s.assignmentRepo.AssignStudents(assignmentID, enrollments); err != nil {
		return fmt.Errorf("failed to assign students: %w", err)
	}
	return nil
}

// SubmitWork records a student's submission on their own work item.
// Ownership is checked by id comparison only; no role ever overrides it.
func (s *AssignmentService) SubmitWork(studentID, assignmentID uint64, body string) (*models.StudentOnAssignment, error) {
	item, err := s.assignmentRepo.FindStudentOnAssignment(assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment work item not found")
		}
		return nil, fmt.Errorf("failed to find work item: %w", err)
	}

	if err := s.engine.Decide(access.Actor{StudentID: studentID}, access.Scope{
		OwnerStudentID: item.StudentID,
	}); err != nil {
		return nil, err
	}
	if !item.IsAssigned {
		return nil, apierrors.Forbiddenf("not assigned to this assignment")
	}

	now := time.Now()
	item.Body = body
	item.SubmittedAt = &now
	if err := s.assignmentRepo.UpdateStudentOnAssignment(item); err != nil {
		return nil, fmt.Errorf("failed to update work item: %w", err)
	}
	return item, nil
}

// GradeWork sets the score on a student's work item.
func (s *AssignmentService) GradeWork(actorID, workItemID uint64, score float64) (*models.StudentOnAssignment, error) {
	item, err := s.assignmentRepo.FindStudentOnAssignmentByID(workItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment work item not found")
		}
		return nil, fmt.Errorf("failed to find work item: %w", err)
	}

	assignment, err := s.assignmentRepo.FindByID(item.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return nil, err
	}

	item.Score = &score
	if err := s.assignmentRepo.UpdateStudentOnAssignment(item); err != nil {
		return nil, fmt.Errorf("failed to update work item: %w", err)
	}
	return item, nil
}

// DeleteAssignment tears down the assignment and its dependent rows and
// files through the cascade orchestrator.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, actorID, assignmentID uint64) (*cascade.Summary, error) {
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment not found")
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return nil, err
	}

	return s.orchestrator.DeleteWithCascade(ctx, cascade.KindAssignment, assignmentID)
}
