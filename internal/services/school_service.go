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
	"github.com/classhub/school-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidSchoolTitle         = errors.New("school title cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
)

// SchoolService provides business logic for school operations.
type SchoolService struct {
	schoolRepo          repository.SchoolRepository
	memberRepo          repository.MembershipRepository
	engine              *access.Engine
	orchestrator        *cascade.Orchestrator
	defaultStorageLimit int64
}

// NewSchoolService creates a new SchoolService.
func NewSchoolService(
	schoolRepo repository.SchoolRepository,
	memberRepo repository.MembershipRepository,
	engine *access.Engine,
	orchestrator *cascade.Orchestrator,
	defaultStorageLimit int64,
) *SchoolService {
	return &SchoolService{
		schoolRepo:          schoolRepo,
		memberRepo:          memberRepo,
		engine:              engine,
		orchestrator:        orchestrator,
		defaultStorageLimit: defaultStorageLimit,
	}
}

// CreateSchoolInput represents parameters to create a new school.
type CreateSchoolInput struct {
	Title       string
	Description string
	CreatorID   uint64
}

// CreateSchool creates a new school and assigns the creator as an
// accepted ADMIN.
func (s *SchoolService) CreateSchool(input CreateSchoolInput) (*models.School, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidSchoolTitle
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	school := &models.School{
		Title:        input.Title,
		Description:  input.Description,
		InviteCode:   inviteCode,
		StorageLimit: s.defaultStorageLimit,
	}

	if err := s.schoolRepo.Create(school); err != nil {
		return nil, fmt.Errorf("failed to create school: %w", err)
	}

	member := &models.SchoolMember{
		SchoolID: school.ID,
		UserID:   input.CreatorID,
		Role:     models.RoleAdmin,
		Status:   models.StatusAccept,
		JoinedAt: time.Now(),
	}

	if err := s.memberRepo.CreateSchoolMember(member); err != nil {
		return nil, fmt.Errorf("failed to add creator to school: %w", err)
	}

	return school, nil
}

// ListSchoolsForUser returns a page of the schools the user belongs to and
// the total membership count.
func (s *SchoolService) ListSchoolsForUser(userID uint64, params utils.PaginationParams) ([]models.SchoolMember, int64, error) {
	memberships, total, err := s.memberRepo.ListSchoolsByUserID(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}
	return memberships, total, nil
}

// GetSchoolWithMembers returns a school and all of its members. The actor
// must be an accepted member.
func (s *SchoolService) GetSchoolWithMembers(actorID, schoolID uint64) (*models.School, []models.SchoolMember, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SchoolID: schoolID}); err != nil {
		return nil, nil, err
	}

	school, err := s.schoolRepo.FindByID(schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierrors.NotFoundf("school not found")
		}
		return nil, nil, fmt.Errorf("failed to find school: %w", err)
	}

	members, err := s.memberRepo.ListSchoolMembers(schoolID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list school members: %w", err)
	}

	return school, members, nil
}

// UpdateSchool updates a school's title and description. ADMIN only.
func (s *SchoolService) UpdateSchool(actorID, schoolID uint64, title, description string) (*models.School, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidSchoolTitle
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	school, err := s.schoolRepo.FindByID(schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("school not found")
		}
		return nil, fmt.Errorf("failed to find school: %w", err)
	}

	school.Title = title
	school.Description = description
	if err := s.schoolRepo.Update(school); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}

	return school, nil
}

// DeleteSchool tears down the whole tenant through the cascade
// orchestrator. ADMIN only.
func (s *SchoolService) DeleteSchool(ctx context.Context, actorID, schoolID uint64) (*cascade.Summary, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	return s.orchestrator.DeleteWithCascade(ctx, cascade.KindSchool, schoolID)
}

// RegenerateInviteCode generates a new invite code for the school. ADMIN only.
func (s *SchoolService) RegenerateInviteCode(actorID, schoolID uint64) (*models.School, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	school, err := s.schoolRepo.FindByID(schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("school not found")
		}
		return nil, fmt.Errorf("failed to find school: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	school.InviteCode = code
	if err := s.schoolRepo.Update(school); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return school, nil
}
