package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/cascade"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"gorm.io/gorm"
)

// MembershipService implements the invitation state machine for school and
// team memberships: PENDING transitions once to ACCEPT or REJECT, both
// terminal. Role changes are orthogonal to status and ADMIN-gated.
type MembershipService struct {
	memberRepo   repository.MembershipRepository
	userRepo     repository.UserRepository
	schoolRepo   repository.SchoolRepository
	teamRepo     repository.TeamRepository
	engine       *access.Engine
	orchestrator *cascade.Orchestrator
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(
	memberRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	schoolRepo repository.SchoolRepository,
	teamRepo repository.TeamRepository,
	engine *access.Engine,
	orchestrator *cascade.Orchestrator,
) *MembershipService {
	return &MembershipService{
		memberRepo:   memberRepo,
		userRepo:     userRepo,
		schoolRepo:   schoolRepo,
		teamRepo:     teamRepo,
		engine:       engine,
		orchestrator: orchestrator,
	}
}

// InviteMember creates a PENDING school membership for the target user.
// The actor must be a school ADMIN; at most one membership row may exist
// per (user, school) pair.
func (s *MembershipService) InviteMember(actorID, schoolID, targetUserID uint64, role models.MemberRole) (*models.SchoolMember, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.memberRepo.FindSchoolMember(schoolID, targetUserID); err == nil {
		return nil, apierrors.Conflictf("user is already a member of this school")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.SchoolMember{
		SchoolID: schoolID,
		UserID:   targetUserID,
		Role:     role,
		Status:   models.StatusPending,
		JoinedAt: time.Now(),
	}
	if err := s.memberRepo.CreateSchoolMember(member); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return member, nil
}

// RespondToInvitation transitions the actor's own PENDING membership to
// ACCEPT or REJECT. Terminal statuses cannot transition again; a new
// invitation row is required to re-offer access.
func (s *MembershipService) RespondToInvitation(actorID, schoolID uint64, accept bool) (*models.SchoolMember, error) {
	member, err := s.memberRepo.FindSchoolMember(schoolID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("invitation not found")
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if member.Status.IsTerminal() {
		return nil, apierrors.Conflictf("invitation has already been %s", member.Status)
	}

	if accept {
		member.Status = models.StatusAccept
	} else {
		member.Status = models.StatusReject
	}
	if err := s.memberRepo.UpdateSchoolMember(member); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	return member, nil
}

// JoinByInviteCode self-registers the user as an accepted MEMBER of the
// school owning the code.
func (s *MembershipService) JoinByInviteCode(userID uint64, inviteCode string) (*models.School, error) {
	school, err := s.schoolRepo.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("invalid invite code")
		}
		return nil, fmt.Errorf("failed to find school by invite code: %w", err)
	}

	if _, err := s.memberRepo.FindSchoolMember(school.ID, userID); err == nil {
		return nil, apierrors.Conflictf("user is already a member of this school")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.SchoolMember{
		SchoolID: school.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		Status:   models.StatusAccept,
		JoinedAt: time.Now(),
	}
	if err := s.memberRepo.CreateSchoolMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to school: %w", err)
	}

	return school, nil
}

// ChangeRole updates a member's role. Roles are orthogonal to invitation
// status; only a school ADMIN may change them.
func (s *MembershipService) ChangeRole(actorID, schoolID, targetUserID uint64, role models.MemberRole) (*models.SchoolMember, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.FindSchoolMember(schoolID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("school member not found")
		}
		return nil, fmt.Errorf("failed to find school member: %w", err)
	}

	member.Role = role
	if err := s.memberRepo.UpdateSchoolMember(member); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return member, nil
}

// RemoveMember removes a member from the school together with every team
// membership and subject enrollment the school membership caused.
func (s *MembershipService) RemoveMember(ctx context.Context, actorID, schoolID, targetUserID uint64) (*cascade.Summary, error) {
	if targetUserID == actorID {
		return nil, apierrors.Conflictf("cannot remove yourself from the school")
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{
		SchoolID: schoolID,
		MinRole:  models.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	if _, err := s.memberRepo.FindSchoolMember(schoolID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("school member not found")
		}
		return nil, fmt.Errorf("failed to find school member: %w", err)
	}

	return s.orchestrator.DeleteMemberCascade(ctx, schoolID, targetUserID)
}

// InviteTeamMember creates a PENDING team membership. The actor must be a
// school ADMIN or an accepted member of the team.
func (s *MembershipService) InviteTeamMember(actorID, teamID, targetUserID uint64, role models.MemberRole) (*models.TeamMember, error) {
	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{TeamID: teamID}); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("team not found")
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	// The target must already hold an accepted membership in the school.
	target, err := s.memberRepo.FindSchoolMember(team.SchoolID, targetUserID)
	if err != nil || target.Status != models.StatusAccept {
		return nil, apierrors.Conflictf("target user is not an accepted member of this school")
	}

	if _, err := s.memberRepo.FindTeamMember(teamID, targetUserID); err == nil {
		return nil, apierrors.Conflictf("user is already a member of this team")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify team membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   targetUserID,
		SchoolID: team.SchoolID,
		Role:     role,
		Status:   models.StatusPending,
		JoinedAt: time.Now(),
	}
	if err := s.memberRepo.CreateTeamMember(member); err != nil {
		return nil, fmt.Errorf("failed to create team invitation: %w", err)
	}
	return member, nil
}

// RespondToTeamInvitation transitions the actor's own PENDING team
// membership to ACCEPT or REJECT.
func (s *MembershipService) RespondToTeamInvitation(actorID, teamID uint64, accept bool) (*models.TeamMember, error) {
	member, err := s.memberRepo.FindTeamMember(teamID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("invitation not found")
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if member.Status.IsTerminal() {
		return nil, apierrors.Conflictf("invitation has already been %s", member.Status)
	}

	if accept {
		member.Status = models.StatusAccept
	} else {
		member.Status = models.StatusReject
	}
	if err := s.memberRepo.UpdateTeamMember(member); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	return member, nil
}
