package repository

import (
	"github.com/classhub/school-management-api/internal/database"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindSchoolMember finds a specific school membership
func (r *GormMembershipRepository) FindSchoolMember(schoolID, userID uint64) (*models.SchoolMember, error) {
	var member models.SchoolMember
	if err := r.db.Where("school_id = ? AND user_id = ?", schoolID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// CreateSchoolMember creates a school membership row
func (r *GormMembershipRepository) CreateSchoolMember(member *models.SchoolMember) error {
	return r.db.Create(member).Error
}

// UpdateSchoolMember updates role or invitation status
func (r *GormMembershipRepository) UpdateSchoolMember(member *models.SchoolMember) error {
	return r.db.Model(&models.SchoolMember{}).
		Where("school_id = ? AND user_id = ?", member.SchoolID, member.UserID).
		Updates(map[string]any{"role": member.Role, "status": member.Status}).Error
}

// ListSchoolMembers lists all members of a school
func (r *GormMembershipRepository) ListSchoolMembers(schoolID uint64) ([]models.SchoolMember, error) {
	var members []models.SchoolMember
	if err := r.db.Preload("User").
		Where("school_id = ?", schoolID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListSchoolsByUserID lists a page of the schools a user is a member of
func (r *GormMembershipRepository) ListSchoolsByUserID(userID uint64, params utils.PaginationParams) ([]models.SchoolMember, int64, error) {
	query := r.db.Model(&models.SchoolMember{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var memberships []models.SchoolMember
	if err := query.Preload("School").
		Scopes(database.Paginate(params)).
		Find(&memberships).Error; err != nil {
		return nil, 0, err
	}
	return memberships, total, nil
}

// FindTeamMember finds a specific team membership
func (r *GormMembershipRepository) FindTeamMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// CreateTeamMember creates a team membership row
func (r *GormMembershipRepository) CreateTeamMember(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// UpdateTeamMember updates role or invitation status
func (r *GormMembershipRepository) UpdateTeamMember(member *models.TeamMember) error {
	return r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", member.TeamID, member.UserID).
		Updates(map[string]any{"role": member.Role, "status": member.Status}).Error
}
