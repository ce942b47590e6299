package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
)

// GormSubjectRepository is a GORM implementation of SubjectRepository
type GormSubjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &GormSubjectRepository{db: db}
}

// Create creates a new subject
func (r *GormSubjectRepository) Create(subject *models.Subject) error {
	return r.db.Create(subject).Error
}

// FindByID finds a subject by ID
func (r *GormSubjectRepository) FindByID(id uint64) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

// Update updates a subject
func (r *GormSubjectRepository) Update(subject *models.Subject) error {
	return r.db.Save(subject).Error
}

// ListBySchool lists subjects owned by a school
func (r *GormSubjectRepository) ListBySchool(schoolID uint64) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.Where("school_id = ?", schoolID).Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListBySchool lists teams owned by a school
func (r *GormTeamRepository) ListBySchool(schoolID uint64) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Where("school_id = ?", schoolID).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}
