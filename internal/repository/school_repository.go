package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
)

// GormSchoolRepository is a GORM implementation of SchoolRepository
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &GormSchoolRepository{db: db}
}

// Create creates a new school
func (r *GormSchoolRepository) Create(school *models.School) error {
	return r.db.Create(school).Error
}

// FindByID finds a school by ID
func (r *GormSchoolRepository) FindByID(id uint64) (*models.School, error) {
	var school models.School
	if err := r.db.First(&school, id).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

// FindByInviteCode finds a school by invite code
func (r *GormSchoolRepository) FindByInviteCode(code string) (*models.School, error) {
	var school models.School
	if err := r.db.Where("invite_code = ?", code).First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

// Update updates a school
func (r *GormSchoolRepository) Update(school *models.School) error {
	return r.db.Save(school).Error
}
