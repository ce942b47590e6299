package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
)

// GormStudentRepository is a GORM implementation of StudentRepository
type GormStudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &GormStudentRepository{db: db}
}

// Create creates a new student
func (r *GormStudentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}

// FindByID finds a student by ID
func (r *GormStudentRepository) FindByID(id uint64) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// ListBySchool lists students owned by a school
func (r *GormStudentRepository) ListBySchool(schoolID uint64) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Where("school_id = ?", schoolID).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// GormFileRepository is a GORM implementation of FileRepository
type GormFileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *gorm.DB) FileRepository {
	return &GormFileRepository{db: db}
}

// CreateFileOnAssignment creates an assignment file reference
func (r *GormFileRepository) CreateFileOnAssignment(file *models.FileOnAssignment) error {
	return r.db.Create(file).Error
}

// FindFileOnAssignment finds an assignment file reference by ID
func (r *GormFileRepository) FindFileOnAssignment(id uint64) (*models.FileOnAssignment, error) {
	var file models.FileOnAssignment
	if err := r.db.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// CreateFileOnStudentAssignment creates a work-item file reference
func (r *GormFileRepository) CreateFileOnStudentAssignment(file *models.FileOnStudentAssignment) error {
	return r.db.Create(file).Error
}

// CreateFileOnSubject creates a subject file reference
func (r *GormFileRepository) CreateFileOnSubject(file *models.FileOnSubject) error {
	return r.db.Create(file).Error
}
