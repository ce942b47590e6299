package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
)

// GormEnrollmentRepository is a GORM implementation of EnrollmentRepository
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// FindTeacherOnSubject finds a teacher enrollment for a subject
func (r *GormEnrollmentRepository) FindTeacherOnSubject(subjectID, userID uint64) (*models.TeacherOnSubject, error) {
	var enrollment models.TeacherOnSubject
	if err := r.db.Where("subject_id = ? AND user_id = ?", subjectID, userID).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CreateTeacherOnSubject creates a teacher enrollment
func (r *GormEnrollmentRepository) CreateTeacherOnSubject(enrollment *models.TeacherOnSubject) error {
	return r.db.Create(enrollment).Error
}

// UpdateTeacherOnSubject updates role or invitation status
func (r *GormEnrollmentRepository) UpdateTeacherOnSubject(enrollment *models.TeacherOnSubject) error {
	return r.db.Save(enrollment).Error
}

// ListTeachersOnSubject lists teacher enrollments for a subject
func (r *GormEnrollmentRepository) ListTeachersOnSubject(subjectID uint64) ([]models.TeacherOnSubject, error) {
	var enrollments []models.TeacherOnSubject
	if err := r.db.Preload("User").
		Where("subject_id = ?", subjectID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// FindStudentOnSubject finds a student enrollment for a subject
func (r *GormEnrollmentRepository) FindStudentOnSubject(subjectID, studentID uint64) (*models.StudentOnSubject, error) {
	var enrollment models.StudentOnSubject
	if err := r.db.Where("subject_id = ? AND student_id = ?", subjectID, studentID).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindStudentOnSubjectByID finds a student enrollment by primary key
func (r *GormEnrollmentRepository) FindStudentOnSubjectByID(id uint64) (*models.StudentOnSubject, error) {
	var enrollment models.StudentOnSubject
	if err := r.db.First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CreateStudentOnSubject creates a student enrollment
func (r *GormEnrollmentRepository) CreateStudentOnSubject(enrollment *models.StudentOnSubject) error {
	return r.db.Create(enrollment).Error
}

// UpdateStudentOnSubject updates the enrollment flags
func (r *GormEnrollmentRepository) UpdateStudentOnSubject(enrollment *models.StudentOnSubject) error {
	return r.db.Save(enrollment).Error
}

// ListStudentsOnSubject lists student enrollments for a subject
func (r *GormEnrollmentRepository) ListStudentsOnSubject(subjectID uint64) ([]models.StudentOnSubject, error) {
	var enrollments []models.StudentOnSubject
	if err := r.db.Preload("Student").
		Where("subject_id = ?", subjectID).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
