package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create creates a new assignment
func (r *GormAssignmentRepository) Create(assignment *models.Assignment) error {
	return r.db.Create(assignment).Error
}

// FindByID finds an assignment by ID with optional preloading
func (r *GormAssignmentRepository) FindByID(id uint64, preload ...string) (*models.Assignment, error) {
	var assignment models.Assignment
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Update updates an assignment
func (r *GormAssignmentRepository) Update(assignment *models.Assignment) error {
	return r.db.Save(assignment).Error
}

// ListBySubject lists assignments owned by a subject
func (r *GormAssignmentRepository) ListBySubject(subjectID uint64) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.Where("subject_id = ?", subjectID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// AssignStudents creates work items for the given student enrollments.
// Already-assigned students are left untouched.
func (r *GormAssignmentRepository) AssignStudents(assignmentID uint64, enrollments []models.StudentOnSubject) error {
	if len(enrollments) == 0 {
		return nil
	}

	items := make([]models.StudentOnAssignment, len(enrollments))
	for i, e := range enrollments {
		items[i] = models.StudentOnAssignment{
			StudentOnSubjectID: e.ID,
			AssignmentID:       assignmentID,
			StudentID:          e.StudentID,
			IsAssigned:         true,
		}
	}

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

// FindStudentOnAssignment finds a student's work item for an assignment
func (r *GormAssignmentRepository) FindStudentOnAssignment(assignmentID, studentID uint64) (*models.StudentOnAssignment, error) {
	var item models.StudentOnAssignment
	if err := r.db.Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindStudentOnAssignmentByID finds a work item by primary key
func (r *GormAssignmentRepository) FindStudentOnAssignmentByID(id uint64) (*models.StudentOnAssignment, error) {
	var item models.StudentOnAssignment
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStudentOnAssignment updates a work item
func (r *GormAssignmentRepository) UpdateStudentOnAssignment(item *models.StudentOnAssignment) error {
	return r.db.Save(item).Error
}
