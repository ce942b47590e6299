package repository

import (
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/utils"
)

// SchoolRepository defines the interface for school data access
type SchoolRepository interface {
	// Create creates a new school
	Create(school *models.School) error

	// FindByID finds a school by ID
	FindByID(id uint64) (*models.School, error)

	// FindByInviteCode finds a school by invite code
	FindByInviteCode(code string) (*models.School, error)

	// Update updates a school
	Update(school *models.School) error
}

// MembershipRepository defines the interface for school- and team-level
// membership data access
type MembershipRepository interface {
	// FindSchoolMember finds a specific school membership
	FindSchoolMember(schoolID, userID uint64) (*models.SchoolMember, error)

	// CreateSchoolMember creates a school membership row
	CreateSchoolMember(member *models.SchoolMember) error

	// UpdateSchoolMember updates role or invitation status
	UpdateSchoolMember(member *models.SchoolMember) error

	// ListSchoolMembers lists all members of a school
	ListSchoolMembers(schoolID uint64) ([]models.SchoolMember, error)

	// ListSchoolsByUserID lists a page of the schools a user is a member
	// of, together with the total membership count
	ListSchoolsByUserID(userID uint64, params utils.PaginationParams) ([]models.SchoolMember, int64, error)

	// FindTeamMember finds a specific team membership
	FindTeamMember(teamID, userID uint64) (*models.TeamMember, error)

	// CreateTeamMember creates a team membership row
	CreateTeamMember(member *models.TeamMember) error

	// UpdateTeamMember updates role or invitation status
	UpdateTeamMember(member *models.TeamMember) error
}

// EnrollmentRepository defines the interface for subject enrollment data access
type EnrollmentRepository interface {
	// FindTeacherOnSubject finds a teacher enrollment for a subject
	FindTeacherOnSubject(subjectID, userID uint64) (*models.TeacherOnSubject, error)

	// CreateTeacherOnSubject creates a teacher enrollment
	CreateTeacherOnSubject(enrollment *models.TeacherOnSubject) error

	// UpdateTeacherOnSubject updates role or invitation status
	UpdateTeacherOnSubject(enrollment *models.TeacherOnSubject) error

	// ListTeachersOnSubject lists teacher enrollments for a subject
	ListTeachersOnSubject(subjectID uint64) ([]models.TeacherOnSubject, error)

	// FindStudentOnSubject finds a student enrollment for a subject
	FindStudentOnSubject(subjectID, studentID uint64) (*models.StudentOnSubject, error)

	// FindStudentOnSubjectByID finds a student enrollment by primary key
	FindStudentOnSubjectByID(id uint64) (*models.StudentOnSubject, error)

	// CreateStudentOnSubject creates a student enrollment
	CreateStudentOnSubject(enrollment *models.StudentOnSubject) error

	// UpdateStudentOnSubject updates the enrollment flags
	UpdateStudentOnSubject(enrollment *models.StudentOnSubject) error

	// ListStudentsOnSubject lists student enrollments for a subject
	ListStudentsOnSubject(subjectID uint64) ([]models.StudentOnSubject, error)
}

// SubjectRepository defines the interface for subject data access
type SubjectRepository interface {
	// Create creates a new subject
	Create(subject *models.Subject) error

	// FindByID finds a subject by ID
	FindByID(id uint64) (*models.Subject, error)

	// Update updates a subject
	Update(subject *models.Subject) error

	// ListBySchool lists subjects owned by a school
	ListBySchool(schoolID uint64) ([]models.Subject, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// ListBySchool lists teams owned by a school
	ListBySchool(schoolID uint64) ([]models.Team, error)
}

// AssignmentRepository defines the interface for assignment data access
type AssignmentRepository interface {
	// Create creates a new assignment
	Create(assignment *models.Assignment) error

	// FindByID finds an assignment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Assignment, error)

	// Update updates an assignment
	Update(assignment *models.Assignment) error

	// ListBySubject lists assignments owned by a subject
	ListBySubject(subjectID uint64) ([]models.Assignment, error)

	// AssignStudents creates work items for the given student enrollments
	AssignStudents(assignmentID uint64, enrollments []models.StudentOnSubject) error

	// FindStudentOnAssignment finds a student's work item for an assignment
	FindStudentOnAssignment(assignmentID, studentID uint64) (*models.StudentOnAssignment, error)

	// FindStudentOnAssignmentByID finds a work item by primary key
	FindStudentOnAssignmentByID(id uint64) (*models.StudentOnAssignment, error)

	// UpdateStudentOnAssignment updates a work item
	UpdateStudentOnAssignment(item *models.StudentOnAssignment) error
}

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	// Create creates a new student
	Create(student *models.Student) error

	// FindByID finds a student by ID
	FindByID(id uint64) (*models.Student, error)

	// ListBySchool lists students owned by a school
	ListBySchool(schoolID uint64) ([]models.Student, error)
}

// FileRepository defines the interface for file reference data access
type FileRepository interface {
	// CreateFileOnAssignment creates an assignment file reference
	CreateFileOnAssignment(file *models.FileOnAssignment) error

	// FindFileOnAssignment finds an assignment file reference by ID
	FindFileOnAssignment(id uint64) (*models.FileOnAssignment, error)

	// CreateFileOnStudentAssignment creates a work-item file reference
	CreateFileOnStudentAssignment(file *models.FileOnStudentAssignment) error

	// CreateFileOnSubject creates a subject file reference
	CreateFileOnSubject(file *models.FileOnSubject) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalSchool creates a user, their personal school,
	// and corresponding membership within a single transaction.
	CreateWithPersonalSchool(user *models.User, school *models.School, member *models.SchoolMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
