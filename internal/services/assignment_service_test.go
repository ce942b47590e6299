package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/cascade"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"github.com/classhub/school-management-api/internal/storage"
)

type assignmentTestEnv struct {
	db      *gorm.DB
	service *AssignmentService

	school  models.School
	teacher models.User
	subject models.Subject
}

func setupAssignmentTestEnv(t *testing.T) *assignmentTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.School{},
		&models.SchoolMember{},
		&models.Team{},
		&models.TeamMember{},
		&models.Subject{},
		&models.TeacherOnSubject{},
		&models.Student{},
		&models.StudentOnSubject{},
		&models.Assignment{},
		&models.StudentOnAssignment{},
		&models.SkillOnAssignment{},
		&models.CommentOnAssignment{},
		&models.FileOnAssignment{},
		&models.FileOnStudentAssignment{},
		&models.FileOnSubject{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	engine := access.NewEngine(
		repository.NewSchoolRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewTeamRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewStudentRepository(db),
	)
	logger := zap.NewNop()
	orchestrator := cascade.NewOrchestrator(db, storage.NewTracker(db, logger), nil, logger)

	service := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewEnrollmentRepository(db),
		engine,
		orchestrator,
	)

	env := &assignmentTestEnv{db: db, service: service}

	env.school = models.School{Title: "school", InviteCode: "code", StorageLimit: 1 << 30}
	require.NoError(t, db.Create(&env.school).Error)

	env.teacher = models.User{Username: "teacher", PasswordHash: "x"}
	require.NoError(t, db.Create(&env.teacher).Error)
	require.NoError(t, db.Create(&models.SchoolMember{
		SchoolID: env.school.ID, UserID: env.teacher.ID,
		Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	env.subject = models.Subject{SchoolID: env.school.ID, Title: "math"}
	require.NoError(t, db.Create(&env.subject).Error)
	require.NoError(t, db.Create(&models.TeacherOnSubject{
		UserID: env.teacher.ID, SubjectID: env.subject.ID, SchoolID: env.school.ID,
		Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	return env
}

func (env *assignmentTestEnv) enrollStudent(t *testing.T, title string) (models.Student, models.StudentOnSubject) {
	t.Helper()
	student := models.Student{SchoolID: env.school.ID, Title: title}
	require.NoError(t, env.db.Create(&student).Error)
	enrollment := models.StudentOnSubject{
		StudentID: student.ID, SubjectID: env.subject.ID,
		SchoolID: env.school.ID, IsActive: true,
	}
	require.NoError(t, env.db.Create(&enrollment).Error)
	return student, enrollment
}

func TestAssignmentService_CreateAndAssign(t *testing.T) {
	env := setupAssignmentTestEnv(t)
	_, enrollment := env.enrollStudent(t, "alice")

	assignment, err := env.service.CreateAssignment(CreateAssignmentInput{
		ActorID:   env.teacher.ID,
		SubjectID: env.subject.ID,
		Title:     "homework",
		MaxScore:  100,
	})
	require.NoError(t, err)
	require.Equal(t, env.school.ID, assignment.SchoolID)

	require.NoError(t, env.service.AssignStudents(env.teacher.ID, assignment.ID, []uint64{enrollment.ID}))

	var item models.StudentOnAssignment
	require.NoError(t, env.db.Where("assignment_id = ?", assignment.ID).First(&item).Error)
	require.True(t, item.IsAssigned)

	// Re-assigning the same enrollment is a no-op, not an error.
	require.NoError(t, env.service.AssignStudents(env.teacher.ID, assignment.ID, []uint64{enrollment.ID}))
	var count int64
	require.NoError(t, env.db.Model(&models.StudentOnAssignment{}).
		Where("assignment_id = ?", assignment.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAssignmentService_SubmitWork_OwnershipIsolation(t *testing.T) {
	env := setupAssignmentTestEnv(t)
	alice, aliceEnrollment := env.enrollStudent(t, "alice")
	bob, _ := env.enrollStudent(t, "bob")

	assignment, err := env.service.CreateAssignment(CreateAssignmentInput{
		ActorID:   env.teacher.ID,
		SubjectID: env.subject.ID,
		Title:     "homework",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.AssignStudents(env.teacher.ID, assignment.ID, []uint64{aliceEnrollment.ID}))

	item, err := env.service.SubmitWork(alice.ID, assignment.ID, "my answer")
	require.NoError(t, err)
	require.Equal(t, "my answer", item.Body)
	require.NotNil(t, item.SubmittedAt)

	// Bob has no work item on this assignment.
	_, err = env.service.SubmitWork(bob.ID, assignment.ID, "not mine")
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
}

func TestAssignmentService_SubmitWork_UnassignedIsForbidden(t *testing.T) {
	env := setupAssignmentTestEnv(t)
	alice, aliceEnrollment := env.enrollStudent(t, "alice")

	assignment, err := env.service.CreateAssignment(CreateAssignmentInput{
		ActorID:   env.teacher.ID,
		SubjectID: env.subject.ID,
		Title:     "homework",
	})
	require.NoError(t, err)

	item := models.StudentOnAssignment{
		StudentOnSubjectID: aliceEnrollment.ID,
		AssignmentID:       assignment.ID,
		StudentID:          alice.ID,
		IsAssigned:         false,
	}
	require.NoError(t, env.db.Create(&item).Error)

	// The false flag must survive the insert as written; a column default
	// must not overwrite it.
	var reloaded models.StudentOnAssignment
	require.NoError(t, env.db.First(&reloaded, item.ID).Error)
	require.False(t, reloaded.IsAssigned)

	_, err = env.service.SubmitWork(alice.ID, assignment.ID, "answer")
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestAssignmentService_GradeWork(t *testing.T) {
	env := setupAssignmentTestEnv(t)
	alice, aliceEnrollment := env.enrollStudent(t, "alice")

	assignment, err := env.service.CreateAssignment(CreateAssignmentInput{
		ActorID:   env.teacher.ID,
		SubjectID: env.subject.ID,
		Title:     "homework",
		MaxScore:  100,
	})
	require.NoError(t, err)
	require.NoError(t, env.service.AssignStudents(env.teacher.ID, assignment.ID, []uint64{aliceEnrollment.ID}))

	_, err = env.service.SubmitWork(alice.ID, assignment.ID, "answer")
	require.NoError(t, err)

	var item models.StudentOnAssignment
	require.NoError(t, env.db.Where("assignment_id = ?", assignment.ID).First(&item).Error)

	graded, err := env.service.GradeWork(env.teacher.ID, item.ID, 87)
	require.NoError(t, err)
	require.NotNil(t, graded.Score)
	require.Equal(t, float64(87), *graded.Score)

	// Staff outside the subject cannot grade.
	outsider := models.User{Username: "outsider", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&outsider).Error)
	_, err = env.service.GradeWork(outsider.ID, item.ID, 10)
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestAssignmentService_DeleteAssignment(t *testing.T) {
	env := setupAssignmentTestEnv(t)
	_, aliceEnrollment := env.enrollStudent(t, "alice")

	assignment, err := env.service.CreateAssignment(CreateAssignmentInput{
		ActorID:   env.teacher.ID,
		SubjectID: env.subject.ID,
		Title:     "homework",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.AssignStudents(env.teacher.ID, assignment.ID, []uint64{aliceEnrollment.ID}))

	summary, err := env.service.DeleteAssignment(context.Background(), env.teacher.ID, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.RowsDeleted["assignment"])
	require.Equal(t, int64(1), summary.RowsDeleted["student_on_assignments"])

	_, err = env.service.DeleteAssignment(context.Background(), env.teacher.ID, assignment.ID)
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
}
