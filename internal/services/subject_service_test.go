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

type subjectTestEnv struct {
	db      *gorm.DB
	service *SubjectService
}

func setupSubjectTestEnv(t *testing.T) subjectTestEnv {
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
		&models.AttendanceTable{},
		&models.AttendanceRow{},
		&models.Attendance{},
		&models.ScoreOnSubject{},
		&models.ScoreOnStudent{},
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

	service := NewSubjectService(
		repository.NewSubjectRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewStudentRepository(db),
		engine,
		orchestrator,
	)

	return subjectTestEnv{db: db, service: service}
}

// seedSubjectStaff creates a school with an accepted teacher and admin and
// returns them alongside a subject the teacher is enrolled on.
func (env subjectTestEnv) seedSubjectStaff(t *testing.T) (models.School, models.User, models.User, models.Subject) {
	t.Helper()

	school := models.School{Title: "school", InviteCode: "code", StorageLimit: 1 << 30}
	require.NoError(t, env.db.Create(&school).Error)

	teacher := models.User{Username: "teacher", PasswordHash: "x"}
	admin := models.User{Username: "admin", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&teacher).Error)
	require.NoError(t, env.db.Create(&admin).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: teacher.ID, Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: admin.ID, Role: models.RoleAdmin, Status: models.StatusAccept,
	}).Error)

	subject := models.Subject{SchoolID: school.ID, Title: "math"}
	require.NoError(t, env.db.Create(&subject).Error)
	require.NoError(t, env.db.Create(&models.TeacherOnSubject{
		UserID: teacher.ID, SubjectID: subject.ID, SchoolID: school.ID,
		Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	return school, teacher, admin, subject
}

func TestSubjectService_CreateSubject(t *testing.T) {
	env := setupSubjectTestEnv(t)
	school, teacher, _, _ := env.seedSubjectStaff(t)

	subject, err := env.service.CreateSubject(CreateSubjectInput{
		ActorID:  teacher.ID,
		SchoolID: school.ID,
		Title:    "physics",
	})
	require.NoError(t, err)

	// The creator is enrolled as an accepted subject ADMIN.
	var enrollment models.TeacherOnSubject
	require.NoError(t, env.db.Where("subject_id = ? AND user_id = ?", subject.ID, teacher.ID).
		First(&enrollment).Error)
	require.Equal(t, models.RoleAdmin, enrollment.Role)
	require.Equal(t, models.StatusAccept, enrollment.Status)

	_, err = env.service.CreateSubject(CreateSubjectInput{ActorID: teacher.ID, SchoolID: school.ID, Title: "  "})
	require.ErrorIs(t, err, ErrInvalidSubjectTitle)
}

func TestSubjectService_CreateSubject_RequiresTeacherRole(t *testing.T) {
	env := setupSubjectTestEnv(t)
	school, _, _, _ := env.seedSubjectStaff(t)

	plain := models.User{Username: "plain", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&plain).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: plain.ID, Role: models.RoleMember, Status: models.StatusAccept,
	}).Error)

	_, err := env.service.CreateSubject(CreateSubjectInput{ActorID: plain.ID, SchoolID: school.ID, Title: "art"})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestSubjectService_LockBlocksMutations(t *testing.T) {
	env := setupSubjectTestEnv(t)
	_, teacher, admin, subject := env.seedSubjectStaff(t)

	locked, err := env.service.SetLocked(admin.ID, subject.ID, true)
	require.NoError(t, err)
	require.True(t, locked.IsLocked)

	// Content mutations conflict while locked, even for the admin.
	_, err = env.service.UpdateSubject(teacher.ID, subject.ID, "new title", "")
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))
	_, err = env.service.UpdateSubject(admin.ID, subject.ID, "new title", "")
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))
	_, err = env.service.DeleteSubject(context.Background(), admin.ID, subject.ID)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))
	_, err = env.service.EnrollTeacher(admin.ID, subject.ID, teacher.ID, models.RoleTeacher)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))

	// Reads still work.
	_, err = env.service.GetSubject(teacher.ID, subject.ID)
	require.NoError(t, err)

	// Only a school ADMIN can flip the lock; unlocking is allowed on a
	// locked subject.
	_, err = env.service.SetLocked(teacher.ID, subject.ID, false)
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	unlocked, err := env.service.SetLocked(admin.ID, subject.ID, false)
	require.NoError(t, err)
	require.False(t, unlocked.IsLocked)

	_, err = env.service.UpdateSubject(teacher.ID, subject.ID, "new title", "")
	require.NoError(t, err)
}

func TestSubjectService_TeacherEnrollmentStateMachine(t *testing.T) {
	env := setupSubjectTestEnv(t)
	school, teacher, _, subject := env.seedSubjectStaff(t)

	invitee := models.User{Username: "invitee", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&invitee).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: invitee.ID, Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	enrollment, err := env.service.EnrollTeacher(teacher.ID, subject.ID, invitee.ID, models.RoleTeacher)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, enrollment.Status)

	// A pending enrollee cannot act on the subject yet.
	_, err = env.service.UpdateSubject(invitee.ID, subject.ID, "x", "")
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	enrollment, err = env.service.RespondToEnrollment(invitee.ID, subject.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccept, enrollment.Status)

	_, err = env.service.RespondToEnrollment(invitee.ID, subject.ID, false)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))

	// Duplicate enrollments conflict.
	_, err = env.service.EnrollTeacher(teacher.ID, subject.ID, invitee.ID, models.RoleTeacher)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))
}

func TestSubjectService_AddAndRemoveStudent(t *testing.T) {
	env := setupSubjectTestEnv(t)
	school, teacher, _, subject := env.seedSubjectStaff(t)

	student := models.Student{SchoolID: school.ID, Title: "alice"}
	require.NoError(t, env.db.Create(&student).Error)

	otherSchool := models.School{Title: "other", InviteCode: "other-code", StorageLimit: 1 << 30}
	require.NoError(t, env.db.Create(&otherSchool).Error)
	foreign := models.Student{SchoolID: otherSchool.ID, Title: "bob"}
	require.NoError(t, env.db.Create(&foreign).Error)

	// Students from another school cannot be enrolled.
	_, err := env.service.AddStudent(teacher.ID, subject.ID, foreign.ID)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))

	enrollment, err := env.service.AddStudent(teacher.ID, subject.ID, student.ID)
	require.NoError(t, err)
	require.True(t, enrollment.IsActive)

	_, err = env.service.AddStudent(teacher.ID, subject.ID, student.ID)
	require.True(t, apierrors.IsKind(err, apierrors.KindConflict))

	summary, err := env.service.RemoveStudent(context.Background(), teacher.ID, subject.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.RowsDeleted["student_on_subject"])

	_, err = env.service.RemoveStudent(context.Background(), teacher.ID, subject.ID, student.ID)
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
}
