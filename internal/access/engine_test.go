package access

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
)

type engineTestEnv struct {
	db     *gorm.DB
	engine *Engine
}

func setupEngineTestEnv(t *testing.T) engineTestEnv {
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
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	engine := NewEngine(
		repository.NewSchoolRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewTeamRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewStudentRepository(db),
	)

	return engineTestEnv{db: db, engine: engine}
}

func (env engineTestEnv) createSchool(t *testing.T, title string) models.School {
	t.Helper()
	school := models.School{Title: title, InviteCode: title + "-code", StorageLimit: 1 << 30}
	require.NoError(t, env.db.Create(&school).Error)
	return school
}

func (env engineTestEnv) createUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, env.db.Create(&user).Error)
	return user
}

func (env engineTestEnv) addMember(t *testing.T, schoolID, userID uint64, role models.MemberRole, status models.InviteStatus) {
	t.Helper()
	member := models.SchoolMember{SchoolID: schoolID, UserID: userID, Role: role, Status: status}
	require.NoError(t, env.db.Create(&member).Error)
}

func (env engineTestEnv) createSubject(t *testing.T, schoolID uint64, title string) models.Subject {
	t.Helper()
	subject := models.Subject{SchoolID: schoolID, Title: title}
	require.NoError(t, env.db.Create(&subject).Error)
	return subject
}

func TestEngine_Decide_SchoolMembership(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	user := env.createUser(t, "teacher")

	// No membership row at all denies.
	err := env.engine.Decide(Actor{UserID: user.ID}, Scope{SchoolID: school.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// PENDING denies the same way as absent.
	env.addMember(t, school.ID, user.ID, models.RoleTeacher, models.StatusPending)
	err = env.engine.Decide(Actor{UserID: user.ID}, Scope{SchoolID: school.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// REJECT denies too.
	require.NoError(t, env.db.Model(&models.SchoolMember{}).
		Where("school_id = ? AND user_id = ?", school.ID, user.ID).
		Update("status", models.StatusReject).Error)
	err = env.engine.Decide(Actor{UserID: user.ID}, Scope{SchoolID: school.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// ACCEPT allows.
	require.NoError(t, env.db.Model(&models.SchoolMember{}).
		Where("school_id = ? AND user_id = ?", school.ID, user.ID).
		Update("status", models.StatusAccept).Error)
	require.NoError(t, env.engine.Decide(Actor{UserID: user.ID}, Scope{SchoolID: school.ID}))
}

func TestEngine_Decide_MissingResourcesAreNotFound(t *testing.T) {
	env := setupEngineTestEnv(t)
	user := env.createUser(t, "someone")

	err := env.engine.Decide(Actor{UserID: user.ID}, Scope{SchoolID: 9999})
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))

	err = env.engine.Decide(Actor{UserID: user.ID}, Scope{SubjectID: 9999})
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))

	err = env.engine.Decide(Actor{UserID: user.ID}, Scope{TeamID: 9999})
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
}

func TestEngine_Decide_MinRole(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	member := env.createUser(t, "member")
	admin := env.createUser(t, "admin")
	env.addMember(t, school.ID, member.ID, models.RoleMember, models.StatusAccept)
	env.addMember(t, school.ID, admin.ID, models.RoleAdmin, models.StatusAccept)

	err := env.engine.Decide(Actor{UserID: member.ID}, Scope{SchoolID: school.ID, MinRole: models.RoleTeacher})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	require.NoError(t, env.engine.Decide(Actor{UserID: admin.ID}, Scope{SchoolID: school.ID, MinRole: models.RoleTeacher}))
	require.NoError(t, env.engine.Decide(Actor{UserID: admin.ID}, Scope{SchoolID: school.ID, MinRole: models.RoleAdmin}))
}

func TestEngine_Decide_SubjectScope(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	subject := env.createSubject(t, school.ID, "math")

	teacher := env.createUser(t, "teacher")
	admin := env.createUser(t, "admin")
	env.addMember(t, school.ID, teacher.ID, models.RoleTeacher, models.StatusAccept)
	env.addMember(t, school.ID, admin.ID, models.RoleAdmin, models.StatusAccept)

	// Accepted school member without an enrollment is denied.
	err := env.engine.Decide(Actor{UserID: teacher.ID}, Scope{SubjectID: subject.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// A PENDING enrollment still denies.
	enrollment := models.TeacherOnSubject{
		UserID:    teacher.ID,
		SubjectID: subject.ID,
		SchoolID:  school.ID,
		Role:      models.RoleTeacher,
		Status:    models.StatusPending,
	}
	require.NoError(t, env.db.Create(&enrollment).Error)
	err = env.engine.Decide(Actor{UserID: teacher.ID}, Scope{SubjectID: subject.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// ACCEPT allows.
	require.NoError(t, env.db.Model(&models.TeacherOnSubject{}).
		Where("id = ?", enrollment.ID).
		Update("status", models.StatusAccept).Error)
	require.NoError(t, env.engine.Decide(Actor{UserID: teacher.ID}, Scope{SubjectID: subject.ID}))

	// A school ADMIN passes subject scope without any enrollment.
	require.NoError(t, env.engine.Decide(Actor{UserID: admin.ID}, Scope{SubjectID: subject.ID}))
}

func TestEngine_Decide_TeamScope(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	team := models.Team{SchoolID: school.ID, Title: "grade-1"}
	require.NoError(t, env.db.Create(&team).Error)

	user := env.createUser(t, "teacher")
	admin := env.createUser(t, "admin")
	env.addMember(t, school.ID, user.ID, models.RoleTeacher, models.StatusAccept)
	env.addMember(t, school.ID, admin.ID, models.RoleAdmin, models.StatusAccept)

	err := env.engine.Decide(Actor{UserID: user.ID}, Scope{TeamID: team.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	teamMember := models.TeamMember{
		TeamID:   team.ID,
		UserID:   user.ID,
		SchoolID: school.ID,
		Role:     models.RoleMember,
		Status:   models.StatusAccept,
	}
	require.NoError(t, env.db.Create(&teamMember).Error)
	require.NoError(t, env.engine.Decide(Actor{UserID: user.ID}, Scope{TeamID: team.ID}))

	// ADMIN overrides team membership.
	require.NoError(t, env.engine.Decide(Actor{UserID: admin.ID}, Scope{TeamID: team.ID}))
}

func TestEngine_Decide_StudentOwnership(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	subject := env.createSubject(t, school.ID, "math")

	owner := models.Student{SchoolID: school.ID, Title: "alice"}
	other := models.Student{SchoolID: school.ID, Title: "bob"}
	require.NoError(t, env.db.Create(&owner).Error)
	require.NoError(t, env.db.Create(&other).Error)

	// Ownership mismatch denies unconditionally.
	err := env.engine.Decide(Actor{StudentID: other.ID}, Scope{OwnerStudentID: owner.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	// The owner passes the ownership check but still needs an active
	// enrollment for subject scope.
	err = env.engine.Decide(Actor{StudentID: owner.ID}, Scope{SubjectID: subject.ID, OwnerStudentID: owner.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	enrollment := models.StudentOnSubject{
		StudentID: owner.ID,
		SubjectID: subject.ID,
		SchoolID:  school.ID,
		IsActive:  true,
	}
	require.NoError(t, env.db.Create(&enrollment).Error)
	require.NoError(t, env.engine.Decide(Actor{StudentID: owner.ID}, Scope{SubjectID: subject.ID, OwnerStudentID: owner.ID}))

	// Deactivated enrollments deny again.
	require.NoError(t, env.db.Model(&models.StudentOnSubject{}).
		Where("id = ?", enrollment.ID).
		Update("is_active", false).Error)
	err = env.engine.Decide(Actor{StudentID: owner.ID}, Scope{SubjectID: subject.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestEngine_Decide_StudentSchoolScope(t *testing.T) {
	env := setupEngineTestEnv(t)
	home := env.createSchool(t, "home")
	other := env.createSchool(t, "other")

	student := models.Student{SchoolID: home.ID, Title: "alice"}
	require.NoError(t, env.db.Create(&student).Error)

	require.NoError(t, env.engine.Decide(Actor{StudentID: student.ID}, Scope{SchoolID: home.ID}))

	err := env.engine.Decide(Actor{StudentID: student.ID}, Scope{SchoolID: other.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))

	err = env.engine.Decide(Actor{StudentID: student.ID}, Scope{SchoolID: 9999})
	require.True(t, apierrors.IsKind(err, apierrors.KindNotFound))

	err = env.engine.Decide(Actor{StudentID: 9999}, Scope{SchoolID: home.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestEngine_Decide_StudentTeamScopeDenies(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	team := models.Team{SchoolID: school.ID, Title: "staff"}
	require.NoError(t, env.db.Create(&team).Error)

	student := models.Student{SchoolID: school.ID, Title: "alice"}
	require.NoError(t, env.db.Create(&student).Error)

	err := env.engine.Decide(Actor{StudentID: student.ID}, Scope{TeamID: team.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestEngine_Decide_EnrollmentCreatedInactive(t *testing.T) {
	env := setupEngineTestEnv(t)
	school := env.createSchool(t, "school")
	subject := env.createSubject(t, school.ID, "math")

	student := models.Student{SchoolID: school.ID, Title: "alice"}
	require.NoError(t, env.db.Create(&student).Error)

	enrollment := models.StudentOnSubject{
		StudentID: student.ID,
		SubjectID: subject.ID,
		SchoolID:  school.ID,
		IsActive:  false,
	}
	require.NoError(t, env.db.Create(&enrollment).Error)

	// The false flag must survive the insert as written; a column default
	// must not overwrite it.
	var reloaded models.StudentOnSubject
	require.NoError(t, env.db.First(&reloaded, enrollment.ID).Error)
	require.False(t, reloaded.IsActive)

	err := env.engine.Decide(Actor{StudentID: student.ID}, Scope{SubjectID: subject.ID})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}

func TestEngine_Decide_NoActorIdentity(t *testing.T) {
	env := setupEngineTestEnv(t)

	err := env.engine.Decide(Actor{}, Scope{SchoolID: 1})
	require.True(t, apierrors.IsKind(err, apierrors.KindForbidden))
}
