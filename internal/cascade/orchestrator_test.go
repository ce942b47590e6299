package cascade

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/storage"
)

// fakeBlobStore records deletes so tests can assert on the physical
// cleanup that runs after commit.
type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeBlobStore) Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error) {
	return fmt.Sprintf("http://blobs/test/%s", path), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeBlobStore) deletedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type cascadeTestEnv struct {
	db           *gorm.DB
	blobs        *fakeBlobStore
	orchestrator *Orchestrator
}

func setupCascadeTestEnv(t *testing.T) cascadeTestEnv {
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

	blobs := &fakeBlobStore{}
	logger := zap.NewNop()
	tracker := storage.NewTracker(db, logger)

	return cascadeTestEnv{
		db:           db,
		blobs:        blobs,
		orchestrator: NewOrchestrator(db, tracker, blobs, logger),
	}
}

func (env cascadeTestEnv) createSchool(t *testing.T, used int64) models.School {
	t.Helper()
	school := models.School{
		Title:        "school",
		InviteCode:   fmt.Sprintf("code-%d", time.Now().UnixNano()),
		StorageUsed:  used,
		StorageLimit: 1 << 30,
	}
	require.NoError(t, env.db.Create(&school).Error)
	return school
}

func (env cascadeTestEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}

func (env cascadeTestEnv) storageUsed(t *testing.T, schoolID uint64) int64 {
	t.Helper()
	var school models.School
	require.NoError(t, env.db.First(&school, schoolID).Error)
	return school.StorageUsed
}

// seedSubjectTree builds one subject with a full dependent subtree: an
// assignment with a work item, comment, skill and files, plus attendance
// and score rows. Returns the subject and the total FILE bytes attached.
func (env cascadeTestEnv) seedSubjectTree(t *testing.T, schoolID uint64) (models.Subject, int64) {
	t.Helper()

	subject := models.Subject{SchoolID: schoolID, Title: "math"}
	require.NoError(t, env.db.Create(&subject).Error)

	teacher := models.User{Username: fmt.Sprintf("teacher-%d", time.Now().UnixNano()), PasswordHash: "x"}
	require.NoError(t, env.db.Create(&teacher).Error)
	require.NoError(t, env.db.Create(&models.TeacherOnSubject{
		UserID: teacher.ID, SubjectID: subject.ID, SchoolID: schoolID,
		Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	student := models.Student{SchoolID: schoolID, Title: "alice"}
	require.NoError(t, env.db.Create(&student).Error)
	enrollment := models.StudentOnSubject{
		StudentID: student.ID, SubjectID: subject.ID, SchoolID: schoolID, IsActive: true,
	}
	require.NoError(t, env.db.Create(&enrollment).Error)

	assignment := models.Assignment{SubjectID: subject.ID, SchoolID: schoolID, Title: "homework"}
	require.NoError(t, env.db.Create(&assignment).Error)

	workItem := models.StudentOnAssignment{
		StudentOnSubjectID: enrollment.ID, AssignmentID: assignment.ID,
		StudentID: student.ID, IsAssigned: true,
	}
	require.NoError(t, env.db.Create(&workItem).Error)

	require.NoError(t, env.db.Create(&models.CommentOnAssignment{
		StudentOnAssignmentID: workItem.ID, UserID: &teacher.ID, Content: "good work",
	}).Error)
	require.NoError(t, env.db.Create(&models.SkillOnAssignment{
		AssignmentID: assignment.ID, Title: "algebra", Weight: 1,
	}).Error)

	require.NoError(t, env.db.Create(&models.FileOnAssignment{
		AssignmentID: assignment.ID,
		URL:          fmt.Sprintf("http://blobs/test/a-%d", subject.ID),
		Size:         100, Type: models.FileTypeFile,
	}).Error)
	require.NoError(t, env.db.Create(&models.FileOnStudentAssignment{
		StudentOnAssignmentID: workItem.ID,
		URL:                   fmt.Sprintf("http://blobs/test/s-%d", subject.ID),
		Size:                  50, Type: models.FileTypeFile,
	}).Error)
	require.NoError(t, env.db.Create(&models.FileOnSubject{
		SubjectID: subject.ID,
		URL:       "https://example.com/syllabus",
		Size:      0, Type: models.FileTypeLink,
	}).Error)

	table := models.AttendanceTable{SubjectID: subject.ID, Title: "term 1"}
	require.NoError(t, env.db.Create(&table).Error)
	row := models.AttendanceRow{AttendanceTableID: table.ID}
	require.NoError(t, env.db.Create(&row).Error)
	require.NoError(t, env.db.Create(&models.Attendance{
		AttendanceRowID: row.ID, StudentOnSubjectID: enrollment.ID, Status: models.AttendancePresent,
	}).Error)

	category := models.ScoreOnSubject{SubjectID: subject.ID, Title: "participation", Score: 5}
	require.NoError(t, env.db.Create(&category).Error)
	require.NoError(t, env.db.Create(&models.ScoreOnStudent{
		ScoreOnSubjectID: category.ID, StudentOnSubjectID: enrollment.ID,
		SubjectID: subject.ID, Score: 5,
	}).Error)

	return subject, 150
}

func TestOrchestrator_DeleteSubject_RemovesWholeSubtree(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 150)
	subject, fileBytes := env.seedSubjectTree(t, school.ID)

	summary, err := env.orchestrator.DeleteWithCascade(context.Background(), KindSubject, subject.ID)
	require.NoError(t, err)

	expected := map[string]int64{
		"attendances":                 1,
		"attendance_rows":             1,
		"attendance_tables":           1,
		"score_on_students":           1,
		"score_on_subjects":           1,
		"comment_on_assignments":      1,
		"file_on_student_assignments": 1,
		"student_on_assignments":      1,
		"skill_on_assignments":        1,
		"file_on_assignments":         1,
		"assignments":                 1,
		"student_on_subjects":         1,
		"teacher_on_subjects":         1,
		"file_on_subjects":            1,
		"subject":                     1,
	}
	require.Equal(t, expected, summary.RowsDeleted)
	require.Equal(t, fileBytes, summary.BytesReclaimed)

	// Only FILE-type references trigger physical deletes; the LINK row is
	// removed without touching the blob store.
	require.Equal(t, 2, summary.BlobsDeleted)
	require.Eventually(t, func() bool {
		return len(env.blobs.deletedURLs()) == 2
	}, time.Second, 10*time.Millisecond)
	require.NotContains(t, env.blobs.deletedURLs(), "https://example.com/syllabus")

	// The quota counter returns to zero.
	require.Equal(t, int64(0), env.storageUsed(t, school.ID))

	// Every dependent table is empty.
	require.Zero(t, env.count(t, &models.Assignment{}))
	require.Zero(t, env.count(t, &models.StudentOnAssignment{}))
	require.Zero(t, env.count(t, &models.Attendance{}))
	require.Zero(t, env.count(t, &models.FileOnAssignment{}))
	require.Zero(t, env.count(t, &models.Subject{}))
}

func TestOrchestrator_DeleteSubject_IsIdempotent(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 150)
	subject, _ := env.seedSubjectTree(t, school.ID)

	_, err := env.orchestrator.DeleteWithCascade(context.Background(), KindSubject, subject.ID)
	require.NoError(t, err)

	// A second run matches zero rows and succeeds with all-zero counts.
	summary, err := env.orchestrator.DeleteWithCascade(context.Background(), KindSubject, subject.ID)
	require.NoError(t, err)
	require.Zero(t, summary.TotalRows())
	require.Zero(t, summary.BytesReclaimed)
	require.Zero(t, summary.BlobsDeleted)

	// The quota counter is not decremented twice.
	require.Equal(t, int64(0), env.storageUsed(t, school.ID))
}

func TestOrchestrator_SharedURL_BlobSurvivesUntilLastReference(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 200)

	subject := models.Subject{SchoolID: school.ID, Title: "math"}
	require.NoError(t, env.db.Create(&subject).Error)

	sharedURL := "http://blobs/test/shared"
	var assignments [2]models.Assignment
	for i := range assignments {
		assignments[i] = models.Assignment{SubjectID: subject.ID, SchoolID: school.ID, Title: fmt.Sprintf("hw-%d", i)}
		require.NoError(t, env.db.Create(&assignments[i]).Error)
		require.NoError(t, env.db.Create(&models.FileOnAssignment{
			AssignmentID: assignments[i].ID, URL: sharedURL, Size: 100, Type: models.FileTypeFile,
		}).Error)
	}

	// Deleting the first assignment reclaims its bytes but keeps the blob:
	// the second assignment still references the URL.
	summary, err := env.orchestrator.DeleteWithCascade(context.Background(), KindAssignment, assignments[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), summary.BytesReclaimed)
	require.Zero(t, summary.BlobsDeleted)
	require.Equal(t, int64(100), env.storageUsed(t, school.ID))

	// Deleting the second one orphans the URL; the blob is deleted once.
	summary, err = env.orchestrator.DeleteWithCascade(context.Background(), KindAssignment, assignments[1].ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), summary.BytesReclaimed)
	require.Equal(t, 1, summary.BlobsDeleted)
	require.Equal(t, int64(0), env.storageUsed(t, school.ID))

	require.Eventually(t, func() bool {
		return len(env.blobs.deletedURLs()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{sharedURL}, env.blobs.deletedURLs())
}

func TestOrchestrator_DeleteSchool_SkipsQuotaDecrement(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 150)
	env.seedSubjectTree(t, school.ID)

	user := models.User{Username: "admin", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&user).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: user.ID, Role: models.RoleAdmin, Status: models.StatusAccept,
	}).Error)
	team := models.Team{SchoolID: school.ID, Title: "grade-1"}
	require.NoError(t, env.db.Create(&team).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{
		TeamID: team.ID, UserID: user.ID, SchoolID: school.ID,
		Role: models.RoleMember, Status: models.StatusAccept,
	}).Error)

	summary, err := env.orchestrator.DeleteWithCascade(context.Background(), KindSchool, school.ID)
	require.NoError(t, err)

	// The counter row went down with the school; there is nothing left to
	// decrement, but the blobs are still reclaimed.
	require.Equal(t, int64(150), summary.BytesReclaimed)
	require.Equal(t, 2, summary.BlobsDeleted)
	require.Equal(t, int64(1), summary.RowsDeleted["school"])
	require.Equal(t, int64(1), summary.RowsDeleted["subjects"])
	require.Equal(t, int64(1), summary.RowsDeleted["teams"])
	require.Equal(t, int64(1), summary.RowsDeleted["team_members"])
	require.Equal(t, int64(1), summary.RowsDeleted["school_members"])
	require.Equal(t, int64(1), summary.RowsDeleted["students"])

	require.Zero(t, env.count(t, &models.School{}))
	require.Zero(t, env.count(t, &models.Subject{}))
	require.Zero(t, env.count(t, &models.SchoolMember{}))
	require.Zero(t, env.count(t, &models.Student{}))
}

func TestOrchestrator_DeleteStudentEnrollment_RemovesWorkOnly(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 150)
	subject, _ := env.seedSubjectTree(t, school.ID)

	var enrollment models.StudentOnSubject
	require.NoError(t, env.db.Where("subject_id = ?", subject.ID).First(&enrollment).Error)

	summary, err := env.orchestrator.DeleteWithCascade(context.Background(), KindStudentOnSubject, enrollment.ID)
	require.NoError(t, err)

	require.Equal(t, int64(1), summary.RowsDeleted["attendances"])
	require.Equal(t, int64(1), summary.RowsDeleted["score_on_students"])
	require.Equal(t, int64(1), summary.RowsDeleted["comment_on_assignments"])
	require.Equal(t, int64(1), summary.RowsDeleted["file_on_student_assignments"])
	require.Equal(t, int64(1), summary.RowsDeleted["student_on_assignments"])
	require.Equal(t, int64(1), summary.RowsDeleted["student_on_subject"])
	require.Equal(t, int64(50), summary.BytesReclaimed)

	// The subject, its assignment, and its own files are untouched.
	require.Equal(t, int64(1), env.count(t, &models.Subject{}))
	require.Equal(t, int64(1), env.count(t, &models.Assignment{}))
	require.Equal(t, int64(1), env.count(t, &models.FileOnAssignment{}))
	require.Equal(t, int64(100), env.storageUsed(t, school.ID))
}

func TestOrchestrator_DeleteMemberCascade(t *testing.T) {
	env := setupCascadeTestEnv(t)
	school := env.createSchool(t, 0)

	user := models.User{Username: "leaver", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&user).Error)
	require.NoError(t, env.db.Create(&models.SchoolMember{
		SchoolID: school.ID, UserID: user.ID, Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	subject := models.Subject{SchoolID: school.ID, Title: "math"}
	require.NoError(t, env.db.Create(&subject).Error)
	require.NoError(t, env.db.Create(&models.TeacherOnSubject{
		UserID: user.ID, SubjectID: subject.ID, SchoolID: school.ID,
		Role: models.RoleTeacher, Status: models.StatusAccept,
	}).Error)

	team := models.Team{SchoolID: school.ID, Title: "grade-1"}
	require.NoError(t, env.db.Create(&team).Error)
	require.NoError(t, env.db.Create(&models.TeamMember{
		TeamID: team.ID, UserID: user.ID, SchoolID: school.ID,
		Role: models.RoleMember, Status: models.StatusAccept,
	}).Error)

	summary, err := env.orchestrator.DeleteMemberCascade(context.Background(), school.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.RowsDeleted["school_members"])
	require.Equal(t, int64(1), summary.RowsDeleted["teacher_on_subjects"])
	require.Equal(t, int64(1), summary.RowsDeleted["team_members"])

	// The subject and team themselves survive.
	require.Equal(t, int64(1), env.count(t, &models.Subject{}))
	require.Equal(t, int64(1), env.count(t, &models.Team{}))
	require.Zero(t, env.count(t, &models.SchoolMember{}))
}

func TestOrchestrator_UnknownKindIsAnError(t *testing.T) {
	env := setupCascadeTestEnv(t)

	_, err := env.orchestrator.DeleteWithCascade(context.Background(), EntityKind("bogus"), 1)
	require.Error(t, err)
}
