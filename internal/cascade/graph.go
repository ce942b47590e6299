package cascade

import (
	"github.com/classhub/school-management-api/internal/models"
	"gorm.io/gorm"
)

// EntityKind names a deletable root entity.
type EntityKind string

const (
	KindSchool           EntityKind = "school"
	KindTeam             EntityKind = "team"
	KindSubject          EntityKind = "subject"
	KindAssignment       EntityKind = "assignment"
	KindStudentOnSubject EntityKind = "student_on_subject"
)

// collection describes one dependent table of a root entity: how to scope
// its rows to a given root id, and whether the rows carry file references
// that the storage tracker must see.
type collection struct {
	name     string
	model    any
	hasFiles bool
	scope    func(tx *gorm.DB, rootID uint64) *gorm.DB
}

// rootDescriptor drives the orchestrator for one entity kind. Collections
// are listed leaves-first: a collection deleted later never has a foreign
// key pointing into one deleted earlier.
type rootDescriptor struct {
	kind  EntityKind
	model any
	// resolve loads the root row and returns the owning school id.
	// found=false means the root is already gone (idempotent no-op).
	resolve func(tx *gorm.DB, id uint64) (schoolID uint64, found bool, err error)
	// ownsQuotaRow is set for the school root itself: the counter row is
	// deleted with the root, so no quota decrement applies.
	ownsQuotaRow bool
	collections  []collection
}

func byColumn(column string) func(tx *gorm.DB, rootID uint64) *gorm.DB {
	return func(tx *gorm.DB, rootID uint64) *gorm.DB {
		return tx.Where(column+" = ?", rootID)
	}
}

// Subquery builders. Each returns an id-select scoped to the root,
// suitable for IN clauses.

func workItemIDsOfAssignment(tx *gorm.DB, assignmentID uint64) *gorm.DB {
	return tx.Model(&models.StudentOnAssignment{}).Select("id").
		Where("assignment_id = ?", assignmentID)
}

func workItemIDsOfEnrollment(tx *gorm.DB, studentOnSubjectID uint64) *gorm.DB {
	return tx.Model(&models.StudentOnAssignment{}).Select("id").
		Where("student_on_subject_id = ?", studentOnSubjectID)
}

func subjectIDsOfSchool(tx *gorm.DB, schoolID uint64) *gorm.DB {
	return tx.Model(&models.Subject{}).Select("id").Where("school_id = ?", schoolID)
}

func teamIDsOfSchool(tx *gorm.DB, schoolID uint64) *gorm.DB {
	return tx.Model(&models.Team{}).Select("id").Where("school_id = ?", schoolID)
}

// subjectCollections is the dependent-table order for a subject subtree,
// scoped by a subject id select (either a single id or an id subquery per
// school). The same order serves the subject root and the school root.
func subjectCollections(subjectScope func(tx *gorm.DB, rootID uint64) *gorm.DB) []collection {
	return []collection{
		{
			name:  "attendances",
			model: &models.Attendance{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				rows := tx.Model(&models.AttendanceRow{}).Select("id").
					Where("attendance_table_id IN (?)",
						tx.Model(&models.AttendanceTable{}).Select("id").
							Where("subject_id IN (?)", subjectScope(tx, rootID)))
				return tx.Where("attendance_row_id IN (?)", rows)
			},
		},
		{
			name:  "attendance_rows",
			model: &models.AttendanceRow{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("attendance_table_id IN (?)",
					tx.Model(&models.AttendanceTable{}).Select("id").
						Where("subject_id IN (?)", subjectScope(tx, rootID)))
			},
		},
		{
			name:  "attendance_tables",
			model: &models.AttendanceTable{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:  "score_on_students",
			model: &models.ScoreOnStudent{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:  "score_on_subjects",
			model: &models.ScoreOnSubject{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:  "comment_on_assignments",
			model: &models.CommentOnAssignment{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				items := tx.Model(&models.StudentOnAssignment{}).Select("id").
					Where("assignment_id IN (?)",
						tx.Model(&models.Assignment{}).Select("id").
							Where("subject_id IN (?)", subjectScope(tx, rootID)))
				return tx.Where("student_on_assignment_id IN (?)", items)
			},
		},
		{
			name:     "file_on_student_assignments",
			model:    &models.FileOnStudentAssignment{},
			hasFiles: true,
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				items := tx.Model(&models.StudentOnAssignment{}).Select("id").
					Where("assignment_id IN (?)",
						tx.Model(&models.Assignment{}).Select("id").
							Where("subject_id IN (?)", subjectScope(tx, rootID)))
				return tx.Where("student_on_assignment_id IN (?)", items)
			},
		},
		{
			name:  "student_on_assignments",
			model: &models.StudentOnAssignment{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("assignment_id IN (?)",
					tx.Model(&models.Assignment{}).Select("id").
						Where("subject_id IN (?)", subjectScope(tx, rootID)))
			},
		},
		{
			name:  "skill_on_assignments",
			model: &models.SkillOnAssignment{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("assignment_id IN (?)",
					tx.Model(&models.Assignment{}).Select("id").
						Where("subject_id IN (?)", subjectScope(tx, rootID)))
			},
		},
		{
			name:     "file_on_assignments",
			model:    &models.FileOnAssignment{},
			hasFiles: true,
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("assignment_id IN (?)",
					tx.Model(&models.Assignment{}).Select("id").
						Where("subject_id IN (?)", subjectScope(tx, rootID)))
			},
		},
		{
			name:  "assignments",
			model: &models.Assignment{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:  "student_on_subjects",
			model: &models.StudentOnSubject{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:  "teacher_on_subjects",
			model: &models.TeacherOnSubject{},
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
		{
			name:     "file_on_subjects",
			model:    &models.FileOnSubject{},
			hasFiles: true,
			scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
				return tx.Where("subject_id IN (?)", subjectScope(tx, rootID))
			},
		},
	}
}

// graph holds a descriptor per supported root kind.
var graph = map[EntityKind]*rootDescriptor{
	KindSubject: {
		kind:  KindSubject,
		model: &models.Subject{},
		resolve: func(tx *gorm.DB, id uint64) (uint64, bool, error) {
			var subject models.Subject
			if err := tx.First(&subject, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return 0, false, nil
				}
				return 0, false, err
			}
			return subject.SchoolID, true, nil
		},
		collections: subjectCollections(func(tx *gorm.DB, rootID uint64) *gorm.DB {
			return tx.Model(&models.Subject{}).Select("id").Where("id = ?", rootID)
		}),
	},

	KindAssignment: {
		kind:  KindAssignment,
		model: &models.Assignment{},
		resolve: func(tx *gorm.DB, id uint64) (uint64, bool, error) {
			var assignment models.Assignment
			if err := tx.First(&assignment, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return 0, false, nil
				}
				return 0, false, err
			}
			return assignment.SchoolID, true, nil
		},
		collections: []collection{
			{
				name:  "comment_on_assignments",
				model: &models.CommentOnAssignment{},
				scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
					return tx.Where("student_on_assignment_id IN (?)", workItemIDsOfAssignment(tx, rootID))
				},
			},
			{
				name:     "file_on_student_assignments",
				model:    &models.FileOnStudentAssignment{},
				hasFiles: true,
				scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
					return tx.Where("student_on_assignment_id IN (?)", workItemIDsOfAssignment(tx, rootID))
				},
			},
			{
				name:  "student_on_assignments",
				model: &models.StudentOnAssignment{},
				scope: byColumn("assignment_id"),
			},
			{
				name:  "skill_on_assignments",
				model: &models.SkillOnAssignment{},
				scope: byColumn("assignment_id"),
			},
			{
				name:     "file_on_assignments",
				model:    &models.FileOnAssignment{},
				hasFiles: true,
				scope:    byColumn("assignment_id"),
			},
		},
	},

	KindStudentOnSubject: {
		kind:  KindStudentOnSubject,
		model: &models.StudentOnSubject{},
		resolve: func(tx *gorm.DB, id uint64) (uint64, bool, error) {
			var enrollment models.StudentOnSubject
			if err := tx.First(&enrollment, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return 0, false, nil
				}
				return 0, false, err
			}
			return enrollment.SchoolID, true, nil
		},
		collections: []collection{
			{
				name:  "attendances",
				model: &models.Attendance{},
				scope: byColumn("student_on_subject_id"),
			},
			{
				name:  "score_on_students",
				model: &models.ScoreOnStudent{},
				scope: byColumn("student_on_subject_id"),
			},
			{
				name:  "comment_on_assignments",
				model: &models.CommentOnAssignment{},
				scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
					return tx.Where("student_on_assignment_id IN (?)", workItemIDsOfEnrollment(tx, rootID))
				},
			},
			{
				name:     "file_on_student_assignments",
				model:    &models.FileOnStudentAssignment{},
				hasFiles: true,
				scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
					return tx.Where("student_on_assignment_id IN (?)", workItemIDsOfEnrollment(tx, rootID))
				},
			},
			{
				name:  "student_on_assignments",
				model: &models.StudentOnAssignment{},
				scope: byColumn("student_on_subject_id"),
			},
		},
	},

	KindTeam: {
		kind:  KindTeam,
		model: &models.Team{},
		resolve: func(tx *gorm.DB, id uint64) (uint64, bool, error) {
			var team models.Team
			if err := tx.First(&team, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return 0, false, nil
				}
				return 0, false, err
			}
			return team.SchoolID, true, nil
		},
		collections: []collection{
			{
				name:  "team_members",
				model: &models.TeamMember{},
				scope: byColumn("team_id"),
			},
		},
	},

	KindSchool: {
		kind:         KindSchool,
		model:        &models.School{},
		ownsQuotaRow: true,
		resolve: func(tx *gorm.DB, id uint64) (uint64, bool, error) {
			var school models.School
			if err := tx.First(&school, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return 0, false, nil
				}
				return 0, false, err
			}
			return school.ID, true, nil
		},
		collections: append(
			subjectCollections(subjectIDsOfSchool),
			collection{
				name:  "subjects",
				model: &models.Subject{},
				scope: byColumn("school_id"),
			},
			collection{
				name:  "team_members",
				model: &models.TeamMember{},
				scope: func(tx *gorm.DB, rootID uint64) *gorm.DB {
					return tx.Where("team_id IN (?)", teamIDsOfSchool(tx, rootID))
				},
			},
			collection{
				name:  "teams",
				model: &models.Team{},
				scope: byColumn("school_id"),
			},
			collection{
				name:  "students",
				model: &models.Student{},
				scope: byColumn("school_id"),
			},
			collection{
				name:  "school_members",
				model: &models.SchoolMember{},
				scope: byColumn("school_id"),
			},
		),
	},
}
