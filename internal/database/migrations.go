package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Membership lookups drive every access decision
		{"school_members", "idx_school_members_user_id", "user_id"},
		{"team_members", "idx_team_members_user_id", "user_id"},
		{"teacher_on_subjects", "idx_teacher_on_subjects_user_subject", "user_id, subject_id"},
		{"student_on_subjects", "idx_student_on_subjects_student", "student_id"},

		// Cascade deletion filters by owning id per collection
		{"subjects", "idx_subjects_school_id", "school_id"},
		{"assignments", "idx_assignments_subject_id", "subject_id"},
		{"student_on_assignments", "idx_student_on_assignments_assignment_id", "assignment_id"},
		{"attendance_tables", "idx_attendance_tables_subject_id", "subject_id"},
		{"attendance_rows", "idx_attendance_rows_table_id", "attendance_table_id"},
		{"attendances", "idx_attendances_row_id", "attendance_row_id"},

		// Reference counting scans file tables by url
		{"file_on_assignments", "idx_file_on_assignments_url", "url"},
		{"file_on_student_assignments", "idx_file_on_student_assignments_url", "url"},
		{"file_on_subjects", "idx_file_on_subjects_url", "url"},

		// School invite code index
		{"schools", "idx_schools_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
