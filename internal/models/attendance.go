package models

import "time"

type AttendanceTable struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	SubjectID   uint64    `gorm:"not null;index" json:"subject_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Rows []AttendanceRow `gorm:"foreignKey:AttendanceTableID" json:"rows,omitempty"`
}

type AttendanceRow struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	AttendanceTableID uint64    `gorm:"not null;index" json:"attendance_table_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Note              string    `gorm:"type:text" json:"note"`
	CreatedAt         time.Time `json:"created_at"`

	// Relations
	Attendances []Attendance `gorm:"foreignKey:AttendanceRowID" json:"attendances,omitempty"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceSick    AttendanceStatus = "SICK"
	AttendanceHoliday AttendanceStatus = "HOLIDAY"
)

type Attendance struct {
	ID                 uint64           `gorm:"primarykey" json:"id"`
	AttendanceRowID    uint64           `gorm:"not null;index" json:"attendance_row_id"`
	StudentOnSubjectID uint64           `gorm:"not null;index" json:"student_on_subject_id"`
	Status             AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note               string           `gorm:"type:text" json:"note"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
