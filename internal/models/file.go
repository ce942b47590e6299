package models

import "time"

type FileType string

const (
	FileTypeFile FileType = "FILE"
	FileTypeLink FileType = "LINK"
)

// File reference rows point at a blob in external storage by URL. Rows in
// different tables may share one URL (uploads are deliberately
// deduplicated); the blob is physically deleted only when no row anywhere
// still carries its URL.

type FileOnAssignment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	AssignmentID uint64    `gorm:"not null;index" json:"assignment_id"`
	URL          string    `gorm:"type:text;not null;index" json:"url"`
	Size         int64     `gorm:"not null" json:"size"`
	Type         FileType  `gorm:"type:varchar(10);not null;default:'FILE'" json:"type"`
	CreatedAt    time.Time `json:"created_at"`
}

type FileOnStudentAssignment struct {
	ID                    uint64    `gorm:"primarykey" json:"id"`
	StudentOnAssignmentID uint64    `gorm:"not null;index" json:"student_on_assignment_id"`
	URL                   string    `gorm:"type:text;not null;index" json:"url"`
	Size                  int64     `gorm:"not null" json:"size"`
	Type                  FileType  `gorm:"type:varchar(10);not null;default:'FILE'" json:"type"`
	CreatedAt             time.Time `json:"created_at"`
}

type FileOnSubject struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	SubjectID uint64    `gorm:"not null;index" json:"subject_id"`
	URL       string    `gorm:"type:text;not null;index" json:"url"`
	Size      int64     `gorm:"not null" json:"size"`
	Type      FileType  `gorm:"type:varchar(10);not null;default:'FILE'" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
