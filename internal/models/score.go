package models

import "time"

// ScoreOnSubject is a score category a teacher defines for a subject,
// e.g. "participation" worth 5 points.
type ScoreOnSubject struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	SubjectID uint64    `gorm:"not null;index" json:"subject_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Score     float64   `json:"score"`
	Icon      string    `gorm:"type:varchar(255)" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreOnStudent is one awarded instance of a score category.
type ScoreOnStudent struct {
	ID                 uint64    `gorm:"primarykey" json:"id"`
	ScoreOnSubjectID   uint64    `gorm:"not null;index" json:"score_on_subject_id"`
	StudentOnSubjectID uint64    `gorm:"not null;index" json:"student_on_subject_id"`
	SubjectID          uint64    `gorm:"not null;index" json:"subject_id"`
	Score              float64   `json:"score"`
	CreatedAt          time.Time `json:"created_at"`
}
