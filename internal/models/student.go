package models

import "time"

// Student is a school-owned identity. Students do not hold staff
// accounts; they are created and managed by school staff.
type Student struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	SchoolID  uint64    `gorm:"not null;index" json:"school_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Number    string    `gorm:"type:varchar(50)" json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	School School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}
