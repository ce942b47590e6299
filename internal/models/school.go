package models

import (
	"time"
)

type School struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	InviteCode  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	// Storage accounting, in bytes. StorageUsed is mutated only through
	// atomic increments (see storage.Tracker.AdjustQuota).
	StorageUsed  int64     `gorm:"not null;default:0" json:"storage_used"`
	StorageLimit int64     `gorm:"not null" json:"storage_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Members  []SchoolMember `gorm:"foreignKey:SchoolID" json:"members,omitempty"`
	Subjects []Subject      `gorm:"foreignKey:SchoolID" json:"subjects,omitempty"`
	Teams    []Team         `gorm:"foreignKey:SchoolID" json:"teams,omitempty"`
}
