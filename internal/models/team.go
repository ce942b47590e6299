package models

import "time"

type Team struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	SchoolID    uint64    `gorm:"not null;index" json:"school_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	School  School       `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

type TeamMember struct {
	TeamID    uint64       `gorm:"primarykey" json:"team_id"`
	UserID    uint64       `gorm:"primarykey" json:"user_id"`
	SchoolID  uint64       `gorm:"not null;index" json:"school_id"`
	Role      MemberRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status    InviteStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	JoinedAt  time.Time    `json:"joined_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
