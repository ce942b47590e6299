package models

import "time"

type MemberRole string

const (
	RoleAdmin   MemberRole = "ADMIN"
	RoleTeacher MemberRole = "TEACHER"
	RoleMember  MemberRole = "MEMBER"
)

type InviteStatus string

const (
	StatusPending InviteStatus = "PENDING"
	StatusAccept  InviteStatus = "ACCEPT"
	StatusReject  InviteStatus = "REJECT"
)

// IsTerminal reports whether an invitation status can no longer change.
// A new invitation row is required to re-offer access.
func (s InviteStatus) IsTerminal() bool {
	return s == StatusAccept || s == StatusReject
}

type SchoolMember struct {
	SchoolID  uint64       `gorm:"primarykey" json:"school_id"`
	UserID    uint64       `gorm:"primarykey" json:"user_id"`
	Role      MemberRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status    InviteStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	JoinedAt  time.Time    `json:"joined_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	School School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
