package dto

import (
	"time"

	"github.com/classhub/school-management-api/internal/models"
)

// SchoolDTO represents a school in API responses
type SchoolDTO struct {
	ID           uint64 `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InviteCode   string `json:"invite_code,omitempty"`
	StorageUsed  int64  `json:"storage_used"`
	StorageLimit int64  `json:"storage_limit"`
}

// SchoolWithRoleDTO represents a school with the user's role and status
type SchoolWithRoleDTO struct {
	SchoolDTO
	Role   models.MemberRole   `json:"role"`
	Status models.InviteStatus `json:"status"`
}

// SchoolMemberDTO represents a member in a school
type SchoolMemberDTO struct {
	User     UserDTO             `json:"user"`
	Role     models.MemberRole   `json:"role"`
	Status   models.InviteStatus `json:"status"`
	JoinedAt time.Time           `json:"joined_at"`
}

// SchoolDetailDTO represents detailed school information
type SchoolDetailDTO struct {
	SchoolDTO
	Members  []SchoolMemberDTO `json:"members"`
	YourRole models.MemberRole `json:"your_role"`
}

// ToSchoolDTO converts a school to DTO. The invite code is only exposed
// to members.
func ToSchoolDTO(school models.School, includeInviteCode bool) SchoolDTO {
	dto := SchoolDTO{
		ID:           school.ID,
		Title:        school.Title,
		Description:  school.Description,
		StorageUsed:  school.StorageUsed,
		StorageLimit: school.StorageLimit,
	}
	if includeInviteCode {
		dto.InviteCode = school.InviteCode
	}
	return dto
}

// ToSchoolWithRoleDTO converts a school membership to DTO with role
func ToSchoolWithRoleDTO(member models.SchoolMember) SchoolWithRoleDTO {
	return SchoolWithRoleDTO{
		SchoolDTO: ToSchoolDTO(member.School, false),
		Role:      member.Role,
		Status:    member.Status,
	}
}

// ToSchoolMemberDTO converts a member to DTO
func ToSchoolMemberDTO(member models.SchoolMember) SchoolMemberDTO {
	return SchoolMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		Status:   member.Status,
		JoinedAt: member.JoinedAt,
	}
}

// ToSchoolDetailDTO converts a school with members to detailed DTO
func ToSchoolDetailDTO(school models.School, members []models.SchoolMember, yourRole models.MemberRole) SchoolDetailDTO {
	memberDTOs := make([]SchoolMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToSchoolMemberDTO(member)
	}

	return SchoolDetailDTO{
		SchoolDTO: ToSchoolDTO(school, true),
		Members:   memberDTOs,
		YourRole:  yourRole,
	}
}
