package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classhub/school-management-api/internal/dto"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/middleware"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/services"
	"github.com/classhub/school-management-api/internal/utils"
)

// SchoolHandler coordinates school and membership HTTP handlers.
type SchoolHandler struct {
	schoolService     *services.SchoolService
	membershipService *services.MembershipService
}

// NewSchoolHandler creates a new SchoolHandler.
func NewSchoolHandler(schoolService *services.SchoolService, membershipService *services.MembershipService) *SchoolHandler {
	return &SchoolHandler{
		schoolService:     schoolService,
		membershipService: membershipService,
	}
}

// CreateSchool creates a new school with the caller as admin.
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateSchoolRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	school, err := h.schoolService.CreateSchool(services.CreateSchoolInput{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidSchoolTitle) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSchoolDTO(*school, true))
}

// ListSchools returns the schools the caller belongs to, with role and
// invitation status.
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	memberships, total, err := h.schoolService.ListSchoolsForUser(userID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch schools")
		return
	}

	schools := make([]dto.SchoolWithRoleDTO, len(memberships))
	for i, m := range memberships {
		schools[i] = dto.ToSchoolWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"schools": schools,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetSchool returns school details including members.
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	school, members, err := h.schoolService.GetSchoolWithMembers(userID, schoolID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	var yourRole models.MemberRole
	for _, m := range members {
		if m.UserID == userID {
			yourRole = m.Role
			break
		}
	}

	c.JSON(http.StatusOK, dto.ToSchoolDetailDTO(*school, members, yourRole))
}

// UpdateSchool updates a school's title and description.
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	type UpdateSchoolRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	school, err := h.schoolService.UpdateSchool(userID, schoolID, req.Title, req.Description)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolDTO(*school, true))
}

// DeleteSchool removes a school and everything under it.
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	summary, err := h.schoolService.DeleteSchool(c.Request.Context(), userID, schoolID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "School deleted successfully",
		"rows_deleted": summary.TotalRows(),
	})
}

// RegenerateInviteCode replaces the school's invite code.
func (h *SchoolHandler) RegenerateInviteCode(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	school, err := h.schoolService.RegenerateInviteCode(userID, schoolID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invite_code": school.InviteCode})
}

// JoinSchool adds the caller to a school via invite code.
func (h *SchoolHandler) JoinSchool(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	school, err := h.membershipService.JoinByInviteCode(userID, req.InviteCode)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolDTO(*school, false))
}

// InviteMember invites a user into the school with a role.
func (h *SchoolHandler) InviteMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	type InviteRequest struct {
		UserID uint64            `json:"user_id" binding:"required"`
		Role   models.MemberRole `json:"role" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.InviteMember(userID, schoolID, req.UserID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSchoolMemberDTO(*member))
}

// RespondToInvitation accepts or rejects the caller's pending school
// invitation.
func (h *SchoolHandler) RespondToInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	schoolID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid school ID")
		return
	}

	type RespondRequest struct {
		Accept *bool `json:"accept" binding:"required"`
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.RespondToInvitation(userID, schoolID, *req.Accept)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolMemberDTO(*member))
}

// ChangeMemberRole updates a member's role.
func (h *SchoolHandler) ChangeMemberRole(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type ChangeRoleRequest struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.ChangeRole(userID, schoolID, targetID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolMemberDTO(*member))
}

// RemoveMember removes a member and all of their per-school records.
func (h *SchoolHandler) RemoveMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	summary, err := h.membershipService.RemoveMember(c.Request.Context(), userID, schoolID, targetID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Member removed successfully",
		"rows_deleted": summary.TotalRows(),
	})
}
