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
)

// SubjectHandler coordinates subject and enrollment HTTP handlers.
type SubjectHandler struct {
	subjectService *services.SubjectService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjectService *services.SubjectService) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
	}
}

func subjectIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("subject_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subject ID")
		return 0, false
	}
	return id, true
}

// CreateSubject creates a subject in the school named in the URL.
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	schoolID, _ := middleware.GetSchoolID(c)

	type CreateSubjectRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subject, err := h.subjectService.CreateSubject(services.CreateSubjectInput{
		ActorID:     userID,
		SchoolID:    schoolID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidSubjectTitle) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubjectDTO(*subject))
}

// GetSubject returns a subject's details.
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	subject, err := h.subjectService.GetSubject(userID, subjectID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectDTO(*subject))
}

// UpdateSubject updates a subject's title and description.
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	type UpdateSubjectRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subject, err := h.subjectService.UpdateSubject(userID, subjectID, req.Title, req.Description)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectDTO(*subject))
}

// SetSubjectLock locks or unlocks a subject.
func (h *SubjectHandler) SetSubjectLock(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	type LockRequest struct {
		Locked *bool `json:"locked" binding:"required"`
	}

	var req LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subject, err := h.subjectService.SetLocked(userID, subjectID, *req.Locked)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectDTO(*subject))
}

// DeleteSubject removes a subject and everything under it.
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	summary, err := h.subjectService.DeleteSubject(c.Request.Context(), userID, subjectID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Subject deleted successfully",
		"rows_deleted":    summary.TotalRows(),
		"bytes_reclaimed": summary.BytesReclaimed,
	})
}

// EnrollTeacher invites a staff member onto a subject.
func (h *SubjectHandler) EnrollTeacher(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	type EnrollRequest struct {
		UserID uint64            `json:"user_id" binding:"required"`
		Role   models.MemberRole `json:"role" binding:"required"`
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	enrollment, err := h.subjectService.EnrollTeacher(userID, subjectID, req.UserID, req.Role)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeacherOnSubjectDTO(*enrollment))
}

// RespondToEnrollment accepts or rejects the caller's pending subject
// enrollment.
func (h *SubjectHandler) RespondToEnrollment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
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

	enrollment, err := h.subjectService.RespondToEnrollment(userID, subjectID, *req.Accept)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeacherOnSubjectDTO(*enrollment))
}

// AddStudent enrolls a student onto a subject.
func (h *SubjectHandler) AddStudent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	type AddStudentRequest struct {
		StudentID uint64 `json:"student_id" binding:"required"`
	}

	var req AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	enrollment, err := h.subjectService.AddStudent(userID, subjectID, req.StudentID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStudentOnSubjectDTO(*enrollment))
}

// RemoveStudent removes a student from a subject along with their work.
func (h *SubjectHandler) RemoveStudent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	studentID, err := strconv.ParseUint(c.Param("student_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid student ID")
		return
	}

	summary, err := h.subjectService.RemoveStudent(c.Request.Context(), userID, subjectID, studentID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Student removed successfully",
		"rows_deleted": summary.TotalRows(),
	})
}
