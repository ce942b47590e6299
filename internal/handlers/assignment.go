package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classhub/school-management-api/internal/access"
	"github.com/classhub/school-management-api/internal/dto"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/middleware"
	"github.com/classhub/school-management-api/internal/services"
)

// AssignmentHandler coordinates assignment and work item HTTP handlers.
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

func assignmentIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("assignment_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid assignment ID")
		return 0, false
	}
	return id, true
}

// CreateAssignment creates an assignment on a subject.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}

	type CreateAssignmentRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		MaxScore    float64    `json:"max_score"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(services.CreateAssignmentInput{
		ActorID:     userID,
		SubjectID:   subjectID,
		Title:       req.Title,
		Description: req.Description,
		MaxScore:    req.MaxScore,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidAssignmentTitle) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// GetAssignment returns an assignment's details.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignment(access.Actor{UserID: userID}, assignmentID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// AssignStudents creates work items for the given subject enrollments.
func (h *AssignmentHandler) AssignStudents(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	type AssignRequest struct {
		StudentOnSubjectIDs []uint64 `json:"student_on_subject_ids" binding:"required,min=1"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.assignmentService.AssignStudents(userID, assignmentID, req.StudentOnSubjectIDs); err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Students assigned successfully"})
}

// SubmitWork records a student's submission on their work item. Students
// do not hold accounts; staff record submissions on the student's behalf
// and the ownership check runs against the named student.
func (h *AssignmentHandler) SubmitWork(c *gin.Context) {
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	type SubmitRequest struct {
		StudentID uint64 `json:"student_id" binding:"required"`
		Body      string `json:"body"`
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.assignmentService.SubmitWork(req.StudentID, assignmentID, req.Body)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// GradeWork sets the score on a work item.
func (h *AssignmentHandler) GradeWork(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	workItemID, err := strconv.ParseUint(c.Param("work_item_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid work item ID")
		return
	}

	type GradeRequest struct {
		Score *float64 `json:"score" binding:"required"`
	}

	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.assignmentService.GradeWork(userID, workItemID, *req.Score)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteAssignment removes an assignment and everything under it.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	summary, err := h.assignmentService.DeleteAssignment(c.Request.Context(), userID, assignmentID)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Assignment deleted successfully",
		"rows_deleted":    summary.TotalRows(),
		"bytes_reclaimed": summary.BytesReclaimed,
	})
}
