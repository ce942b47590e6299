package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classhub/school-management-api/internal/dto"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/middleware"
	"github.com/classhub/school-management-api/internal/services"
)

// FileHandler coordinates file attachment HTTP handlers.
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// UploadAssignmentFile stores an uploaded file and attaches it to an
// assignment. The upload counts against the school's storage quota.
func (h *FileHandler) UploadAssignmentFile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read file")
		return
	}
	defer f.Close()

	file, err := h.fileService.UploadAssignmentFile(c.Request.Context(), services.UploadAssignmentFileInput{
		ActorID:      userID,
		AssignmentID: assignmentID,
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Reader:       f,
	})
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToFileOnAssignmentDTO(*file))
}

// AttachAssignmentLink attaches an external URL to an assignment. Links
// do not consume storage quota.
func (h *FileHandler) AttachAssignmentLink(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	type AttachLinkRequest struct {
		URL string `json:"url" binding:"required,url"`
	}

	var req AttachLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	file, err := h.fileService.AttachAssignmentLink(userID, assignmentID, req.URL)
	if err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToFileOnAssignmentDTO(*file))
}

// DeleteAssignmentFile removes a file reference, and the blob itself
// once no other reference shares its URL.
func (h *FileHandler) DeleteAssignmentFile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	fileID, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid file ID")
		return
	}

	if err := h.fileService.DeleteAssignmentFile(c.Request.Context(), userID, fileID); err != nil {
		apierrors.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
