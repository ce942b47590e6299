package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/classhub/school-management-api/internal/access"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/repository"
	"github.com/classhub/school-management-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService handles uploads and direct single-file deletes. Cascading
// file cleanup lives in the cascade orchestrator; this service covers the
// request paths where the user explicitly acts on one file.
type FileService struct {
	db             *gorm.DB
	fileRepo       repository.FileRepository
	assignmentRepo repository.AssignmentRepository
	tracker        *storage.Tracker
	blobs          storage.BlobStore
	engine         *access.Engine
	logger         *zap.Logger
}

// NewFileService creates a new FileService.
func NewFileService(
	db *gorm.DB,
	fileRepo repository.FileRepository,
	assignmentRepo repository.AssignmentRepository,
	tracker *storage.Tracker,
	blobs storage.BlobStore,
	engine *access.Engine,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		db:             db,
		fileRepo:       fileRepo,
		assignmentRepo: assignmentRepo,
		tracker:        tracker,
		blobs:          blobs,
		engine:         engine,
		logger:         logger,
	}
}

// UploadAssignmentFileInput represents an upload targeting an assignment.
type UploadAssignmentFileInput struct {
	ActorID      uint64
	AssignmentID uint64
	FileName     string
	ContentType  string
	Size         int64
	Reader       io.Reader
}

// UploadAssignmentFile stores a blob and creates the assignment file
// reference. The quota counter is incremented before the physical upload
// and compensated if the upload fails; a quota failure aborts the write.
func (s *FileService) UploadAssignmentFile(ctx context.Context, input UploadAssignmentFileInput) (*models.FileOnAssignment, error) {
	assignment, err := s.assignmentRepo.FindByID(input.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment not found")
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: input.ActorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return nil, err
	}

	if err := s.tracker.ReserveQuota(assignment.SchoolID, input.Size); err != nil {
		return nil, err
	}

	url, err := s.blobs.Put(ctx, fmt.Sprintf("assignments/%d", input.AssignmentID), input.Reader, input.Size, input.ContentType)
	if err != nil {
		if qerr := s.tracker.AdjustQuota(assignment.SchoolID, -input.Size); qerr != nil {
			s.logger.Error("Failed to compensate quota after upload failure",
				zap.Uint64("schoolID", assignment.SchoolID),
				zap.Error(qerr),
			)
		}
		return nil, apierrors.StorageUnavailable("failed to store file", err)
	}

	file := &models.FileOnAssignment{
		AssignmentID: input.AssignmentID,
		URL:          url,
		Size:         input.Size,
		Type:         models.FileTypeFile,
	}
	if err := s.fileRepo.CreateFileOnAssignment(file); err != nil {
		return nil, fmt.Errorf("failed to create file reference: %w", err)
	}
	return file, nil
}

// AttachAssignmentLink creates a LINK-type reference. Links point at
// external resources, occupy no storage, and never trigger physical
// deletes.
func (s *FileService) AttachAssignmentLink(actorID, assignmentID uint64, url string) (*models.FileOnAssignment, error) {
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundf("assignment not found")
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return nil, err
	}

	file := &models.FileOnAssignment{
		AssignmentID: assignmentID,
		URL:          url,
		Type:         models.FileTypeLink,
	}
	if err := s.fileRepo.CreateFileOnAssignment(file); err != nil {
		return nil, fmt.Errorf("failed to create link reference: %w", err)
	}
	return file, nil
}

// DeleteAssignmentFile deletes one file reference. The row delete, the
// remaining-reference count, and the quota decrement share a transaction;
// if this was the last reference the blob is deleted synchronously, and a
// physical failure is surfaced to the caller on this path.
func (s *FileService) DeleteAssignmentFile(ctx context.Context, actorID, fileID uint64) error {
	file, err := s.fileRepo.FindFileOnAssignment(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NotFoundf("file not found")
		}
		return fmt.Errorf("failed to find file: %w", err)
	}

	assignment, err := s.assignmentRepo.FindByID(file.AssignmentID)
	if err != nil {
		return fmt.Errorf("failed to find assignment: %w", err)
	}

	if err := s.engine.Decide(access.Actor{UserID: actorID}, access.Scope{SubjectID: assignment.SubjectID}); err != nil {
		return err
	}

	var orphaned bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FileOnAssignment{}, fileID).Error; err != nil {
			return err
		}

		if file.Type == models.FileTypeFile {
			var err error
			orphaned, err = s.tracker.ShouldPhysicallyDelete(tx, file.URL)
			if err != nil {
				return err
			}
			if err := s.tracker.AdjustQuotaTx(tx, assignment.SchoolID, -file.Size); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if orphaned {
		if err := s.blobs.Delete(ctx, file.URL); err != nil {
			return apierrors.StorageUnavailable("failed to delete stored file", err)
		}
	}

	return nil
}
