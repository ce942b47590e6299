package cascade

import (
	"context"
	"fmt"

	"github.com/classhub/school-management-api/internal/models"
	"github.com/classhub/school-management-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Summary reports what a cascade removed. It is informational only and
// never gates behavior.
type Summary struct {
	Kind           EntityKind       `json:"kind"`
	RootID         uint64           `json:"root_id"`
	RowsDeleted    map[string]int64 `json:"rows_deleted"`
	BytesReclaimed int64            `json:"bytes_reclaimed"`
	BlobsDeleted   int              `json:"blobs_deleted"`
}

// TotalRows sums the per-collection deletion counts.
func (s *Summary) TotalRows() int64 {
	var total int64
	for _, n := range s.RowsDeleted {
		total += n
	}
	return total
}

// Orchestrator deletes a root entity together with every dependent row,
// in dependency order, and reclaims storage for every file reference that
// becomes orphaned on the way. It holds no state of its own: re-running a
// cascade against the same root id matches zero rows and is a no-op.
type Orchestrator struct {
	db      *gorm.DB
	tracker *storage.Tracker
	blobs   storage.BlobStore
	logger  *zap.Logger
}

// NewOrchestrator creates a cascade deletion orchestrator.
func NewOrchestrator(db *gorm.DB, tracker *storage.Tracker, blobs storage.BlobStore, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{db: db, tracker: tracker, blobs: blobs, logger: logger}
}

type fileRef struct {
	URL  string
	Size int64
	Type models.FileType
}

// DeleteWithCascade deletes the root entity and its whole dependent
// subtree. Row deletes, reference counting, and the quota decrement run in
// one transaction so a concurrent cascade sharing a URL cannot observe a
// half-deleted reference set. Physical blob deletes run after commit,
// best-effort: the absence of the reference rows is authoritative.
func (o *Orchestrator) DeleteWithCascade(ctx context.Context, kind EntityKind, rootID uint64) (*Summary, error) {
	desc, ok := graph[kind]
	if !ok {
		return nil, fmt.Errorf("cascade: unknown entity kind %q", kind)
	}

	summary := &Summary{
		Kind:        kind,
		RootID:      rootID,
		RowsDeleted: make(map[string]int64),
	}
	for _, col := range desc.collections {
		summary.RowsDeleted[col.name] = 0
	}
	summary.RowsDeleted[string(kind)] = 0

	var orphans []string

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		schoolID, found, err := desc.resolve(tx, rootID)
		if err != nil {
			return err
		}
		if !found {
			// Already deleted; idempotent success with all-zero counts.
			return nil
		}

		var bytesReclaimed int64

		for _, col := range desc.collections {
			var refs []fileRef
			if col.hasFiles {
				if err := col.scope(tx, rootID).Model(col.model).
					Select("url, size, type").Scan(&refs).Error; err != nil {
					return fmt.Errorf("cascade: fetch %s file refs: %w", col.name, err)
				}
			}

			res := col.scope(tx, rootID).Delete(col.model)
			if res.Error != nil {
				return fmt.Errorf("cascade: delete %s: %w", col.name, res.Error)
			}
			summary.RowsDeleted[col.name] += res.RowsAffected

			if !col.hasFiles || len(refs) == 0 {
				continue
			}

			seen := make(map[string]bool)
			for _, ref := range refs {
				bytesReclaimed += ref.Size
				if ref.Type != models.FileTypeFile || seen[ref.URL] {
					continue
				}
				seen[ref.URL] = true

				orphaned, err := o.tracker.ShouldPhysicallyDelete(tx, ref.URL)
				if err != nil {
					return fmt.Errorf("cascade: count references for %s: %w", ref.URL, err)
				}
				if orphaned {
					orphans = append(orphans, ref.URL)
				}
			}
		}

		res := tx.Delete(desc.model, rootID)
		if res.Error != nil {
			return fmt.Errorf("cascade: delete root %s: %w", kind, res.Error)
		}
		summary.RowsDeleted[string(kind)] += res.RowsAffected

		if bytesReclaimed > 0 && !desc.ownsQuotaRow {
			if err := o.tracker.AdjustQuotaTx(tx, schoolID, -bytesReclaimed); err != nil {
				return err
			}
		}
		summary.BytesReclaimed = bytesReclaimed

		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.BlobsDeleted = len(orphans)
	for _, url := range orphans {
		go o.deleteBlob(url)
	}

	o.logger.Info("Cascade completed",
		zap.String("kind", string(kind)),
		zap.Uint64("rootID", rootID),
		zap.Int64("rowsDeleted", summary.TotalRows()),
		zap.Int64("bytesReclaimed", summary.BytesReclaimed),
		zap.Int("blobsDeleted", summary.BlobsDeleted),
	)

	return summary, nil
}

// DeleteMemberCascade removes a user's school membership together with the
// team memberships and subject enrollments that exist only because of it.
func (o *Orchestrator) DeleteMemberCascade(ctx context.Context, schoolID, userID uint64) (*Summary, error) {
	summary := &Summary{
		Kind:        "school_member",
		RootID:      userID,
		RowsDeleted: make(map[string]int64),
	}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("school_id = ? AND user_id = ?", schoolID, userID).
			Delete(&models.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		summary.RowsDeleted["team_members"] = res.RowsAffected

		res = tx.Where("school_id = ? AND user_id = ?", schoolID, userID).
			Delete(&models.TeacherOnSubject{})
		if res.Error != nil {
			return res.Error
		}
		summary.RowsDeleted["teacher_on_subjects"] = res.RowsAffected

		res = tx.Where("school_id = ? AND user_id = ?", schoolID, userID).
			Delete(&models.SchoolMember{})
		if res.Error != nil {
			return res.Error
		}
		summary.RowsDeleted["school_members"] = res.RowsAffected

		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// deleteBlob is the fire-and-forget physical delete. Failures are logged
// and swallowed: the reference rows are already gone, and a later delete
// of the same URL is harmless because the blob store delete is idempotent.
func (o *Orchestrator) deleteBlob(url string) {
	if err := o.blobs.Delete(context.Background(), url); err != nil {
		o.logger.Warn("Physical blob delete failed",
			zap.String("url", url),
			zap.Error(err),
		)
	}
}
