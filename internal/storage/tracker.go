package storage

import (
	"errors"

	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tracker implements the reference-counting policy for physically stored
// blobs and the per-school storage quota accounting. Many file reference
// rows may share one URL; a blob may be physically deleted only when no
// row anywhere still carries that URL.
type Tracker struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTracker creates a new storage reference tracker.
func NewTracker(db *gorm.DB, logger *zap.Logger) *Tracker {
	return &Tracker{db: db, logger: logger}
}

// fileTables lists every table that stores file references. Reference
// counts scan all of them.
var fileTables = []any{
	&models.FileOnAssignment{},
	&models.FileOnStudentAssignment{},
	&models.FileOnSubject{},
}

// CountReferences counts file reference rows carrying the URL across all
// file tables, using the given transaction so the count observes rows
// already deleted within it.
func (t *Tracker) CountReferences(tx *gorm.DB, url string) (int64, error) {
	var total int64
	for _, table := range fileTables {
		var count int64
		if err := tx.Model(table).Where("url = ?", url).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// ShouldPhysicallyDelete reports whether no live reference row still
// carries the URL. The caller must have deleted its own reference row in
// tx first: the decision is made on post-delete state.
func (t *Tracker) ShouldPhysicallyDelete(tx *gorm.DB, url string) (bool, error) {
	count, err := t.CountReferences(tx, url)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// AdjustQuota applies a byte delta to a school's storage-used counter as a
// single atomic update; there is no read-modify-write window. A delta that
// would drive the counter negative is a Conflict, never a silent clamp.
func (t *Tracker) AdjustQuota(schoolID uint64, delta int64) error {
	return t.AdjustQuotaTx(t.db, schoolID, delta)
}

// AdjustQuotaTx is AdjustQuota running inside an existing transaction.
func (t *Tracker) AdjustQuotaTx(tx *gorm.DB, schoolID uint64, delta int64) error {
	res := tx.Model(&models.School{}).
		Where("id = ? AND storage_used + ? >= 0", schoolID, delta).
		UpdateColumn("storage_used", gorm.Expr("storage_used + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.School{}).Where("id = ?", schoolID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apierrors.NotFoundf("school not found")
	}
	t.logger.Error("Storage counter would become negative",
		zap.Uint64("schoolID", schoolID),
		zap.Int64("delta", delta),
	)
	return apierrors.Conflictf("storage counter for school would become negative")
}

// ReserveQuota claims bytes against a school's storage limit. The limit
// check and the counter increment are one guarded update, so two
// concurrent uploads cannot both slip under the limit. A failed reserve
// leaves the counter untouched; callers release with AdjustQuota.
func (t *Tracker) ReserveQuota(schoolID uint64, addition int64) error {
	res := t.db.Model(&models.School{}).
		Where("id = ? AND storage_used + ? <= storage_limit", schoolID, addition).
		UpdateColumn("storage_used", gorm.Expr("storage_used + ?", addition))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var school models.School
	if err := t.db.First(&school, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NotFoundf("school not found")
		}
		return err
	}
	return apierrors.QuotaExceededf("school storage limit of %d bytes exceeded", school.StorageLimit)
}
