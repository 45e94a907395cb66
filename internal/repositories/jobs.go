package repositories

import (
	"context"
	"github.com/maxaizer/jobminer/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) Exists(ctx context.Context, title string, companyID, sourceID uint) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("title = ? AND company_id = ? AND source_id = ?", title, companyID, sourceID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check job existence")
	}
	return count > 0, nil
}

// Insert stores the job unconditionally. Associations are not written, the referenced
// source and company must already exist.
func (repo *Jobs) Insert(ctx context.Context, job *models.Job) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(job).Error
	})
	return errors.Wrap(err, "failed to insert job")
}
