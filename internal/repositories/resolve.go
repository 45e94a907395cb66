package repositories

import (
	"context"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrEmptyName = errors.New("name must not be empty")

// firstOrCreate looks the entity up by conditions and inserts it with attrs applied when
// missing, committing in its own transaction. If the insert loses a race against another
// writer holding the same unique name, the winner's row is returned.
func firstOrCreate[T any](ctx context.Context, db *gorm.DB, conditions T, attrs T) (*T, error) {
	var entity T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(conditions).Attrs(attrs).FirstOrCreate(&entity).Error
	})
	if err == nil {
		return &entity, nil
	}

	var existing T
	res := db.WithContext(ctx).Where(conditions).Limit(1).Find(&existing)
	if res.Error == nil && res.RowsAffected == 1 {
		return &existing, nil
	}
	return nil, err
}
