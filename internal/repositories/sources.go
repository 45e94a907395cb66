package repositories

import (
	"context"
	"github.com/maxaizer/jobminer/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Sources struct {
	db *gorm.DB
}

func NewSourcesRepository(db *gorm.DB) *Sources {
	return &Sources{db: db}
}

// ResolveOrCreate returns the source with the given name, creating it when absent.
// An existing source is never modified.
func (repo *Sources) ResolveOrCreate(ctx context.Context, name, baseURL string) (*models.Source, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	source, err := firstOrCreate(ctx, repo.db,
		models.Source{Name: name},
		models.Source{BaseURL: models.OptionalString(baseURL)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve source %q", name)
	}
	return source, nil
}
