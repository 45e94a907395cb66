package repositories

import (
	"context"
	"github.com/maxaizer/jobminer/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Companies struct {
	db *gorm.DB
}

func NewCompaniesRepository(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

// ResolveOrCreate looks a company up by exact name. The city is stored only when the
// company is created; later sightings with another city leave it unchanged.
func (repo *Companies) ResolveOrCreate(ctx context.Context, name, city string) (*models.Company, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	company, err := firstOrCreate(ctx, repo.db,
		models.Company{Name: name},
		models.Company{City: models.OptionalString(city)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve company %q", name)
	}
	return company, nil
}
