package repositories

import (
	"context"
	"github.com/maxaizer/jobminer/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type companyRepository interface {
	ResolveOrCreate(ctx context.Context, name, city string) (*models.Company, error)
}

type CachedCompanies struct {
	repo  companyRepository
	cache *gocache.Cache
}

func NewCachedCompanies(repo companyRepository) *CachedCompanies {
	return &CachedCompanies{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedCompanies) ResolveOrCreate(ctx context.Context, name, city string) (*models.Company, error) {
	if value, found := c.cache.Get(name); found {
		company := value.(models.Company)
		return &company, nil
	}

	company, err := c.repo.ResolveOrCreate(ctx, name, city)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(name, *company)
	return company, nil
}
