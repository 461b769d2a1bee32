package repositories

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"wayfare/internal/models/db_models"
)

type IVenueRepository interface {
	GetVenueBySlug(ctx context.Context, slug string) (*db_models.Venue, error)
	ListVenuesBySlugs(ctx context.Context, slugs []string) ([]*db_models.Venue, error)
	ListActiveVenues(ctx context.Context, limit int) ([]*db_models.Venue, error)
	SearchVenuesByCategories(ctx context.Context, categories []string, limit int) ([]*db_models.Venue, error)
}

type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) IVenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) GetVenueBySlug(ctx context.Context, slug string) (*db_models.Venue, error) {
	var venue db_models.Venue
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&venue).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *VenueRepository) ListVenuesBySlugs(ctx context.Context, slugs []string) ([]*db_models.Venue, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var venues []*db_models.Venue
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *VenueRepository) ListActiveVenues(ctx context.Context, limit int) ([]*db_models.Venue, error) {
	if limit <= 0 {
		limit = 50
	}
	var venues []*db_models.Venue
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("rating DESC NULLS LAST").
		Limit(limit).
		Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *VenueRepository) SearchVenuesByCategories(ctx context.Context, categories []string, limit int) ([]*db_models.Venue, error) {
	if len(categories) == 0 {
		return r.ListActiveVenues(ctx, limit)
	}
	if limit <= 0 {
		limit = 50
	}
	var venues []*db_models.Venue
	err := r.db.WithContext(ctx).
		Where("status = ? AND categories && ?", "active", pq.Array(categories)).
		Order("rating DESC NULLS LAST").
		Limit(limit).
		Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}
