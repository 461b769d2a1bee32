package repositories

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"wayfare/internal/models/db_models"
)

type IVenueEmbeddingRepository interface {
	GetSimilarByVector(vector pgvector.Vector, limit int) ([]db_models.VenueEmbedding, error)
	CreateVenueEmbedding(embedding db_models.VenueEmbedding) error
}

type VenueEmbeddingRepository struct {
	db *gorm.DB
}

func NewVenueEmbeddingRepository(db *gorm.DB) IVenueEmbeddingRepository {
	return &VenueEmbeddingRepository{db: db}
}

func (r *VenueEmbeddingRepository) GetSimilarByVector(vector pgvector.Vector, limit int) ([]db_models.VenueEmbedding, error) {
	if limit <= 0 {
		limit = 15
	}

	var results []db_models.VenueEmbedding

	query := `
        SELECT *, (1 - (embedding <=> $1)) as similarity
        FROM venue_embeddings
        WHERE (1 - (embedding <=> $1)) > 0.5
        ORDER BY embedding <=> $1
        LIMIT $2
    `

	err := r.db.Raw(query, vector.String(), limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *VenueEmbeddingRepository) CreateVenueEmbedding(embedding db_models.VenueEmbedding) error {
	return r.db.Create(&embedding).Error
}
