package db_models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type VenueEmbedding struct {
	VenueSlug   string `gorm:"primaryKey;column:venue_slug"`
	Name        string
	Description string
	Categories  pq.StringArray  `gorm:"type:text[]"`
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`

	// Populated by the similarity query, not a column.
	Similarity float64 `gorm:"->;-:migration;column:similarity"`
}
