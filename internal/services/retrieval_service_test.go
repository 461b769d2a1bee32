package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"

	"wayfare/internal/models/db_models"
	"wayfare/internal/models/pipeline_models"
	"wayfare/pkg/utils"
)

type mockEmbedding struct {
	err   error
	calls int
}

func (m *mockEmbedding) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	m.calls++
	if m.err != nil {
		return pgvector.Vector{}, m.err
	}
	return pgvector.NewVector([]float32{0.1, 0.2}), nil
}

type mockEmbeddingRepo struct {
	rows []db_models.VenueEmbedding
	err  error
}

func (m *mockEmbeddingRepo) GetSimilarByVector(vector pgvector.Vector, limit int) ([]db_models.VenueEmbedding, error) {
	return m.rows, m.err
}

func (m *mockEmbeddingRepo) CreateVenueEmbedding(embedding db_models.VenueEmbedding) error {
	return nil
}

type mockPlaces struct {
	results []PlaceResult
	err     error
	calls   int
}

func (m *mockPlaces) Nearby(ctx context.Context, lat, lng float64, category string, radiusMeters int) ([]PlaceResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockPlaces) Details(ctx context.Context, id string) (*PlaceResult, error) {
	return nil, nil
}

type mockVenueRepo struct {
	bySlug      map[string]*db_models.Venue
	searchRows  []*db_models.Venue
	searchErr   error
	searchCalls int
}

func (m *mockVenueRepo) GetVenueBySlug(ctx context.Context, slug string) (*db_models.Venue, error) {
	return m.bySlug[slug], nil
}

func (m *mockVenueRepo) ListVenuesBySlugs(ctx context.Context, slugs []string) ([]*db_models.Venue, error) {
	var out []*db_models.Venue
	for _, slug := range slugs {
		if v, ok := m.bySlug[slug]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVenueRepo) ListActiveVenues(ctx context.Context, limit int) ([]*db_models.Venue, error) {
	return m.searchRows, m.searchErr
}

func (m *mockVenueRepo) SearchVenuesByCategories(ctx context.Context, categories []string, limit int) ([]*db_models.Venue, error) {
	m.searchCalls++
	return m.searchRows, m.searchErr
}

func embeddingRow(slug string, similarity float64) db_models.VenueEmbedding {
	return db_models.VenueEmbedding{VenueSlug: slug, Name: slug, Similarity: similarity}
}

func locatedProfile() pipeline_models.RequestProfile {
	p := lowBudgetProfile()
	p.Latitude = pipeline_models.Float(40.70)
	p.Longitude = pipeline_models.Float(-73.99)
	return p
}

func TestRetrieveCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("fuses vector and directory results", func(t *testing.T) {
		svc := NewRetrievalService(
			&mockEmbedding{},
			&mockEmbeddingRepo{rows: []db_models.VenueEmbedding{embeddingRow("museum", 0.8)}},
			&mockPlaces{results: []PlaceResult{{Slug: "museum", Name: "Museum", Latitude: 40.71, Longitude: -73.98}, {Slug: "cafe", Name: "Cafe"}}},
			&mockVenueRepo{},
		)

		candidates, err := svc.RetrieveCandidates(ctx, locatedProfile())
		if err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("expected 2 fused candidates, got %v", slugsOf(candidates))
		}
		if candidates[0].Slug != "museum" || len(candidates[0].Sources) != 2 {
			t.Errorf("expected museum with both sources, got %+v", candidates[0])
		}
		if candidates[0].Data.Latitude == nil {
			t.Errorf("expected directory coordinates merged into museum")
		}
	})

	t.Run("healthy empty answer never falls back", func(t *testing.T) {
		repo := &mockVenueRepo{searchRows: []*db_models.Venue{{Slug: "should-not-appear"}}}
		svc := NewRetrievalService(
			&mockEmbedding{},
			&mockEmbeddingRepo{},
			&mockPlaces{},
			repo,
		)

		candidates, err := svc.RetrieveCandidates(ctx, locatedProfile())
		if err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if len(candidates) != 0 || repo.searchCalls != 0 {
			t.Errorf("expected empty result without fallback, got %v (fallback calls %d)", slugsOf(candidates), repo.searchCalls)
		}
	})

	t.Run("connectivity failure with nothing retrieved falls back", func(t *testing.T) {
		rating := 4.0
		repo := &mockVenueRepo{searchRows: []*db_models.Venue{{Slug: "old-town", Name: "Old Town", Rating: &rating, Status: "active"}}}
		svc := NewRetrievalService(
			&mockEmbedding{err: errors.New("connection refused")},
			&mockEmbeddingRepo{},
			&mockPlaces{},
			repo,
		)

		candidates, err := svc.RetrieveCandidates(ctx, lowBudgetProfile())
		if err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if len(candidates) != 1 || candidates[0].Slug != "old-town" {
			t.Fatalf("expected fallback candidate, got %v", slugsOf(candidates))
		}
		if candidates[0].Sources[0] != SourceFallback {
			t.Errorf("expected fallback source tag, got %v", candidates[0].Sources)
		}
		if got := candidates[0].ScoreOrZero(); got != 0.8 {
			t.Errorf("expected rating-derived score 0.8, got %v", got)
		}
	})

	t.Run("fallback failure is fatal", func(t *testing.T) {
		svc := NewRetrievalService(
			&mockEmbedding{err: errors.New("connection refused")},
			&mockEmbeddingRepo{},
			&mockPlaces{},
			&mockVenueRepo{searchErr: errors.New("db down")},
		)

		_, err := svc.RetrieveCandidates(ctx, lowBudgetProfile())
		if err == nil {
			t.Fatalf("expected an error when fallback also fails")
		}
		if !utils.IsKind(err, utils.KindDependencyUnavailable) {
			t.Errorf("expected dependency_unavailable, got %v", err)
		}
	})

	t.Run("directory outage is remembered across interests", func(t *testing.T) {
		places := &mockPlaces{err: utils.NewDependencyUnavailable("places", errors.New("timeout"))}
		svc := NewRetrievalService(
			&mockEmbedding{},
			&mockEmbeddingRepo{rows: []db_models.VenueEmbedding{embeddingRow("museum", 0.8)}},
			places,
			&mockVenueRepo{},
		)

		profile := locatedProfile()
		profile.Interests = []string{"art", "food", "history"}
		candidates, err := svc.RetrieveCandidates(ctx, profile)
		if err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if places.calls != 1 {
			t.Errorf("expected a single directory call after outage, got %d", places.calls)
		}
		if len(candidates) != 1 {
			t.Errorf("expected vector results to survive directory outage, got %v", slugsOf(candidates))
		}
	})

	t.Run("directory rejection does not mark the mechanism down", func(t *testing.T) {
		places := &mockPlaces{err: utils.NewDependencyRejected("places", 400, "bad category")}
		svc := NewRetrievalService(
			&mockEmbedding{},
			&mockEmbeddingRepo{},
			places,
			&mockVenueRepo{},
		)

		profile := locatedProfile()
		profile.Interests = []string{"art", "food"}
		if _, err := svc.RetrieveCandidates(ctx, profile); err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if places.calls != 2 {
			t.Errorf("expected one call per interest, got %d", places.calls)
		}
	})

	t.Run("store attributes hydrate retrieved candidates", func(t *testing.T) {
		tier := 2
		repo := &mockVenueRepo{bySlug: map[string]*db_models.Venue{
			"museum": {Slug: "museum", Name: "City Museum", Latitude: 40.71, Longitude: -73.98, PriceTier: &tier, Partner: true, Status: "active"},
		}}
		svc := NewRetrievalService(
			&mockEmbedding{},
			&mockEmbeddingRepo{rows: []db_models.VenueEmbedding{embeddingRow("museum", 0.8)}},
			&mockPlaces{},
			repo,
		)

		candidates, err := svc.RetrieveCandidates(ctx, lowBudgetProfile())
		if err != nil {
			t.Fatalf("RetrieveCandidates: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("expected one candidate, got %v", slugsOf(candidates))
		}
		c := candidates[0]
		if c.Data.PriceTier == nil || *c.Data.PriceTier != 2 || !c.Data.Partner {
			t.Errorf("expected store attributes merged in, got %+v", c.Data)
		}
		if c.Data.Name != "museum" {
			t.Errorf("retrieved name must win over store name, got %q", c.Data.Name)
		}
	})
}
