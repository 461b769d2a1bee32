package services

import (
	"context"
	"log"
	"strings"

	"wayfare/internal/models/db_models"
	"wayfare/internal/models/pipeline_models"
	"wayfare/internal/repositories"
	"wayfare/pkg/utils"
)

const (
	SourceVector    = "vector"
	SourceDirectory = "directory"
	SourceFallback  = "fallback"

	directoryRadiusMeters = 5000
)

// mechanismState remembers, for the remainder of one pipeline run, which
// discovery mechanisms have already failed on connectivity so later
// references short-circuit straight to fallback.
type mechanismState struct {
	down map[string]bool
}

func newMechanismState() *mechanismState {
	return &mechanismState{down: make(map[string]bool)}
}

func (m *mechanismState) markDown(mechanism string) { m.down[mechanism] = true }
func (m *mechanismState) isDown(mechanism string) bool {
	return m.down[mechanism]
}

type RetrievalServiceInterface interface {
	// RetrieveCandidates pulls raw candidates from the configured discovery
	// mechanisms and fuses them. A connectivity failure of every primary
	// mechanism triggers exactly one relational fallback attempt; if that
	// also fails the error is fatal.
	RetrieveCandidates(ctx context.Context, profile pipeline_models.RequestProfile) ([]pipeline_models.Candidate, error)
}

type RetrievalService struct {
	embedding     utils.EmbeddingClientInterface
	embeddingRepo repositories.IVenueEmbeddingRepository
	places        PlacesClientInterface
	venueRepo     repositories.IVenueRepository
}

func NewRetrievalService(
	embedding utils.EmbeddingClientInterface,
	embeddingRepo repositories.IVenueEmbeddingRepository,
	places PlacesClientInterface,
	venueRepo repositories.IVenueRepository,
) RetrievalServiceInterface {
	return &RetrievalService{
		embedding:     embedding,
		embeddingRepo: embeddingRepo,
		places:        places,
		venueRepo:     venueRepo,
	}
}

func (s *RetrievalService) RetrieveCandidates(ctx context.Context, profile pipeline_models.RequestProfile) ([]pipeline_models.Candidate, error) {
	state := newMechanismState()

	vectorCandidates := s.retrieveByVector(ctx, profile, state)
	directoryCandidates := s.retrieveByDirectory(ctx, profile, state)

	candidates := FuseCandidates(vectorCandidates, directoryCandidates)
	s.hydrateFromStore(ctx, candidates)

	// Fallback fires only on connectivity failure of a primary, never on a
	// healthy zero-result answer.
	if len(candidates) == 0 && (state.isDown(SourceVector) || state.isDown(SourceDirectory)) {
		fallback, err := s.retrieveFallback(ctx, profile)
		if err != nil {
			return nil, err
		}
		candidates = fallback
	}

	return candidates, nil
}

func (s *RetrievalService) retrieveByVector(ctx context.Context, profile pipeline_models.RequestProfile, state *mechanismState) []pipeline_models.Candidate {
	if state.isDown(SourceVector) {
		return nil
	}

	query := strings.Join(profile.Interests, ", ")
	vector, err := s.embedding.GetEmbedding(ctx, query)
	if err != nil {
		log.Printf("vector retrieval: embedding unavailable: %v", err)
		state.markDown(SourceVector)
		return nil
	}

	rows, err := s.embeddingRepo.GetSimilarByVector(vector, 15)
	if err != nil {
		log.Printf("vector retrieval: similarity query failed: %v", err)
		state.markDown(SourceVector)
		return nil
	}

	candidates := make([]pipeline_models.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, pipeline_models.NewCandidate(
			row.VenueSlug,
			pipeline_models.Float(row.Similarity),
			SourceVector,
			pipeline_models.VenueData{
				Name:        row.Name,
				Categories:  row.Categories,
				Description: row.Description,
			},
		))
	}
	return candidates
}

func (s *RetrievalService) retrieveByDirectory(ctx context.Context, profile pipeline_models.RequestProfile, state *mechanismState) []pipeline_models.Candidate {
	if state.isDown(SourceDirectory) || !profile.HasLocation() {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []pipeline_models.Candidate
	for _, interest := range profile.Interests {
		if state.isDown(SourceDirectory) {
			break
		}
		results, err := s.places.Nearby(ctx, *profile.Latitude, *profile.Longitude, interest, directoryRadiusMeters)
		if err != nil {
			log.Printf("directory retrieval: %v", err)
			if utils.IsKind(err, utils.KindDependencyUnavailable) {
				state.markDown(SourceDirectory)
			}
			continue
		}
		for _, place := range results {
			if place.Slug == "" || seen[place.Slug] {
				continue
			}
			seen[place.Slug] = true
			candidates = append(candidates, pipeline_models.NewCandidate(
				place.Slug,
				nil,
				SourceDirectory,
				pipeline_models.VenueData{
					Name:          place.Name,
					Latitude:      pipeline_models.Float(place.Latitude),
					Longitude:     pipeline_models.Float(place.Longitude),
					Categories:    place.Categories,
					OpeningHours:  place.OpeningHours,
					PriceTier:     place.PriceTier,
					Accessibility: place.Accessibility,
					ContactInfo:   place.ContactInfo,
				},
			))
		}
	}
	return candidates
}

// hydrateFromStore batch-enriches candidates with attributes from the venue
// store. Enrichment is best-effort; a store failure leaves candidates with
// whatever the discovery mechanism returned.
func (s *RetrievalService) hydrateFromStore(ctx context.Context, candidates []pipeline_models.Candidate) {
	if len(candidates) == 0 {
		return
	}
	slugs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		slugs = append(slugs, c.Slug)
	}
	venues, err := s.venueRepo.ListVenuesBySlugs(ctx, slugs)
	if err != nil {
		log.Printf("candidate hydration skipped: %v", err)
		return
	}
	bySlug := make(map[string]*db_models.Venue, len(venues))
	for _, v := range venues {
		bySlug[v.Slug] = v
	}
	for i := range candidates {
		venue, ok := bySlug[candidates[i].Slug]
		if !ok {
			continue
		}
		data := venueToData(venue)
		merged := candidates[i].Data
		mergeVenueData(&merged, data)
		candidates[i].Data = merged
	}
}

func (s *RetrievalService) retrieveFallback(ctx context.Context, profile pipeline_models.RequestProfile) ([]pipeline_models.Candidate, error) {
	venues, err := s.venueRepo.SearchVenuesByCategories(ctx, profile.Interests, 50)
	if err != nil {
		return nil, utils.NewDependencyUnavailable("retrieval", err)
	}

	candidates := make([]pipeline_models.Candidate, 0, len(venues))
	for _, venue := range venues {
		var score *float64
		if venue.Rating != nil {
			// Normalize a 0..5 rating onto the similarity scale.
			score = pipeline_models.Float(*venue.Rating / 5)
		}
		candidates = append(candidates, pipeline_models.NewCandidate(
			venue.Slug,
			score,
			SourceFallback,
			venueToData(venue),
		))
	}
	return candidates, nil
}

func venueToData(venue *db_models.Venue) pipeline_models.VenueData {
	return pipeline_models.VenueData{
		Name:          venue.Name,
		Latitude:      pipeline_models.Float(venue.Latitude),
		Longitude:     pipeline_models.Float(venue.Longitude),
		Categories:    venue.Categories,
		OpeningHours:  venue.OpeningHours,
		PriceTier:     venue.PriceTier,
		Accessibility: venue.Accessibility,
		ContactInfo:   venue.ContactInfo,
		Status:        venue.Status,
		Partner:       venue.Partner,
		Rating:        venue.Rating,
		Description:   venue.Description,
	}
}
