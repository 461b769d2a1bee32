package services

import (
	"context"
	"time"

	"wayfare/internal/models/pipeline_models"
	"wayfare/internal/models/response_models"
	"wayfare/pkg/cache"
	"wayfare/pkg/telemetry"
	"wayfare/pkg/utils"
)

const itineraryCacheLabel = "itinerary.v1"

type ItineraryServiceInterface interface {
	// GenerateItinerary runs the full pipeline for one normalized profile:
	// retrieval, fusion, boost, filters, reorder. Identical profiles hit
	// the cache without invoking any stage.
	GenerateItinerary(ctx context.Context, raw pipeline_models.RequestProfile) (*response_models.ItineraryResponse, error)
}

type ItineraryService struct {
	retrieval RetrievalServiceInterface
	miner     RuleMinerServiceInterface
	filters   *FilterChain
	reorder   ReorderServiceInterface
	cache     cache.Store
	emitter   *telemetry.Emitter
}

func NewItineraryService(
	retrieval RetrievalServiceInterface,
	miner RuleMinerServiceInterface,
	filters *FilterChain,
	reorder ReorderServiceInterface,
	store cache.Store,
	emitter *telemetry.Emitter,
) ItineraryServiceInterface {
	return &ItineraryService{
		retrieval: retrieval,
		miner:     miner,
		filters:   filters,
		reorder:   reorder,
		cache:     store,
		emitter:   emitter,
	}
}

func (s *ItineraryService) GenerateItinerary(ctx context.Context, raw pipeline_models.RequestProfile) (*response_models.ItineraryResponse, error) {
	profile, err := pipeline_models.NormalizeProfile(raw)
	if err != nil {
		return nil, err
	}

	var cachedResponse response_models.ItineraryResponse
	if ok, _ := cache.GetJSON(ctx, s.cache, itineraryCacheLabel, profile, &cachedResponse); ok {
		s.emit("pipeline.cache_hit", "cache", len(cachedResponse.Candidates), 0)
		return &cachedResponse, nil
	}

	candidates, err := s.runStage(ctx, "retrieval", func() ([]pipeline_models.Candidate, error) {
		return s.retrieval.RetrieveCandidates(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, utils.NewEmptyResultError("retrieval", "no candidates found for profile")
	}

	candidates, _ = s.runStage(ctx, "boost", func() ([]pipeline_models.Candidate, error) {
		return s.miner.BoostCandidates(ctx, candidates), nil
	})

	candidates, _ = s.runStage(ctx, "filters", func() ([]pipeline_models.Candidate, error) {
		return s.filters.Run(ctx, profile, candidates), nil
	})
	if len(candidates) == 0 {
		return nil, utils.NewEmptyResultError("filters", "no candidates survived constraint filtering")
	}

	reorderStart := time.Now()
	items, fallback := s.reorder.ReorderCandidates(ctx, profile, candidates)
	s.emit("pipeline.stage", "reorder", len(items), time.Since(reorderStart))

	status := response_models.StatusComplete
	if len(items) == 0 {
		status = response_models.StatusPartial
	}

	response := &response_models.ItineraryResponse{
		Status:     status,
		Candidates: response_models.BuildCandidateViews(candidates),
		Itinerary:  response_models.ItineraryView{Items: items},
		Meta: map[string]interface{}{
			"reorder_fallback": fallback,
			"candidate_count":  len(candidates),
		},
	}

	_ = cache.SetJSON(ctx, s.cache, itineraryCacheLabel, profile, response, cache.TTLExpensive)
	return response, nil
}

func (s *ItineraryService) runStage(ctx context.Context, stage string, fn func() ([]pipeline_models.Candidate, error)) ([]pipeline_models.Candidate, error) {
	start := time.Now()
	candidates, err := fn()
	s.emit("pipeline.stage", stage, len(candidates), time.Since(start))
	return candidates, err
}

func (s *ItineraryService) emit(name, stage string, count int, duration time.Duration) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(telemetry.Event{
		Name:       name,
		Stage:      stage,
		Candidates: count,
		Duration:   duration,
	})
}
