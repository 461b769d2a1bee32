package services

import (
	"context"
	"errors"
	"testing"

	"wayfare/internal/models/pipeline_models"
	"wayfare/internal/models/response_models"
	"wayfare/pkg/cache"
	"wayfare/pkg/utils"
)

type stubRetrieval struct {
	candidates []pipeline_models.Candidate
	err        error
	calls      int
}

func (s *stubRetrieval) RetrieveCandidates(ctx context.Context, profile pipeline_models.RequestProfile) ([]pipeline_models.Candidate, error) {
	s.calls++
	return s.candidates, s.err
}

type passthroughMiner struct{}

func (passthroughMiner) GenerateRules(ctx context.Context) (int, error) { return 0, nil }
func (passthroughMiner) BoostCandidates(ctx context.Context, candidates []pipeline_models.Candidate) []pipeline_models.Candidate {
	return candidates
}
func (passthroughMiner) LoadSnapshot(ctx context.Context) error { return nil }

type stubReorder struct {
	items    []pipeline_models.ItineraryItem
	fallback bool
}

func (s *stubReorder) ReorderCandidates(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.ItineraryItem, bool) {
	return s.items, s.fallback
}

func newPipeline(retrieval RetrievalServiceInterface, reorder ReorderServiceInterface, store cache.Store) ItineraryServiceInterface {
	return NewItineraryService(retrieval, passthroughMiner{}, NewFilterChain(&mockMatrix{}), reorder, store, nil)
}

func TestGenerateItinerary(t *testing.T) {
	ctx := context.Background()

	t.Run("budget filtering and reorder end to end", func(t *testing.T) {
		retrieval := &stubRetrieval{candidates: []pipeline_models.Candidate{
			tierCandidate("cheap-eats", pipeline_models.Int(1)),
			tierCandidate("fine-dining", pipeline_models.Int(3)),
		}}
		completion := &mockCompletion{response: `{"items":[{"slug":"cheap-eats","title":"Lunch","sequence":1,"arrival_offset_minutes":0,"duration_minutes":60,"notes":"casual"}]}`}
		reorder := NewReorderService(completion, cache.NewMemoryStore())
		svc := newPipeline(retrieval, reorder, cache.NewMemoryStore())

		resp, err := svc.GenerateItinerary(ctx, pipeline_models.RequestProfile{
			Interests:         []string{"Food"},
			Budget:            pipeline_models.BudgetLow,
			TimeWindowMinutes: 180,
			Latitude:          pipeline_models.Float(40.70),
			Longitude:         pipeline_models.Float(-73.99),
		})
		if err != nil {
			t.Fatalf("GenerateItinerary: %v", err)
		}
		if resp.Status != response_models.StatusComplete {
			t.Errorf("expected complete status, got %q", resp.Status)
		}
		if len(resp.Candidates) != 1 || resp.Candidates[0].Slug != "cheap-eats" {
			t.Fatalf("expected only the low-tier candidate, got %+v", resp.Candidates)
		}
		items := resp.Itinerary.Items
		if len(items) != 1 || items[0].Slug != "cheap-eats" || items[0].DurationMinutes != 60 {
			t.Errorf("unexpected itinerary %+v", items)
		}
		if resp.Meta["reorder_fallback"] != false {
			t.Errorf("expected no reorder fallback, got %v", resp.Meta["reorder_fallback"])
		}
	})

	t.Run("validation failure is fatal before any stage", func(t *testing.T) {
		retrieval := &stubRetrieval{}
		svc := newPipeline(retrieval, &stubReorder{}, cache.NewMemoryStore())

		_, err := svc.GenerateItinerary(ctx, pipeline_models.RequestProfile{TimeWindowMinutes: 180})
		if !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if retrieval.calls != 0 {
			t.Errorf("expected no retrieval call, got %d", retrieval.calls)
		}
	})

	t.Run("retrieval failure propagates", func(t *testing.T) {
		retrieval := &stubRetrieval{err: utils.NewDependencyUnavailable("retrieval", errors.New("db down"))}
		svc := newPipeline(retrieval, &stubReorder{}, cache.NewMemoryStore())

		_, err := svc.GenerateItinerary(ctx, validRawProfile())
		if !utils.IsKind(err, utils.KindDependencyUnavailable) {
			t.Fatalf("expected dependency_unavailable, got %v", err)
		}
	})

	t.Run("zero candidates after retrieval is fatal", func(t *testing.T) {
		svc := newPipeline(&stubRetrieval{}, &stubReorder{}, cache.NewMemoryStore())

		_, err := svc.GenerateItinerary(ctx, validRawProfile())
		if !utils.IsKind(err, utils.KindEmptyResult) {
			t.Fatalf("expected empty_result, got %v", err)
		}
	})

	t.Run("zero candidates after filtering is fatal", func(t *testing.T) {
		retrieval := &stubRetrieval{candidates: []pipeline_models.Candidate{
			tierCandidate("fine-dining", pipeline_models.Int(3)),
		}}
		svc := newPipeline(retrieval, &stubReorder{}, cache.NewMemoryStore())

		_, err := svc.GenerateItinerary(ctx, validRawProfile())
		if !utils.IsKind(err, utils.KindEmptyResult) {
			t.Fatalf("expected empty_result, got %v", err)
		}
	})

	t.Run("empty itinerary reports partial status", func(t *testing.T) {
		retrieval := &stubRetrieval{candidates: []pipeline_models.Candidate{
			tierCandidate("cheap-eats", pipeline_models.Int(1)),
		}}
		svc := newPipeline(retrieval, &stubReorder{items: nil}, cache.NewMemoryStore())

		resp, err := svc.GenerateItinerary(ctx, validRawProfile())
		if err != nil {
			t.Fatalf("GenerateItinerary: %v", err)
		}
		if resp.Status != response_models.StatusPartial {
			t.Errorf("expected partial status, got %q", resp.Status)
		}
		if len(resp.Candidates) != 1 {
			t.Errorf("expected surviving candidates in a partial response, got %+v", resp.Candidates)
		}
	})

	t.Run("identical profile is served from cache", func(t *testing.T) {
		retrieval := &stubRetrieval{candidates: []pipeline_models.Candidate{
			tierCandidate("cheap-eats", pipeline_models.Int(1)),
		}}
		reorder := &stubReorder{items: []pipeline_models.ItineraryItem{{Slug: "cheap-eats", Title: "cheap-eats", Sequence: 1, DurationMinutes: 60, Provenance: pipeline_models.ProvenanceModel}}}
		svc := newPipeline(retrieval, reorder, cache.NewMemoryStore())

		first, err := svc.GenerateItinerary(ctx, validRawProfile())
		if err != nil {
			t.Fatalf("first run: %v", err)
		}

		// Raw field order and casing differences must still hit the cache.
		again := validRawProfile()
		again.Interests = []string{"FOOD"}
		second, err := svc.GenerateItinerary(ctx, again)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if retrieval.calls != 1 {
			t.Errorf("expected one retrieval across both runs, got %d", retrieval.calls)
		}
		if second.Status != first.Status || len(second.Itinerary.Items) != len(first.Itinerary.Items) {
			t.Errorf("expected cached response to match, got %+v vs %+v", second, first)
		}
	})

	t.Run("degraded retrieval still yields a complete response", func(t *testing.T) {
		fallbackCandidates := []pipeline_models.Candidate{
			pipeline_models.NewCandidate("old-town", pipeline_models.Float(0.8), SourceFallback, pipeline_models.VenueData{Name: "Old Town"}),
			pipeline_models.NewCandidate("harbor-walk", pipeline_models.Float(0.6), SourceFallback, pipeline_models.VenueData{Name: "Harbor Walk"}),
		}
		retrieval := &stubRetrieval{candidates: fallbackCandidates}
		completion := &mockCompletion{err: errors.New("model timeout")}
		reorder := NewReorderService(completion, cache.NewMemoryStore())
		svc := newPipeline(retrieval, reorder, cache.NewMemoryStore())

		resp, err := svc.GenerateItinerary(ctx, validRawProfile())
		if err != nil {
			t.Fatalf("GenerateItinerary: %v", err)
		}
		if resp.Status != response_models.StatusComplete {
			t.Errorf("expected complete status, got %q", resp.Status)
		}
		if resp.Meta["reorder_fallback"] != true {
			t.Errorf("expected reorder fallback flag, got %v", resp.Meta["reorder_fallback"])
		}
		for _, c := range resp.Candidates {
			if len(c.Sources) == 0 || c.Sources[0] != SourceFallback {
				t.Errorf("expected fallback-tagged candidate, got %+v", c)
			}
		}
		items := resp.Itinerary.Items
		if len(items) != 2 || items[0].Slug != "old-town" {
			t.Errorf("expected deterministic fallback order, got %+v", items)
		}
	})
}

func validRawProfile() pipeline_models.RequestProfile {
	return pipeline_models.RequestProfile{
		Interests:         []string{"food"},
		Budget:            pipeline_models.BudgetLow,
		TimeWindowMinutes: 180,
	}
}
