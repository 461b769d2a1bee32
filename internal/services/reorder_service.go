package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"wayfare/internal/models/pipeline_models"
	"wayfare/pkg/cache"
	"wayfare/pkg/utils"
)

const (
	// MaxReorderCandidates bounds the prompt size.
	MaxReorderCandidates = 12
	// reorderSchemaVersion tags the context hash; bump it whenever the
	// prompt or output schema changes.
	reorderSchemaVersion = "reorder.v2"

	defaultStopMinutes = 60
)

type ReorderServiceInterface interface {
	// ReorderCandidates asks the completion service for an ordered
	// itinerary over the top candidates. On any failure it falls back to a
	// deterministic sort; fallback is true on that path. The returned list
	// is non-empty whenever at least one candidate exists.
	ReorderCandidates(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) (items []pipeline_models.ItineraryItem, fallback bool)
}

type ReorderService struct {
	completion utils.CompletionClientInterface
	cache      cache.Store
}

func NewReorderService(completion utils.CompletionClientInterface, store cache.Store) ReorderServiceInterface {
	return &ReorderService{completion: completion, cache: store}
}

// reorderContext is the bounded, canonical prompt context. It doubles as
// the cache payload so identical contexts never trigger a second external
// call.
type reorderContext struct {
	SchemaVersion string             `json:"schema_version"`
	Interests     []string           `json:"interests"`
	Budget        string             `json:"budget"`
	TimeWindow    int                `json:"time_window_minutes"`
	PartySize     int                `json:"party_size"`
	Candidates    []reorderCandidate `json:"candidates"`
}

type reorderCandidate struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Categories []string `json:"categories,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

type reorderResponse struct {
	Items []struct {
		Slug                 string `json:"slug"`
		Title                string `json:"title"`
		Sequence             int    `json:"sequence"`
		ArrivalOffsetMinutes int    `json:"arrival_offset_minutes"`
		DurationMinutes      int    `json:"duration_minutes"`
		Notes                string `json:"notes"`
	} `json:"items"`
}

func (s *ReorderService) ReorderCandidates(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.ItineraryItem, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	top := truncateByScore(candidates, MaxReorderCandidates)
	rctx := buildReorderContext(profile, top)

	var cached []pipeline_models.ItineraryItem
	if ok, _ := cache.GetJSON(ctx, s.cache, reorderSchemaVersion, rctx, &cached); ok && len(cached) > 0 {
		return cached, false
	}

	items, err := s.invokeModel(ctx, rctx, top)
	if err != nil {
		log.Printf("reorder: falling back to deterministic sort: %v", err)
		return FallbackItinerary(top), true
	}

	_ = cache.SetJSON(ctx, s.cache, reorderSchemaVersion, rctx, items, cache.TTLExpensive)
	return items, false
}

func (s *ReorderService) invokeModel(ctx context.Context, rctx reorderContext, candidates []pipeline_models.Candidate) ([]pipeline_models.ItineraryItem, error) {
	raw, err := s.completion.CompleteJSON(ctx, buildReorderPrompt(rctx))
	if err != nil {
		return nil, err
	}

	var parsed reorderResponse
	if err := json.Unmarshal([]byte(utils.CleanJSONResponse(raw)), &parsed); err != nil {
		return nil, utils.NewReorderParseError(err)
	}
	if len(parsed.Items) == 0 {
		return nil, utils.NewReorderParseError(fmt.Errorf("empty item list"))
	}

	known := make(map[string]pipeline_models.Candidate, len(candidates))
	for _, c := range candidates {
		known[c.Slug] = c
	}

	items := make([]pipeline_models.ItineraryItem, 0, len(candidates))
	placed := make(map[string]bool, len(parsed.Items))
	for _, item := range parsed.Items {
		c, ok := known[item.Slug]
		if !ok {
			return nil, utils.NewReorderParseError(fmt.Errorf("unknown identity %q in reorder response", item.Slug))
		}
		if placed[item.Slug] {
			continue
		}
		placed[item.Slug] = true

		title := item.Title
		if title == "" {
			title = c.Data.Name
		}
		duration := item.DurationMinutes
		if duration <= 0 {
			duration = defaultStopMinutes
		}
		items = append(items, pipeline_models.ItineraryItem{
			Slug:                 item.Slug,
			Title:                title,
			Sequence:             len(items) + 1,
			ArrivalOffsetMinutes: item.ArrivalOffsetMinutes,
			DurationMinutes:      duration,
			Notes:                item.Notes,
			Provenance:           pipeline_models.ProvenanceModel,
		})
	}

	// Candidates the model omitted are appended at the end unchanged;
	// nothing is dropped silently.
	for _, c := range candidates {
		if placed[c.Slug] {
			continue
		}
		items = appendItem(items, c, pipeline_models.ProvenanceModel)
	}

	return items, nil
}

// FallbackItinerary is the deterministic secondary sort: score descending,
// slug ascending as tie-break.
func FallbackItinerary(candidates []pipeline_models.Candidate) []pipeline_models.ItineraryItem {
	sorted := make([]pipeline_models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].ScoreOrZero(), sorted[j].ScoreOrZero()
		if si != sj {
			return si > sj
		}
		return sorted[i].Slug < sorted[j].Slug
	})

	items := make([]pipeline_models.ItineraryItem, 0, len(sorted))
	for _, c := range sorted {
		items = appendItem(items, c, pipeline_models.ProvenanceFallback)
	}
	return items
}

func appendItem(items []pipeline_models.ItineraryItem, c pipeline_models.Candidate, provenance string) []pipeline_models.ItineraryItem {
	offset := 0
	if len(items) > 0 {
		last := items[len(items)-1]
		offset = last.ArrivalOffsetMinutes + last.DurationMinutes
		switch travel := c.Meta["travel_minutes"].(type) {
		case int:
			offset += travel
		case float64:
			offset += int(travel)
		}
	}
	return append(items, pipeline_models.ItineraryItem{
		Slug:                 c.Slug,
		Title:                c.Data.Name,
		Sequence:             len(items) + 1,
		ArrivalOffsetMinutes: offset,
		DurationMinutes:      defaultStopMinutes,
		Provenance:           provenance,
	})
}

func truncateByScore(candidates []pipeline_models.Candidate, limit int) []pipeline_models.Candidate {
	sorted := make([]pipeline_models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].ScoreOrZero(), sorted[j].ScoreOrZero()
		if si != sj {
			return si > sj
		}
		return sorted[i].Slug < sorted[j].Slug
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func buildReorderContext(profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) reorderContext {
	rctx := reorderContext{
		SchemaVersion: reorderSchemaVersion,
		Interests:     profile.Interests,
		Budget:        profile.Budget,
		TimeWindow:    profile.TimeWindowMinutes,
		PartySize:     profile.PartySize,
	}
	for _, c := range candidates {
		summary := c.Data.Description
		if len(summary) > 160 {
			summary = summary[:160]
		}
		rctx.Candidates = append(rctx.Candidates, reorderCandidate{
			Slug:       c.Slug,
			Name:       c.Data.Name,
			Categories: c.Data.Categories,
			Summary:    summary,
		})
	}
	return rctx
}

func buildReorderPrompt(rctx reorderContext) string {
	var prompt strings.Builder

	prompt.WriteString("Order the venues below into a single-day itinerary for this visitor.\n\n")
	fmt.Fprintf(&prompt, "Visitor: interests %s, budget %s, %d minutes available, party of %d.\n\n",
		strings.Join(rctx.Interests, ", "), rctx.Budget, rctx.TimeWindow, rctx.PartySize)

	prompt.WriteString("Venues (use exact slug values):\n")
	for _, c := range rctx.Candidates {
		fmt.Fprintf(&prompt, "- slug:%s | name:%s | categories:%s | %s\n",
			c.Slug, c.Name, strings.Join(c.Categories, ","), c.Summary)
	}

	prompt.WriteString(`
Return JSON only, matching exactly:
{
  "items": [
    {
      "slug": "exact-slug-from-list",
      "title": "short stop title",
      "sequence": 1,
      "arrival_offset_minutes": 0,
      "duration_minutes": 60,
      "notes": "one sentence about what to do here"
    }
  ]
}

Hard constraints:
- Use only slugs from the list; never invent one.
- sequence starts at 1 with no gaps.
- arrival offsets are minutes from the start of the visit and must be non-decreasing.
- The total of offsets and durations must fit the visitor's available minutes.
`)

	return prompt.String()
}
