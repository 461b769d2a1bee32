package services

import (
	"context"
	"log"
	"time"

	"wayfare/internal/models/pipeline_models"
	"wayfare/pkg/utils"
)

// PartnerBoostFactor is the fixed multiplier applied to flagged partner
// venues.
const PartnerBoostFactor = 1.15

// CandidateFilter keeps or drops candidates. Filters fail open: a filter
// that errors is skipped and the prior candidate list flows on.
type CandidateFilter struct {
	Name  string
	Apply func(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error)
}

type FilterChain struct {
	matrix DurationMatrixService
	now    func() time.Time
}

func NewFilterChain(matrix DurationMatrixService) *FilterChain {
	return &FilterChain{matrix: matrix, now: time.Now}
}

// Filters returns the ordered chain: budget, accessibility, hours, travel
// feasibility, partner boost.
func (f *FilterChain) Filters() []CandidateFilter {
	return []CandidateFilter{
		{Name: "budget", Apply: f.applyBudget},
		{Name: "accessibility", Apply: f.applyAccessibility},
		{Name: "hours", Apply: f.applyHours},
		{Name: "travel", Apply: f.applyTravel},
		{Name: "partner", Apply: f.applyPartnerBoost},
	}
}

// Run executes the chain in order. Filter errors are non-fatal; the failed
// filter is skipped entirely.
func (f *FilterChain) Run(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) []pipeline_models.Candidate {
	for _, filter := range f.Filters() {
		filtered, err := filter.Apply(ctx, profile, candidates)
		if err != nil {
			log.Printf("filter %s failed, skipping: %v", filter.Name, err)
			continue
		}
		candidates = filtered
	}
	return candidates
}

// applyBudget keeps candidates whose price tier does not exceed the
// requested budget ordinal. Candidates with no declared tier always pass.
func (f *FilterChain) applyBudget(_ context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error) {
	limit := profile.BudgetOrdinal()
	out := candidates[:0]
	for _, c := range candidates {
		if c.Data.PriceTier != nil && *c.Data.PriceTier > limit {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// applyAccessibility keeps candidates whose declared attributes cover every
// requested tag. A candidate declaring nothing is dropped when requirements
// are non-empty; with no requirements everything passes.
func (f *FilterChain) applyAccessibility(_ context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error) {
	if len(profile.Accessibility) == 0 {
		return candidates, nil
	}
	out := candidates[:0]
	for _, c := range candidates {
		if coversAll(c.Data.Accessibility, profile.Accessibility) {
			out = append(out, c)
		}
	}
	return out, nil
}

// applyHours drops explicitly non-operational venues and venues whose
// declared window excludes the current time. Missing or unparsable hours
// default to open.
func (f *FilterChain) applyHours(_ context.Context, _ pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error) {
	now := f.now()
	minuteOfDay := now.Hour()*60 + now.Minute()

	out := candidates[:0]
	for _, c := range candidates {
		if c.Data.Status == "closed" || c.Data.Status == "permanently_closed" {
			continue
		}
		if c.Data.OpeningHours != "" {
			openMin, closeMin, ok := utils.ParseHoursWindow(c.Data.OpeningHours)
			if ok && !utils.WithinHoursWindow(minuteOfDay, openMin, closeMin) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// applyTravel batch-queries the routing service for travel minutes from the
// profile origin and drops candidates beyond half the time window. Without
// an origin, or when routing is down, the filter is a no-op.
func (f *FilterChain) applyTravel(ctx context.Context, profile pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error) {
	if !profile.HasLocation() {
		return candidates, nil
	}

	destinations := make([]MatrixPoint, 0, len(candidates))
	for _, c := range candidates {
		if c.Data.Latitude == nil || c.Data.Longitude == nil {
			continue
		}
		destinations = append(destinations, MatrixPoint{ID: c.Slug, Lat: *c.Data.Latitude, Lng: *c.Data.Longitude})
	}
	if len(destinations) == 0 {
		return candidates, nil
	}

	origin := MatrixPoint{ID: "origin", Lat: *profile.Latitude, Lng: *profile.Longitude}
	durations, err := f.matrix.TravelSeconds(ctx, origin, destinations)
	if err != nil {
		return nil, err
	}

	// Half the window is reserved for travel, the rest for time on site.
	maxTravelMinutes := profile.TimeWindowMinutes / 2

	out := candidates[:0]
	for _, c := range candidates {
		seconds, ok := durations[c.Slug]
		if !ok {
			// No coordinates or no route; keep.
			out = append(out, c)
			continue
		}
		minutes := (seconds + 59) / 60
		if minutes > maxTravelMinutes {
			continue
		}
		c.SetMeta("travel_minutes", minutes)
		out = append(out, c)
	}
	return out, nil
}

// applyPartnerBoost never drops; it multiplies flagged partner venues'
// scores by a fixed factor and tags them.
func (f *FilterChain) applyPartnerBoost(_ context.Context, _ pipeline_models.RequestProfile, candidates []pipeline_models.Candidate) ([]pipeline_models.Candidate, error) {
	for i := range candidates {
		if !candidates[i].Data.Partner {
			continue
		}
		if candidates[i].Score != nil {
			boosted := *candidates[i].Score * PartnerBoostFactor
			candidates[i].Score = &boosted
		}
		candidates[i].AddSource("partner")
		candidates[i].SetMeta("partner_boost", PartnerBoostFactor)
	}
	return candidates, nil
}

func coversAll(declared, required []string) bool {
	if len(declared) == 0 {
		return false
	}
	set := make(map[string]bool, len(declared))
	for _, d := range declared {
		set[d] = true
	}
	for _, r := range required {
		if !set[r] {
			return false
		}
	}
	return true
}
