package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wayfare/internal/models/pipeline_models"
)

type mockMatrix struct {
	durations map[string]int
	err       error
	calls     int
}

func (m *mockMatrix) TravelSeconds(ctx context.Context, origin MatrixPoint, destinations []MatrixPoint) (map[string]int, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.durations, nil
}

func tierCandidate(slug string, tier *int) pipeline_models.Candidate {
	return pipeline_models.NewCandidate(slug, pipeline_models.Float(0.5), SourceVector, pipeline_models.VenueData{
		Name:      slug,
		PriceTier: tier,
	})
}

func lowBudgetProfile() pipeline_models.RequestProfile {
	return pipeline_models.RequestProfile{
		Interests:         []string{"food"},
		Budget:            pipeline_models.BudgetLow,
		TimeWindowMinutes: 180,
		PartySize:         1,
	}
}

func slugsOf(candidates []pipeline_models.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Slug)
	}
	return out
}

func TestBudgetFilter(t *testing.T) {
	fc := NewFilterChain(&mockMatrix{})
	ctx := context.Background()

	t.Run("equal tier kept, higher dropped, undeclared kept", func(t *testing.T) {
		candidates := []pipeline_models.Candidate{
			tierCandidate("equal", pipeline_models.Int(1)),
			tierCandidate("above", pipeline_models.Int(2)),
			tierCandidate("unknown", nil),
		}
		out, err := fc.applyBudget(ctx, lowBudgetProfile(), candidates)
		if err != nil {
			t.Fatalf("applyBudget: %v", err)
		}
		got := slugsOf(out)
		if len(got) != 2 || got[0] != "equal" || got[1] != "unknown" {
			t.Errorf("expected [equal unknown], got %v", got)
		}
	})
}

func TestAccessibilityFilter(t *testing.T) {
	fc := NewFilterChain(&mockMatrix{})
	ctx := context.Background()

	accessCandidate := func(slug string, attrs []string) pipeline_models.Candidate {
		return pipeline_models.NewCandidate(slug, nil, SourceDirectory, pipeline_models.VenueData{Accessibility: attrs})
	}

	t.Run("declared attributes must cover the request", func(t *testing.T) {
		profile := lowBudgetProfile()
		profile.Accessibility = []string{"wheelchair"}

		candidates := []pipeline_models.Candidate{
			accessCandidate("covered", []string{"wheelchair", "braille"}),
			accessCandidate("partial", []string{"braille"}),
			accessCandidate("silent", nil),
		}
		out, _ := fc.applyAccessibility(ctx, profile, candidates)
		got := slugsOf(out)
		if len(got) != 1 || got[0] != "covered" {
			t.Errorf("expected [covered], got %v", got)
		}
	})

	t.Run("no requirements keeps everything", func(t *testing.T) {
		candidates := []pipeline_models.Candidate{accessCandidate("silent", nil)}
		out, _ := fc.applyAccessibility(ctx, lowBudgetProfile(), candidates)
		if len(out) != 1 {
			t.Errorf("expected all kept, got %v", slugsOf(out))
		}
	})
}

func TestHoursFilter(t *testing.T) {
	fc := NewFilterChain(&mockMatrix{})
	// Fixed clock: 10:00.
	fc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	hoursCandidate := func(slug, status, hours string) pipeline_models.Candidate {
		return pipeline_models.NewCandidate(slug, nil, SourceDirectory, pipeline_models.VenueData{Status: status, OpeningHours: hours})
	}

	candidates := []pipeline_models.Candidate{
		hoursCandidate("open-now", "active", "09:00-18:00"),
		hoursCandidate("opens-later", "active", "12:00-22:00"),
		hoursCandidate("closed-status", "closed", ""),
		hoursCandidate("no-hours", "active", ""),
		hoursCandidate("bad-format", "active", "all day"),
	}

	out, _ := fc.applyHours(ctx, lowBudgetProfile(), candidates)
	got := slugsOf(out)
	want := []string{"open-now", "no-hours", "bad-format"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func locatedCandidate(slug string, lat, lng float64) pipeline_models.Candidate {
	return pipeline_models.NewCandidate(slug, pipeline_models.Float(0.5), SourceVector, pipeline_models.VenueData{
		Name:      slug,
		Latitude:  pipeline_models.Float(lat),
		Longitude: pipeline_models.Float(lng),
	})
}

func TestTravelFilter(t *testing.T) {
	ctx := context.Background()

	profile := lowBudgetProfile()
	profile.Latitude = pipeline_models.Float(40.70)
	profile.Longitude = pipeline_models.Float(-73.99)
	// 180-minute window: one-way budget is 90 minutes.

	t.Run("drops beyond half the window and annotates survivors", func(t *testing.T) {
		matrix := &mockMatrix{durations: map[string]int{
			"near": 20 * 60,
			"far":  120 * 60,
		}}
		fc := NewFilterChain(matrix)

		candidates := []pipeline_models.Candidate{
			locatedCandidate("near", 40.71, -73.98),
			locatedCandidate("far", 41.50, -74.90),
		}
		out, err := fc.applyTravel(ctx, profile, candidates)
		if err != nil {
			t.Fatalf("applyTravel: %v", err)
		}
		if got := slugsOf(out); len(got) != 1 || got[0] != "near" {
			t.Fatalf("expected [near], got %v", got)
		}
		if out[0].Meta["travel_minutes"] != 20 {
			t.Errorf("expected travel_minutes 20, got %v", out[0].Meta["travel_minutes"])
		}
	})

	t.Run("no origin skips the filter", func(t *testing.T) {
		matrix := &mockMatrix{}
		fc := NewFilterChain(matrix)
		candidates := []pipeline_models.Candidate{locatedCandidate("near", 40.71, -73.98)}
		out, _ := fc.applyTravel(ctx, lowBudgetProfile(), candidates)
		if len(out) != 1 || matrix.calls != 0 {
			t.Errorf("expected untouched list without a routing call")
		}
	})

	t.Run("routing failure fails open through the chain", func(t *testing.T) {
		matrix := &mockMatrix{err: errors.New("timeout")}
		fc := NewFilterChain(matrix)
		candidates := []pipeline_models.Candidate{
			locatedCandidate("near", 40.71, -73.98),
			locatedCandidate("far", 41.50, -74.90),
		}
		out := fc.Run(ctx, profile, candidates)
		if len(out) != 2 {
			t.Errorf("expected routing failure to keep all candidates, got %v", slugsOf(out))
		}
	})
}

func TestPartnerBoost(t *testing.T) {
	fc := NewFilterChain(&mockMatrix{})
	ctx := context.Background()

	partner := pipeline_models.NewCandidate("partner", pipeline_models.Float(1.0), SourceVector, pipeline_models.VenueData{Partner: true})
	regular := pipeline_models.NewCandidate("regular", pipeline_models.Float(1.0), SourceVector, pipeline_models.VenueData{})

	out, _ := fc.applyPartnerBoost(ctx, lowBudgetProfile(), []pipeline_models.Candidate{partner, regular})

	if len(out) != 2 {
		t.Fatalf("partner boost must never drop, got %d", len(out))
	}
	if *out[0].Score != PartnerBoostFactor {
		t.Errorf("expected partner score %v, got %v", PartnerBoostFactor, *out[0].Score)
	}
	if *out[1].Score != 1.0 {
		t.Errorf("expected regular score untouched, got %v", *out[1].Score)
	}
	tagged := false
	for _, s := range out[0].Sources {
		if s == "partner" {
			tagged = true
		}
	}
	if !tagged {
		t.Errorf("expected partner tag in sources, got %v", out[0].Sources)
	}
}
