package pipeline_models

import (
	"sort"
	"strings"

	"wayfare/pkg/utils"
)

const (
	BudgetLow    = "low"
	BudgetMedium = "medium"
	BudgetHigh   = "high"

	MinTimeWindowMinutes = 30
	MaxTimeWindowMinutes = 960
)

var budgetOrdinals = map[string]int{
	BudgetLow:    1,
	BudgetMedium: 2,
	BudgetHigh:   3,
}

// RequestProfile is the normalized visitor profile. Treat as immutable once
// NormalizeProfile has returned it.
type RequestProfile struct {
	Interests         []string `json:"interests"`
	Budget            string   `json:"budget"`
	TimeWindowMinutes int      `json:"time_window_minutes"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	Accessibility     []string `json:"accessibility,omitempty"`
	PartySize         int      `json:"party_size"`
}

func (p RequestProfile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// BudgetOrdinal maps the budget tier onto the 1..3 scale price tiers use.
func (p RequestProfile) BudgetOrdinal() int {
	return budgetOrdinals[p.Budget]
}

// NormalizeProfile validates the raw profile and returns a canonical copy:
// interests and accessibility tags lowercased, deduplicated and sorted so
// identical profiles hash identically for the cache.
func NormalizeProfile(raw RequestProfile) (RequestProfile, error) {
	interests := normalizeTagSet(raw.Interests)
	if len(interests) == 0 {
		return RequestProfile{}, utils.NewValidationError("interests", "at least one interest is required")
	}

	budget := strings.ToLower(strings.TrimSpace(raw.Budget))
	if _, ok := budgetOrdinals[budget]; !ok {
		return RequestProfile{}, utils.NewValidationError("budget", "budget must be one of low, medium, high")
	}

	if raw.TimeWindowMinutes < MinTimeWindowMinutes || raw.TimeWindowMinutes > MaxTimeWindowMinutes {
		return RequestProfile{}, utils.NewValidationError("time_window_minutes", "time window must be between 30 and 960 minutes")
	}

	if (raw.Latitude == nil) != (raw.Longitude == nil) {
		return RequestProfile{}, utils.NewValidationError("location", "latitude and longitude must be provided together")
	}
	if raw.Latitude != nil {
		if *raw.Latitude < -90 || *raw.Latitude > 90 {
			return RequestProfile{}, utils.NewValidationError("latitude", "latitude out of range")
		}
		if *raw.Longitude < -180 || *raw.Longitude > 180 {
			return RequestProfile{}, utils.NewValidationError("longitude", "longitude out of range")
		}
	}

	partySize := raw.PartySize
	if partySize == 0 {
		partySize = 1
	}
	if partySize < 1 {
		return RequestProfile{}, utils.NewValidationError("party_size", "party size must be positive")
	}

	return RequestProfile{
		Interests:         interests,
		Budget:            budget,
		TimeWindowMinutes: raw.TimeWindowMinutes,
		Latitude:          raw.Latitude,
		Longitude:         raw.Longitude,
		Accessibility:     normalizeTagSet(raw.Accessibility),
		PartySize:         partySize,
	}, nil
}

func normalizeTagSet(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
