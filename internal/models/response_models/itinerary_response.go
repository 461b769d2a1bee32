package response_models

import "wayfare/internal/models/pipeline_models"

const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

type CandidateView struct {
	Slug    string                 `json:"slug"`
	Name    string                 `json:"name"`
	Score   *float64               `json:"score,omitempty"`
	Sources []string               `json:"sources"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

type ItineraryView struct {
	Items []pipeline_models.ItineraryItem `json:"items"`
}

// ItineraryResponse is the exposed pipeline contract. Status is "partial"
// when the pipeline completed but produced zero reordered items.
type ItineraryResponse struct {
	Status     string                 `json:"status"`
	Candidates []CandidateView        `json:"candidates"`
	Itinerary  ItineraryView          `json:"itinerary"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func BuildCandidateViews(candidates []pipeline_models.Candidate) []CandidateView {
	views := make([]CandidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, CandidateView{
			Slug:    c.Slug,
			Name:    c.Data.Name,
			Score:   c.Score,
			Sources: c.Sources,
			Meta:    c.Meta,
		})
	}
	return views
}

// VenueResponse is the details pass-through for a single venue.
type VenueResponse struct {
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Categories    []string `json:"categories,omitempty"`
	OpeningHours  string   `json:"opening_hours,omitempty"`
	PriceTier     *int     `json:"price_tier,omitempty"`
	Accessibility []string `json:"accessibility,omitempty"`
	ContactInfo   string   `json:"contact_info,omitempty"`
	Status        string   `json:"status,omitempty"`
	Partner       bool     `json:"partner,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Description   string   `json:"description,omitempty"`
}
