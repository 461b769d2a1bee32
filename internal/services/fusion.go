package services

import (
	"wayfare/internal/models/pipeline_models"
)

// FuseCandidates merges candidate lists by slug. Overlapping candidates
// combine scores with the commutative max rule and union their source tags;
// non-overlapping candidates pass through unchanged. Fusing a fused list
// with an empty list is a no-op.
func FuseCandidates(lists ...[]pipeline_models.Candidate) []pipeline_models.Candidate {
	merged := make(map[string]*pipeline_models.Candidate)
	order := make([]string, 0)

	for _, list := range lists {
		for _, c := range list {
			existing, ok := merged[c.Slug]
			if !ok {
				copied := c
				copied.Sources = append([]string(nil), c.Sources...)
				merged[c.Slug] = &copied
				order = append(order, c.Slug)
				continue
			}

			existing.Score = pipeline_models.CombineScores(existing.Score, c.Score)
			for _, src := range c.Sources {
				existing.AddSource(src)
			}
			mergeVenueData(&existing.Data, c.Data)
			for k, v := range c.Meta {
				existing.SetMeta(k, v)
			}
		}
	}

	out := make([]pipeline_models.Candidate, 0, len(order))
	for _, slug := range order {
		out = append(out, *merged[slug])
	}
	return out
}

// mergeVenueData fills gaps in dst with values from src; populated fields
// are never overwritten, so merge order cannot change the outcome for a
// field both sides declare.
func mergeVenueData(dst *pipeline_models.VenueData, src pipeline_models.VenueData) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Latitude == nil {
		dst.Latitude = src.Latitude
	}
	if dst.Longitude == nil {
		dst.Longitude = src.Longitude
	}
	if len(dst.Categories) == 0 {
		dst.Categories = src.Categories
	}
	if dst.OpeningHours == "" {
		dst.OpeningHours = src.OpeningHours
	}
	if dst.PriceTier == nil {
		dst.PriceTier = src.PriceTier
	}
	if len(dst.Accessibility) == 0 {
		dst.Accessibility = src.Accessibility
	}
	if dst.ContactInfo == "" {
		dst.ContactInfo = src.ContactInfo
	}
	if dst.Status == "" {
		dst.Status = src.Status
	}
	if src.Partner {
		dst.Partner = true
	}
	if dst.Rating == nil {
		dst.Rating = src.Rating
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
}
