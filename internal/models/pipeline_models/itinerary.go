package pipeline_models

// ItineraryItem is one ordered stop. Provenance records whether the order
// came from the generative model or the deterministic fallback sort.
type ItineraryItem struct {
	Slug                 string `json:"slug"`
	Title                string `json:"title"`
	Sequence             int    `json:"sequence"`
	ArrivalOffsetMinutes int    `json:"arrival_offset_minutes"`
	DurationMinutes      int    `json:"duration_minutes"`
	Notes                string `json:"notes,omitempty"`
	Provenance           string `json:"provenance"`
}

const (
	ProvenanceModel    = "model"
	ProvenanceFallback = "fallback"
)

// AssociationRule is the mined co-occurrence statistic the boost stage
// consumes. Rule sets are replaced wholesale by the miner.
type AssociationRule struct {
	Seed        string  `json:"seed"`
	Recommended string  `json:"recommended"`
	Support     float64 `json:"support"`
	Confidence  float64 `json:"confidence"`
	Lift        float64 `json:"lift"`
}
