package pipeline_models

// VenueData carries the venue attributes a candidate accumulates during
// retrieval and hydration. Fields are optional unless a filter needs them;
// filters fail open when a field is absent.
type VenueData struct {
	Name          string   `json:"name"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
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

// Candidate is one venue under consideration for the itinerary. Slug is the
// stable identity within a run; Sources is append-only provenance.
type Candidate struct {
	Slug    string                 `json:"slug"`
	Score   *float64               `json:"score,omitempty"`
	Sources []string               `json:"sources"`
	Data    VenueData              `json:"data"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func NewCandidate(slug string, score *float64, source string, data VenueData) Candidate {
	return Candidate{
		Slug:    slug,
		Score:   score,
		Sources: []string{source},
		Data:    data,
		Meta:    map[string]interface{}{},
	}
}

// AddSource appends a provenance tag if not already present.
func (c *Candidate) AddSource(source string) {
	for _, s := range c.Sources {
		if s == source {
			return
		}
	}
	c.Sources = append(c.Sources, source)
}

func (c *Candidate) SetMeta(key string, value interface{}) {
	if c.Meta == nil {
		c.Meta = map[string]interface{}{}
	}
	c.Meta[key] = value
}

// ScoreOrZero is used for ordering; unscored candidates sort last.
func (c *Candidate) ScoreOrZero() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// CombineScores merges two nullable scores. Max is commutative and
// order-independent, which fusion relies on.
func CombineScores(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	v := *a
	if *b > v {
		v = *b
	}
	return &v
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
