package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wayfare/pkg/utils"
)

// PlaceResult is one entry from the points-of-interest directory.
type PlaceResult struct {
	Slug          string
	Name          string
	Latitude      float64
	Longitude     float64
	Categories    []string
	OpeningHours  string
	PriceTier     *int
	Accessibility []string
	ContactInfo   string
}

// PlacesClientInterface is the directory contract. Nearby returns an empty
// slice for "no matches"; errors mean the call itself failed.
type PlacesClientInterface interface {
	Nearby(ctx context.Context, lat, lng float64, category string, radiusMeters int) ([]PlaceResult, error)
	Details(ctx context.Context, id string) (*PlaceResult, error)
}

// GeoapifyPlacesClient queries the Geoapify Places API.
type GeoapifyPlacesClient struct {
	HTTP   *http.Client
	APIKey string
	Host   string
}

func NewGeoapifyPlacesClient(apiKey string) *GeoapifyPlacesClient {
	return &GeoapifyPlacesClient{
		HTTP:   &http.Client{Timeout: 10 * time.Second},
		APIKey: apiKey,
		Host:   "api.geoapify.com",
	}
}

func (c *GeoapifyPlacesClient) Nearby(ctx context.Context, lat, lng float64, category string, radiusMeters int) ([]PlaceResult, error) {
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}

	u := url.URL{Scheme: "https", Host: c.Host, Path: "/v2/places"}
	q := url.Values{}
	q.Set("categories", category)
	q.Set("filter", fmt.Sprintf("circle:%f,%f,%d", lng, lat, radiusMeters))
	q.Set("limit", "20")
	q.Set("apiKey", c.APIKey)
	u.RawQuery = q.Encode()

	var payload struct {
		Features []geoapifyFeature `json:"features"`
	}
	if err := c.getJSON(ctx, u.String(), &payload); err != nil {
		return nil, err
	}

	results := make([]PlaceResult, 0, len(payload.Features))
	for _, f := range payload.Features {
		results = append(results, f.toPlaceResult())
	}
	return results, nil
}

func (c *GeoapifyPlacesClient) Details(ctx context.Context, id string) (*PlaceResult, error) {
	u := url.URL{Scheme: "https", Host: c.Host, Path: "/v2/place-details"}
	q := url.Values{}
	q.Set("id", id)
	q.Set("apiKey", c.APIKey)
	u.RawQuery = q.Encode()

	var payload struct {
		Features []geoapifyFeature `json:"features"`
	}
	if err := c.getJSON(ctx, u.String(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Features) == 0 {
		return nil, nil
	}
	result := payload.Features[0].toPlaceResult()
	return &result, nil
}

func (c *GeoapifyPlacesClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return utils.NewDependencyRejected("directory", 0, err.Error())
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return utils.NewDependencyUnavailable("directory", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return utils.NewDependencyRejected("directory", resp.StatusCode, "places request rejected: "+resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.NewDependencyRejected("directory", resp.StatusCode, "places decode: "+err.Error())
	}
	return nil
}

type geoapifyFeature struct {
	Properties struct {
		PlaceID      string   `json:"place_id"`
		Name         string   `json:"name"`
		Lat          float64  `json:"lat"`
		Lon          float64  `json:"lon"`
		Categories   []string `json:"categories"`
		OpeningHours string   `json:"opening_hours"`
		Contact      struct {
			Phone string `json:"phone"`
		} `json:"contact"`
		Facilities struct {
			Wheelchair bool `json:"wheelchair"`
		} `json:"facilities"`
		PriceLevel string `json:"price_level"`
	} `json:"properties"`
}

func (f geoapifyFeature) toPlaceResult() PlaceResult {
	p := f.Properties
	result := PlaceResult{
		Slug:         slugify(p.Name, p.PlaceID),
		Name:         p.Name,
		Latitude:     p.Lat,
		Longitude:    p.Lon,
		Categories:   p.Categories,
		OpeningHours: p.OpeningHours,
		ContactInfo:  p.Contact.Phone,
	}
	if p.Facilities.Wheelchair {
		result.Accessibility = []string{"wheelchair"}
	}
	if tier, err := strconv.Atoi(p.PriceLevel); err == nil && tier >= 1 && tier <= 4 {
		result.PriceTier = &tier
	}
	return result
}

// slugify builds a stable identity from the place name, falling back to the
// provider ID for unnamed results.
func slugify(name, fallbackID string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fallbackID
	}
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
