package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wayfare/pkg/cache"
	"wayfare/pkg/utils"
)

type MatrixPoint struct {
	ID  string
	Lat float64
	Lng float64
}

// DurationMatrixService answers "how long from origin to each destination",
// in seconds, keyed by destination ID.
type DurationMatrixService interface {
	TravelSeconds(ctx context.Context, origin MatrixPoint, destinations []MatrixPoint) (map[string]int, error)
}

// MapboxMatrixClient calls the Mapbox Directions-Matrix API with the origin
// as the single source. Batches are cached under the intermediate TTL.
type MapboxMatrixClient struct {
	HTTP        *http.Client
	AccessToken string
	Cache       cache.Store
	Profile     string // "driving", "walking"
}

func NewMapboxMatrixClient(accessToken string, store cache.Store) *MapboxMatrixClient {
	return &MapboxMatrixClient{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		AccessToken: accessToken,
		Cache:       store,
		Profile:     "driving",
	}
}

type matrixCacheKey struct {
	Mode         string   `json:"mode"`
	Origin       string   `json:"origin"`
	Destinations []string `json:"destinations"`
}

func (c *MapboxMatrixClient) TravelSeconds(ctx context.Context, origin MatrixPoint, destinations []MatrixPoint) (map[string]int, error) {
	if len(destinations) == 0 {
		return map[string]int{}, nil
	}

	ids := make([]string, 0, len(destinations))
	for _, d := range destinations {
		ids = append(ids, d.ID)
	}
	key := matrixCacheKey{
		Mode:         c.Profile,
		Origin:       fmt.Sprintf("%.5f,%.5f", origin.Lat, origin.Lng),
		Destinations: ids,
	}

	cached := map[string]int{}
	if ok, _ := cache.GetJSON(ctx, c.Cache, "matrix.v1", key, &cached); ok {
		return cached, nil
	}

	coords := make([]string, 0, len(destinations)+1)
	coords = append(coords, fmt.Sprintf("%f,%f", origin.Lng, origin.Lat))
	for _, d := range destinations {
		coords = append(coords, fmt.Sprintf("%f,%f", d.Lng, d.Lat))
	}

	u := url.URL{
		Scheme: "https",
		Host:   "api.mapbox.com",
		Path:   fmt.Sprintf("/directions-matrix/v1/mapbox/%s/%s", c.Profile, strings.Join(coords, ";")),
	}
	q := url.Values{}
	q.Set("annotations", "duration")
	q.Set("sources", "0")
	q.Set("access_token", c.AccessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, utils.NewDependencyRejected("travel", 0, err.Error())
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, utils.NewDependencyUnavailable("travel", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, utils.NewDependencyRejected("travel", resp.StatusCode, "matrix request rejected: "+resp.Status)
	}

	var payload struct {
		Durations [][]*float64 `json:"durations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, utils.NewDependencyRejected("travel", resp.StatusCode, "matrix decode: "+err.Error())
	}
	if len(payload.Durations) == 0 {
		return nil, utils.NewDependencyRejected("travel", resp.StatusCode, "matrix response missing durations")
	}

	// Row 0 holds origin-to-destination durations; column 0 is the origin
	// itself.
	row := payload.Durations[0]
	out := make(map[string]int, len(destinations))
	for i, d := range destinations {
		col := i + 1
		if col < len(row) && row[col] != nil {
			out[d.ID] = int(*row[col] + 0.5)
		}
	}

	_ = cache.SetJSON(ctx, c.Cache, "matrix.v1", key, out, cache.TTLIntermediate)
	return out, nil
}
