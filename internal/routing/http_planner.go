package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPPlanner talks to an OpenRouteService-compatible API: every stop is
// geocoded, then one directions request covers the whole route.
type HTTPPlanner struct {
	baseURL string
	apiKey  string
	profile string
	client  *http.Client
}

func NewHTTPPlanner(baseURL, apiKey, profile string, client *http.Client) *HTTPPlanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if profile == "" {
		profile = "driving-car"
	}
	return &HTTPPlanner{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		profile: profile,
		client:  client,
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

func (p *HTTPPlanner) Plan(ctx context.Context, stops []string) (*Itinerary, error) {
	itinerary := &Itinerary{Stops: append([]string(nil), stops...), Provider: "openrouteservice"}
	if len(stops) < 2 {
		return itinerary, nil
	}

	coordinates := make([][]float64, 0, len(stops))
	for _, stop := range stops {
		coord, err := p.geocode(ctx, stop)
		if err != nil {
			return nil, err
		}
		coordinates = append(coordinates, coord)
	}

	body, err := json.Marshal(directionsRequest{Coordinates: coordinates})
	if err != nil {
		return nil, fmt.Errorf("directions request serialization error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/directions/%s", p.baseURL, url.PathEscape(p.profile)), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", p.apiKey)

	var directions directionsResponse
	if err := p.do(req, &directions); err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(directions.Routes) == 0 {
		return nil, fmt.Errorf("directions response has no route")
	}

	itinerary.DistanceMeters = directions.Routes[0].Summary.Distance
	itinerary.DurationSeconds = directions.Routes[0].Summary.Duration
	return itinerary, nil
}

func (p *HTTPPlanner) geocode(ctx context.Context, address string) ([]float64, error) {
	query := url.Values{}
	query.Set("api_key", p.apiKey)
	query.Set("text", address)
	query.Set("size", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/geocode/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var geo geocodeResponse
	if err := p.do(req, &geo); err != nil {
		return nil, fmt.Errorf("geocoding %q failed: %w", address, err)
	}
	if len(geo.Features) == 0 || len(geo.Features[0].Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("address %q could not be geocoded", address)
	}
	return geo.Features[0].Geometry.Coordinates[:2], nil
}

func (p *HTTPPlanner) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("response deserialization error: %w", err)
	}
	return nil
}
