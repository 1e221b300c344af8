package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/freshhaul/coldroute/internal/models"
)

// DistrictResolver resolves the district names a delivery route passes
// through. Callers must treat failures as degradable: an unreachable resolver
// never blocks a delivery from starting.
type DistrictResolver interface {
	RouteDistricts(ctx context.Context, start, end models.GeoPoint) ([]string, error)
}

// GoogleDistrictResolver resolves districts via the Google Maps reverse
// geocoding API, sampling the start, midpoint and end of the route.
type GoogleDistrictResolver struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogleDistrictResolver creates a resolver using the GOOGLE_MAPS_API_KEY
// environment variable. The HTTP timeout is the only guard against a hanging
// upstream.
func NewGoogleDistrictResolver() (*GoogleDistrictResolver, error) {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY environment variable is required")
	}
	return &GoogleDistrictResolver{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		client:  &http.Client{Timeout: 8 * time.Second},
	}, nil
}

// NewDistrictResolverWithBase creates a resolver against a custom endpoint.
func NewDistrictResolverWithBase(apiKey, baseURL string, client *http.Client) *GoogleDistrictResolver {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &GoogleDistrictResolver{apiKey: apiKey, baseURL: baseURL, client: client}
}

type geocodeResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"`
}

// RouteDistricts reverse-geocodes the start, midpoint and end of the route and
// returns the distinct district names in route order.
func (r *GoogleDistrictResolver) RouteDistricts(ctx context.Context, start, end models.GeoPoint) ([]string, error) {
	mid := models.GeoPoint{
		Latitude:  (start.Latitude + end.Latitude) / 2,
		Longitude: (start.Longitude + end.Longitude) / 2,
	}

	var districts []string
	seen := make(map[string]struct{})
	for _, point := range []models.GeoPoint{start, mid, end} {
		name, err := r.districtAt(ctx, point)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		districts = append(districts, name)
	}
	return districts, nil
}

func (r *GoogleDistrictResolver) districtAt(ctx context.Context, point models.GeoPoint) (string, error) {
	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", point.Latitude, point.Longitude))
	params.Add("result_type", "administrative_area_level_2|locality")
	params.Add("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding API returned status code %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// ZERO_RESULTS is a valid answer for open water or unnamed areas.
	if result.Status == "ZERO_RESULTS" || len(result.Results) == 0 {
		return "", nil
	}
	if result.Status != "OK" {
		return "", fmt.Errorf("geocoding API returned status: %s", result.Status)
	}

	for _, component := range result.Results[0].AddressComponents {
		for _, t := range component.Types {
			if t == "administrative_area_level_2" || t == "locality" {
				return component.LongName, nil
			}
		}
	}
	return "", nil
}
