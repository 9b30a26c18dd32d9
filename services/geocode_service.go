package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"poi-server/models"
	"poi-server/utils/errors"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// GeocodeResult mirrors one entry of the Nominatim JSON response; the
// service returns coordinates as strings.
type GeocodeResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// GeocodeService resolves freeform place queries through Nominatim, with a
// Redis read-through cache so repeated city lookups skip the network.
type GeocodeService struct {
	baseURL     string
	client      *http.Client
	redisClient *redis.Client
}

func NewGeocodeService(baseURL string, redisClient *redis.Client) *GeocodeService {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &GeocodeService{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		redisClient: redisClient,
	}
}

// Search performs a forward-geocoding query.
func (s *GeocodeService) Search(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = 1
	}

	cacheKey := fmt.Sprintf("geocode:%d:%s", limit, query)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var results []GeocodeResult
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return results, nil
			}
			log.Printf("Failed to unmarshal cached geocode result for %q: %v", query, err)
		}
	}

	u, err := url.Parse(s.baseURL + "/search")
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("GEOCODE_ERROR",
			fmt.Sprintf("Geocoding failed with status %d", res.StatusCode), http.StatusBadGateway)
	}

	var results []GeocodeResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return nil, errors.Wrap(err, "GEOCODE_ERROR", "Malformed geocoding response", http.StatusBadGateway)
	}

	if s.redisClient != nil {
		if encoded, err := json.Marshal(results); err == nil {
			s.redisClient.Set(ctx, cacheKey, encoded, 24*time.Hour)
		}
	}

	return results, nil
}

// Locate resolves a query to a single validated center point.
func (s *GeocodeService) Locate(ctx context.Context, query string) (float64, float64, error) {
	results, err := s.Search(ctx, query, 1)
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, errors.ErrLocationNotFound
	}
	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil || !models.ValidCoords(lat, lon) {
		return 0, 0, errors.ErrLocationNotFound
	}
	return lat, lon, nil
}
