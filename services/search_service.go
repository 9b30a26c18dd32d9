package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"poi-server/models"
	"poi-server/utils/errors"
)

const searchCacheTTL = 10 * time.Minute

// SearchResult is a finished category search: normalized, sorted, filtered
// and bookmark-flagged POIs plus the count of raw entries dropped during
// normalization.
type SearchResult struct {
	POIs    []models.POI `json:"pois"`
	Count   int          `json:"count"`
	Lat     float64      `json:"lat"`
	Lon     float64      `json:"lon"`
	Radius  int          `json:"radius"`
	Dropped int          `json:"dropped,omitempty"`
}

// SearchService runs the full query pipeline: resolve a center, build the
// category query, fetch with fallback, normalize, sort, apply the open-now
// filter, and reconcile against the user's bookmarks. Normalized results are
// cached in Redis before bookmark flags are applied, since flags are
// per-user.
type SearchService struct {
	geocode     *GeocodeService
	overpass    *OverpassService
	reconciler  *ReconcilerService
	redisClient *redis.Client
}

func NewSearchService(geocode *GeocodeService, overpass *OverpassService, reconciler *ReconcilerService, redisClient *redis.Client) *SearchService {
	return &SearchService{
		geocode:     geocode,
		overpass:    overpass,
		reconciler:  reconciler,
		redisClient: redisClient,
	}
}

// Search executes a category search for the user. userID may be empty, in
// which case no bookmark flags are applied.
func (s *SearchService) Search(ctx context.Context, userID string, filter models.SearchFilter) (*SearchResult, error) {
	if filter.Category == "" {
		return nil, errors.ErrInvalidInput
	}
	if filter.Radius <= 0 {
		filter.Radius = 1000
	}

	lat, lon := filter.Lat, filter.Lon
	if !filter.HasCoord {
		place := strings.TrimSpace(strings.Trim(filter.City+", "+filter.Country, ", "))
		if place == "" {
			return nil, errors.ErrInvalidInput
		}
		var err error
		lat, lon, err = s.geocode.Locate(ctx, place)
		if err != nil {
			return nil, err
		}
	}
	if !models.ValidCoords(lat, lon) {
		return nil, errors.ErrInvalidInput
	}

	normalized, err := s.fetchNormalized(ctx, filter.Category, lat, lon, filter.Radius)
	if err != nil {
		return nil, err
	}

	pois := normalized.POIs
	SortPOIs(pois, filter.Category)
	if filter.OpenNow {
		pois = FilterOpenNow(pois, filter.Category, time.Now())
	}
	if userID != "" {
		pois = s.reconciler.Reconcile(ctx, userID, pois)
	}

	return &SearchResult{
		POIs:    pois,
		Count:   len(pois),
		Lat:     lat,
		Lon:     lon,
		Radius:  filter.Radius,
		Dropped: len(normalized.Dropped),
	}, nil
}

// Suggestions normalizes a batch of free-form AI results and flags the
// user's bookmarks among them.
func (s *SearchService) Suggestions(ctx context.Context, userID string, suggestions []Suggestion) *SearchResult {
	normalized := NormalizeSuggestions(suggestions)
	pois := normalized.POIs
	if userID != "" {
		pois = s.reconciler.Reconcile(ctx, userID, pois)
	}
	return &SearchResult{
		POIs:    pois,
		Count:   len(pois),
		Dropped: len(normalized.Dropped),
	}
}

func (s *SearchService) fetchNormalized(ctx context.Context, category string, lat, lon float64, radius int) (NormalizeResult, error) {
	cacheKey := fmt.Sprintf("search:%s:%.5f:%.5f:%d", category, lat, lon, radius)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var result NormalizeResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result, nil
			}
			log.Printf("Failed to unmarshal cached search result: %v", err)
		}
	}

	query := BuildOverpassQuery(category, lat, lon, radius)
	elements, err := s.overpass.FetchElements(ctx, query)
	if err != nil {
		return NormalizeResult{}, err
	}

	result := NormalizeElements(elements, category)
	if s.redisClient != nil {
		if encoded, err := json.Marshal(result); err == nil {
			s.redisClient.Set(ctx, cacheKey, encoded, searchCacheTTL)
		}
	}
	return result, nil
}
