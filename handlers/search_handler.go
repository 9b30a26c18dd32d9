package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"poi-server/middleware"
	"poi-server/models"
	"poi-server/services"
	"poi-server/utils/errors"
)

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// GetPOIs handles GET /pois. The center comes either from lat/lon query
// params or from geocoding city+country.
func (h *SearchHandler) GetPOIs(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("userID").(string)

	q := r.URL.Query()
	filter := models.SearchFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		Country:  q.Get("country"),
	}
	if filter.Category == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil || radius <= 0 {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
		filter.Radius = radius
	}
	if q.Get("open_now") == "true" {
		filter.OpenNow = true
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
		filter.Lat, filter.Lon, filter.HasCoord = lat, lon, true
	}

	result, err := h.searchService.Search(r.Context(), userID, filter)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// PostSuggestions handles POST /pois/suggestions: normalize a batch of
// free-form AI results and flag the caller's bookmarks among them.
func (h *SearchHandler) PostSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("userID").(string)

	var input struct {
		Suggestions []services.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	result := h.searchService.Suggestions(r.Context(), userID, input.Suggestions)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
