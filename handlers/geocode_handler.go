package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"poi-server/middleware"
	"poi-server/services"
	"poi-server/utils/errors"
)

type GeocodeHandler struct {
	geocodeService *services.GeocodeService
}

func NewGeocodeHandler(geocodeService *services.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geocodeService: geocodeService}
}

// Search handles GET /geocode?q=<text>&limit=<n>.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	limit := 1
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	results, err := h.geocodeService.Search(r.Context(), query, limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
