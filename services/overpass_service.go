package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"poi-server/utils/errors"
	"strings"
	"time"
)

// DefaultOverpassEndpoints is the ordered mirror list tried by the fetcher.
var DefaultOverpassEndpoints = []string{
	"https://overpass.kumi.systems/api/interpreter",
	"https://overpass-api.de/api/interpreter",
}

// OverpassElement is one raw entry of an Overpass response. Nodes carry
// lat/lon directly; ways and relations carry a computed center.
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// OverpassService posts queries to an ordered list of interpreter mirrors,
// retrying transient failures with a fixed delay schedule before falling
// over to the next mirror. It keeps no endpoint-health state between calls.
type OverpassService struct {
	endpoints []string
	client    *http.Client
	backoff   []time.Duration
}

func NewOverpassService(endpoints []string) *OverpassService {
	if len(endpoints) == 0 {
		endpoints = DefaultOverpassEndpoints
	}
	return &OverpassService{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 30 * time.Second},
		backoff:   []time.Duration{0, 1500 * time.Millisecond, 3 * time.Second},
	}
}

// retryableStatus classifies HTTP statuses worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return code >= 500
}

// FetchElements delivers the query to the first mirror that answers. Each
// mirror gets one attempt per backoff slot; transient statuses, timeouts and
// network errors consume an attempt, any other non-2xx status aborts
// immediately with the response body in the error.
func (s *OverpassService) FetchElements(ctx context.Context, query string) ([]OverpassElement, error) {
	form := url.Values{"data": {query}}.Encode()

	for _, endpoint := range s.endpoints {
		for attempt := 0; attempt < len(s.backoff); attempt++ {
			if wait := s.backoff[attempt]; wait > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(wait):
				}
			}

			elements, fatal, err := s.attempt(ctx, endpoint, form)
			if err == nil {
				return elements, nil
			}
			if fatal {
				return nil, err
			}
			log.Printf("Overpass attempt %d on %s failed: %v", attempt+1, endpoint, err)
		}
	}

	return nil, errors.ErrUpstreamExhausted
}

func (s *OverpassService) attempt(ctx context.Context, endpoint, form string) ([]OverpassElement, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return nil, true, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, true, ctx.Err()
		}
		// Timeouts and network errors are retryable.
		return nil, false, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		var decoded overpassResponse
		if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
			return nil, true, errors.Wrap(err, "UPSTREAM_BAD_RESPONSE", "Malformed Overpass response", http.StatusBadGateway)
		}
		return decoded.Elements, false, nil
	}

	if retryableStatus(res.StatusCode) {
		return nil, false, fmt.Errorf("overpass status %d", res.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return nil, true, errors.NewAPIError("UPSTREAM_ERROR",
		fmt.Sprintf("Overpass error %d", res.StatusCode), http.StatusBadGateway, string(body))
}
