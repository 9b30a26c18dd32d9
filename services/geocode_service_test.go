package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poi-server/utils/errors"
)

func nominatimStub(t *testing.T, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestGeocodeSearch(t *testing.T) {
	server := nominatimStub(t, `[{"display_name":"Sydney, Australia","lat":"-33.8688","lon":"151.2093"}]`)
	defer server.Close()

	s := NewGeocodeService(server.URL, nil)
	results, err := s.Search(context.Background(), "Sydney, Australia", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Sydney, Australia", results[0].DisplayName)
	assert.Equal(t, "-33.8688", results[0].Lat)
}

func TestLocateParsesAndValidates(t *testing.T) {
	server := nominatimStub(t, `[{"display_name":"Sydney","lat":"-33.8688","lon":"151.2093"}]`)
	defer server.Close()

	s := NewGeocodeService(server.URL, nil)
	lat, lon, err := s.Locate(context.Background(), "Sydney")

	require.NoError(t, err)
	assert.Equal(t, -33.8688, lat)
	assert.Equal(t, 151.2093, lon)
}

func TestLocateNoResults(t *testing.T) {
	server := nominatimStub(t, `[]`)
	defer server.Close()

	s := NewGeocodeService(server.URL, nil)
	_, _, err := s.Locate(context.Background(), "Nowheresville, Atlantis")

	assert.Equal(t, errors.ErrLocationNotFound, err)
}

func TestLocateRejectsUnparseableCoordinates(t *testing.T) {
	server := nominatimStub(t, `[{"display_name":"Broken","lat":"not-a-number","lon":"151.2"}]`)
	defer server.Close()

	s := NewGeocodeService(server.URL, nil)
	_, _, err := s.Locate(context.Background(), "Broken")

	assert.Equal(t, errors.ErrLocationNotFound, err)
}

func TestGeocodeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewGeocodeService(server.URL, nil)
	_, err := s.Search(context.Background(), "Sydney", 1)

	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, "GEOCODE_ERROR", apiErr.Code)
}
