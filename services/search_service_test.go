package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poi-server/models"
)

// overpassFixture serves a canned element batch and records the query.
func overpassFixture(t *testing.T, elements string, lastQuery *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		*lastQuery = r.PostForm.Get("data")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements":` + elements + `}`))
	}))
}

func newTestSearchService(t *testing.T, elements string, lastQuery *string) (*SearchService, *fakeBookmarkStore, func()) {
	server := overpassFixture(t, elements, lastQuery)
	store := newFakeBookmarkStore()
	rec := NewReconcilerService(store)
	overpass := newFastOverpass(server.URL)
	search := NewSearchService(NewGeocodeService("http://unused.invalid", nil), overpass, rec, nil)
	return search, store, server.Close
}

func TestSearchOpenNowExcludesHourlessPOIs(t *testing.T) {
	elements := `[
		{"type":"node","id":1,"lat":-33.865,"lon":151.21,"tags":{"name":"Always","amenity":"restaurant","opening_hours":"24/7"}},
		{"type":"node","id":2,"lat":-33.866,"lon":151.211,"tags":{"name":"NoHours","amenity":"restaurant"}},
		{"type":"node","id":3,"lat":-33.867,"lon":151.212,"tags":{"name":"NeverMatches","amenity":"restaurant","opening_hours":"closed on request"}}
	]`
	var lastQuery string
	search, _, closeFn := newTestSearchService(t, elements, &lastQuery)
	defer closeFn()

	result, err := search.Search(context.Background(), "", models.SearchFilter{
		Category: "restaurant",
		Radius:   1000,
		OpenNow:  true,
		Lat:      -33.8688,
		Lon:      151.2093,
		HasCoord: true,
	})

	require.NoError(t, err)
	require.Len(t, result.POIs, 1)
	assert.Equal(t, "Always", result.POIs[0].Name)
	assert.Contains(t, lastQuery, `node["amenity"="restaurant"](around:1000,`)
}

func TestSearchDefaultsRadiusAndSkipsOpenFilter(t *testing.T) {
	elements := `[
		{"type":"node","id":2,"lat":1.0,"lon":2.0,"tags":{"name":"Beta"}},
		{"type":"node","id":1,"lat":1.0,"lon":2.1,"tags":{"name":"Alpha"}},
		{"type":"way","id":3,"lat":0,"lon":0,"tags":{"name":"Dropped way"}}
	]`
	var lastQuery string
	search, _, closeFn := newTestSearchService(t, elements, &lastQuery)
	defer closeFn()

	result, err := search.Search(context.Background(), "", models.SearchFilter{
		Category: "bar",
		Lat:      1,
		Lon:      2,
		HasCoord: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1000, result.Radius)
	require.Len(t, result.POIs, 2)
	assert.Equal(t, "Alpha", result.POIs[0].Name, "sorted alphabetically")
	assert.Equal(t, 1, result.Dropped, "way without center is dropped, not fatal")
}

func TestSearchFlagsBookmarkedPOIs(t *testing.T) {
	elements := `[
		{"type":"node","id":1,"lat":12.345,"lon":67.89,"tags":{"name":"Saved place"}},
		{"type":"node","id":2,"lat":13.0,"lon":68.0,"tags":{"name":"Other place"}}
	]`
	var lastQuery string
	search, store, closeFn := newTestSearchService(t, elements, &lastQuery)
	defer closeFn()

	id, err := store.Add(context.Background(), models.Bookmark{
		UserID: "u1", Latitude: 12.345, Longitude: 67.89, Name: "Saved place",
	})
	require.NoError(t, err)

	result, err := search.Search(context.Background(), "u1", models.SearchFilter{
		Category: "cafes",
		Lat:      12.3,
		Lon:      67.8,
		HasCoord: true,
	})

	require.NoError(t, err)
	require.Len(t, result.POIs, 2)
	byName := map[string]models.POI{}
	for _, p := range result.POIs {
		byName[p.Name] = p
	}
	assert.True(t, byName["Saved place"].Bookmarked)
	assert.Equal(t, id, byName["Saved place"].BookmarkID)
	assert.False(t, byName["Other place"].Bookmarked)
}

func TestSearchRejectsMissingCategoryAndCenter(t *testing.T) {
	var lastQuery string
	search, _, closeFn := newTestSearchService(t, `[]`, &lastQuery)
	defer closeFn()

	_, err := search.Search(context.Background(), "", models.SearchFilter{Lat: 1, Lon: 2, HasCoord: true})
	require.Error(t, err)

	_, err = search.Search(context.Background(), "", models.SearchFilter{Category: "bar"})
	require.Error(t, err, "no coordinates and no city/country")
}

func TestSuggestionsNormalizeAndFlag(t *testing.T) {
	var lastQuery string
	search, store, closeFn := newTestSearchService(t, `[]`, &lastQuery)
	defer closeFn()

	_, err := store.Add(context.Background(), models.Bookmark{
		UserID: "u1", Latitude: 12.345, Longitude: 67.89, Name: "Saved",
	})
	require.NoError(t, err)

	raw := []byte(`[
		{"name": "Saved", "coordinates": "12.345, 67.89"},
		{"name": "Fresh", "coordinates": {"latitude": 1, "longitude": 2}},
		{"name": "Broken", "coordinates": "nope"}
	]`)
	var suggestions []Suggestion
	require.NoError(t, json.Unmarshal(raw, &suggestions))

	result := search.Suggestions(context.Background(), "u1", suggestions)

	require.Len(t, result.POIs, 2)
	assert.Equal(t, 1, result.Dropped)
	assert.True(t, result.POIs[0].Bookmarked)
	assert.False(t, result.POIs[1].Bookmarked)
}
