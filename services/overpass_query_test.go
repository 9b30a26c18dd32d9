package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOverpassQueryEnvelope(t *testing.T) {
	query := BuildOverpassQuery("shopping", -33.8688, 151.2093, 1000)

	assert.True(t, strings.HasPrefix(query, "[out:json][timeout:25];("))
	assert.True(t, strings.HasSuffix(query, ");out center;"))
	assert.Contains(t, query, `nwr["building"="mall"](around:1000,-33.868800,151.209300);`)
	assert.Contains(t, query, `nwr["amenity"="marketplace"]`)
	assert.Contains(t, query, `nwr["shop"="market"]`)
	assert.Contains(t, query, `nwr["landuse"="retail"]`)
}

func TestBuildOverpassQueryNightlifeUnionsGeometryKinds(t *testing.T) {
	query := BuildOverpassQuery("nightlife", 51.5, -0.12, 500)

	for _, kind := range []string{"node", "way", "relation"} {
		for _, amenity := range []string{"nightclub", "casino", "music_venue", "bar"} {
			assert.Contains(t, query, kind+`["amenity"="`+amenity+`"]`)
		}
	}
}

func TestBuildOverpassQueryComplexFilters(t *testing.T) {
	nature := BuildOverpassQuery("nature", 0, 0, 2000)
	assert.Contains(t, nature, `nwr["natural"="water"]["water"="lake"]`)
	assert.Contains(t, nature, `relation["route"="hiking"]`)

	sports := BuildOverpassQuery("sports", 0, 0, 2000)
	assert.Contains(t, sports, `["access"!~"^(private|residents|customers)$"]`)
	assert.Contains(t, sports, `nwr["leisure"="pitch"]["sport"]`)

	arts := BuildOverpassQuery("arts", 0, 0, 2000)
	assert.Contains(t, arts, `nwr["craft"]`)
	assert.Contains(t, arts, `["artwork_type"!="statue"]`)
}

func TestBuildOverpassQueryUnknownCategoryFallsThrough(t *testing.T) {
	query := BuildOverpassQuery("restaurant", 48.85, 2.35, 1000)

	assert.Contains(t, query, `node["amenity"="restaurant"]`)
	assert.Contains(t, query, `way["amenity"="restaurant"]`)
	assert.Contains(t, query, `relation["amenity"="restaurant"]`)
}
