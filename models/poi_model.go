package models

import (
	"math"
	"strconv"
)

// POI is the canonical point-of-interest record that all three producers
// (Overpass elements, AI suggestions, stored bookmarks) normalize into.
// Instances are rebuilt on every query and never mutated in place.
type POI struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Tags       map[string]string `json:"tags,omitempty"`
	TypeLabel  string            `json:"type_label,omitempty"`
	Bookmarked bool              `json:"bookmarked"`
	BookmarkID string            `json:"bookmark_id,omitempty"`
}

// CoordKey is the stringified coordinate pair used as the join key between
// POIs and bookmarks.
func (p POI) CoordKey() string {
	return CoordKey(p.Lat, p.Lon)
}

func CoordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// ValidCoords reports whether the pair is finite and within geographic range.
func ValidCoords(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return true
}

// SearchFilter is the transient query state driving a POI search.
type SearchFilter struct {
	Category string  `json:"category"`
	Radius   int     `json:"radius"` // meters
	OpenNow  bool    `json:"open_now"`
	City     string  `json:"city,omitempty"`
	Country  string  `json:"country,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	HasCoord bool    `json:"-"`
}
