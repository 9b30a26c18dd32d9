package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"poi-server/models"
	"poi-server/utils/hours"
)

// suggestionIDBase keeps synthetic suggestion/bookmark IDs clear of real
// Overpass element IDs.
const suggestionIDBase = 10000

// DroppedRecord explains why one raw entry did not survive normalization.
// Malformed records are dropped per-record so a partially bad batch still
// yields its valid subset.
type DroppedRecord struct {
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// NormalizeResult is a batch of canonical POIs plus drop diagnostics.
type NormalizeResult struct {
	POIs    []models.POI    `json:"pois"`
	Dropped []DroppedRecord `json:"dropped,omitempty"`
}

// Suggestion is a free-form AI result. The coordinate field shows up in
// three shapes across producers: direct lat/lon values (number or string),
// a coordinates object with lat/lon or latitude/longitude keys, or a
// "lat,lon" string.
type Suggestion struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Address      string          `json:"address"`
	Location     string          `json:"location"`
	PriceRange   string          `json:"price_range"`
	OpeningHours string          `json:"opening_hours"`
	Link         string          `json:"link"`
	Website      string          `json:"website"`
	Lat          json.RawMessage `json:"lat"`
	Lon          json.RawMessage `json:"lon"`
	Coordinates  json.RawMessage `json:"coordinates"`
}

// Fixed tag-combination lookup for display labels, checked in order.
var featureLabels = []struct {
	key, value, label string
}{
	{"natural", "beach", "Beach"},
	{"leisure", "park", "Park"},
	{"landuse", "forest", "Forest"},
	{"waterway", "river", "River"},
	{"waterway", "waterfall", "Waterfall"},
	{"natural", "peak", "Peak"},
	{"tourism", "viewpoint", "Viewpoint"},
	{"leisure", "nature_reserve", "Nature reserve"},
	{"natural", "cave_entrance", "Cave entrance"},
	{"natural", "hot_spring", "Hot spring"},
	{"sport", "climbing", "Climbing site"},
	{"tourism", "camp_site", "Camp site"},
	{"tourism", "picnic_site", "Picnic site"},
	{"tourism", "wildlife_hide", "Wildlife hide"},
	{"amenity", "arts_centre", "Arts centre"},
	{"amenity", "theatre", "Theatre"},
	{"amenity", "community_centre", "Community centre"},
	{"amenity", "music_school", "Music school"},
	{"tourism", "gallery", "Gallery"},
	{"tourism", "museum", "Museum"},
	{"leisure", "art_gallery", "Art gallery"},
	{"building", "theatre", "Theatre"},
	{"building", "museum", "Museum"},
	{"amenity", "dance_school", "Dance school"},
	{"leisure", "outdoor_dance", "Outdoor dance"},
	{"amenity", "nightclub", "Nightclub"},
	{"amenity", "casino", "Casino"},
	{"amenity", "music_venue", "Music venue"},
	{"amenity", "bar", "Bar"},
}

// Fixed lookup for the derived type label used in display grouping.
var typeLabels = []struct {
	key, value, label string
}{
	{"building", "mall", "mall"},
	{"amenity", "marketplace", "marketplace"},
	{"shop", "market", "market"},
	{"landuse", "retail", "retail"},
	{"theatre:type", "music", "music theatre"},
	{"amenity", "music_venue", "music venue"},
	{"amenity", "concert_hall", "concert hall"},
	{"event", "music_festival", "music festival"},
	{"shop", "music", "music shop"},
	{"leisure", "sports_centre", "sports centre"},
	{"leisure", "stadium", "stadium"},
	{"amenity", "ice_rink", "ice rink"},
	{"amenity", "bowling_alley", "bowling alley"},
	{"leisure", "sports_hall", "sports hall"},
	{"leisure", "swimming_pool", "swimming pool"},
	{"leisure", "golf_course", "golf course"},
	{"amenity", "arts_centre", "arts centre"},
	{"amenity", "theatre", "theatre"},
	{"tourism", "gallery", "gallery"},
	{"tourism", "museum", "museum"},
	{"leisure", "art_gallery", "art gallery"},
	{"building", "pavilion", "pavilion"},
	{"amenity", "nightclub", "nightclub"},
	{"amenity", "casino", "casino"},
	{"amenity", "bar", "bar"},
	{"leisure", "park", "park"},
	{"landuse", "forest", "forest"},
	{"route", "hiking", "hiking route"},
	{"natural", "beach", "beach"},
	{"tourism", "viewpoint", "viewpoint"},
	{"leisure", "nature_reserve", "nature reserve"},
}

// Categories the currently-open post-filter applies to. Entries without a
// parseable opening_hours tag are excluded, not ambiguous-included.
var openFilterCategories = map[string]bool{
	"restaurant":    true,
	"bar":           true,
	"nightlife":     true,
	"nature":        true,
	"arts":          true,
	"entertainment": true,
	"sports":        true,
	"shopping":      true,
	"live_music":    true,
	"cafes":         true,
	"fast_desserts": true,
}

// FeatureLabel derives a display name from tags: the explicit name wins,
// then the fixed feature lookup, then any recognizable top-level tag.
func FeatureLabel(tags map[string]string) string {
	if tags == nil {
		return ""
	}
	if name := strings.TrimSpace(tags["name"]); name != "" {
		return name
	}
	if tags["route"] == "hiking" {
		if ref := tags["ref"]; ref != "" {
			return "Hiking route " + ref
		}
		return "Hiking route"
	}
	if tags["natural"] == "water" && tags["water"] == "lake" {
		return "Lake"
	}
	for _, fl := range featureLabels {
		if tags[fl.key] == fl.value {
			return fl.label
		}
	}
	if craft := tags["craft"]; craft != "" {
		return "Craft: " + craft
	}
	for _, key := range []string{"amenity", "natural", "leisure", "tourism", "waterway", "landuse"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

// TypeLabel derives the display-grouping label, defaulting to the selected
// category when no tag combination matches.
func TypeLabel(tags map[string]string, category string) string {
	if tags == nil {
		return category
	}
	for _, tl := range typeLabels {
		if tags[tl.key] == tl.value {
			return tl.label
		}
	}
	if tags["leisure"] == "pitch" {
		if sport := tags["sport"]; sport != "" {
			return sport + " pitch"
		}
		return "sports pitch"
	}
	return category
}

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// Website normalizes the website/contact:website/url tags to an absolute URL.
func Website(tags map[string]string) string {
	if tags == nil {
		return ""
	}
	raw := tags["website"]
	if raw == "" {
		raw = tags["contact:website"]
	}
	if raw == "" {
		raw = tags["url"]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !schemeRe.MatchString(raw) {
		return "https://" + raw
	}
	return raw
}

// Suburb reads the best available locality tag.
func Suburb(tags map[string]string) string {
	if tags == nil {
		return ""
	}
	for _, key := range []string{"addr:suburb", "addr:neighbourhood", "addr:city"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

// ShortDescription reads the short_description/description tags.
func ShortDescription(tags map[string]string) string {
	if tags == nil {
		return ""
	}
	if v := tags["short_description"]; v != "" {
		return v
	}
	return tags["description"]
}

// NormalizeElements converts raw Overpass elements into canonical POIs.
// Elements with no usable coordinates, or coordinates outside geographic
// range, are dropped with a reason.
func NormalizeElements(elements []OverpassElement, category string) NormalizeResult {
	var out NormalizeResult
	for _, el := range elements {
		var lat, lon float64
		switch {
		case el.Type == "node" && el.Lat != nil && el.Lon != nil:
			lat, lon = *el.Lat, *el.Lon
		case (el.Type == "way" || el.Type == "relation") && el.Center != nil:
			lat, lon = el.Center.Lat, el.Center.Lon
		default:
			out.Dropped = append(out.Dropped, DroppedRecord{
				Name:   el.Tags["name"],
				Reason: "no coordinates for " + el.Type + " element",
			})
			continue
		}
		if !models.ValidCoords(lat, lon) {
			out.Dropped = append(out.Dropped, DroppedRecord{
				Name:   el.Tags["name"],
				Reason: fmt.Sprintf("coordinates out of range: %v,%v", lat, lon),
			})
			continue
		}
		out.POIs = append(out.POIs, models.POI{
			ID:        el.ID,
			Name:      FeatureLabel(el.Tags),
			Lat:       lat,
			Lon:       lon,
			Tags:      el.Tags,
			TypeLabel: TypeLabel(el.Tags, category),
		})
	}
	return out
}

// NormalizeSuggestions converts free-form AI results into canonical POIs.
// Coordinate extraction tries direct lat/lon, object-shaped coordinates
// (both key conventions), then a "lat,lon" string, in that order.
func NormalizeSuggestions(suggestions []Suggestion) NormalizeResult {
	var out NormalizeResult
	for i, s := range suggestions {
		if strings.TrimSpace(s.Name) == "" {
			out.Dropped = append(out.Dropped, DroppedRecord{Reason: "suggestion missing name"})
			continue
		}
		lat, lon, err := s.coordinates()
		if err != nil {
			out.Dropped = append(out.Dropped, DroppedRecord{Name: s.Name, Reason: err.Error()})
			continue
		}
		if !models.ValidCoords(lat, lon) {
			out.Dropped = append(out.Dropped, DroppedRecord{
				Name:   s.Name,
				Reason: fmt.Sprintf("coordinates out of range: %v,%v", lat, lon),
			})
			continue
		}

		tags := map[string]string{}
		if s.Description != "" {
			tags["description"] = s.Description
		}
		address := s.Address
		if address == "" {
			address = s.Location
		}
		if address != "" {
			tags["address"] = address
		}
		if s.PriceRange != "" {
			tags["price_range"] = s.PriceRange
		}
		if s.OpeningHours != "" {
			tags["opening_hours"] = s.OpeningHours
		}
		website := s.Link
		if website == "" {
			website = s.Website
		}
		if website != "" {
			tags["website"] = website
		}

		typeLabel := address
		if typeLabel == "" {
			typeLabel = s.Name
		}

		out.POIs = append(out.POIs, models.POI{
			ID:        int64(i) + suggestionIDBase,
			Name:      s.Name,
			Lat:       lat,
			Lon:       lon,
			Tags:      tags,
			TypeLabel: typeLabel,
		})
	}
	return out
}

func (s Suggestion) coordinates() (float64, float64, error) {
	if lat, okLat := rawFloat(s.Lat); okLat {
		if lon, okLon := rawFloat(s.Lon); okLon {
			return lat, lon, nil
		}
	}
	if len(s.Coordinates) == 0 {
		return 0, 0, fmt.Errorf("suggestion missing coordinates")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(s.Coordinates, &obj); err == nil {
		lat, okLat := rawFloat(obj["lat"])
		if !okLat {
			lat, okLat = rawFloat(obj["latitude"])
		}
		lon, okLon := rawFloat(obj["lon"])
		if !okLon {
			lon, okLon = rawFloat(obj["longitude"])
		}
		if okLat && okLon {
			return lat, lon, nil
		}
		return 0, 0, fmt.Errorf("unknown coordinates object shape")
	}

	var str string
	if err := json.Unmarshal(s.Coordinates, &str); err == nil {
		parts := strings.Split(str, ",")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("unparseable coordinates string %q", str)
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat != nil || errLon != nil {
			return 0, 0, fmt.Errorf("unparseable coordinates string %q", str)
		}
		return lat, lon, nil
	}

	return 0, 0, fmt.Errorf("unknown coordinates format")
}

// rawFloat accepts a JSON number or a numeric string.
func rawFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// NormalizeBookmarks converts stored bookmark rows into canonical POIs for
// the bookmarks view. Descriptive fields fold into the tag map.
func NormalizeBookmarks(bookmarks []models.Bookmark) NormalizeResult {
	var out NormalizeResult
	for i, b := range bookmarks {
		if !models.ValidCoords(b.Latitude, b.Longitude) {
			out.Dropped = append(out.Dropped, DroppedRecord{
				Name:   b.Name,
				Reason: fmt.Sprintf("coordinates out of range: %v,%v", b.Latitude, b.Longitude),
			})
			continue
		}
		tags := map[string]string{}
		if b.Description != "" {
			tags["description"] = b.Description
		}
		if b.Image != "" {
			tags["image"] = b.Image
		}
		if b.Suburb != "" {
			tags["addr:suburb"] = b.Suburb
		}
		if b.Hours != "" {
			tags["opening_hours"] = b.Hours
		}
		if b.Website != "" {
			tags["website"] = b.Website
		}
		out.POIs = append(out.POIs, models.POI{
			ID:         int64(i) + suggestionIDBase,
			Name:       b.Name,
			Lat:        b.Latitude,
			Lon:        b.Longitude,
			Tags:       tags,
			TypeLabel:  "Bookmark",
			Bookmarked: true,
			BookmarkID: b.ID,
		})
	}
	return out
}

// SortPOIs orders a batch for display. Restaurants tier by a weighted score
// (named +2, website +1, hours +1) before the alphabetical tie-break; every
// other category simply puts named entries first.
func SortPOIs(pois []models.POI, category string) {
	if category == "restaurant" {
		sort.SliceStable(pois, func(i, j int) bool {
			ti, tj := restaurantTier(pois[i]), restaurantTier(pois[j])
			if ti != tj {
				return ti > tj
			}
			return sortName(pois[i]) < sortName(pois[j])
		})
		return
	}
	sort.SliceStable(pois, func(i, j int) bool {
		ni, nj := pois[i].Name != "", pois[j].Name != ""
		if ni != nj {
			return ni
		}
		return sortName(pois[i]) < sortName(pois[j])
	})
}

func restaurantTier(p models.POI) int {
	tier := 0
	if p.Name != "" {
		tier += 2
	}
	if Website(p.Tags) != "" {
		tier++
	}
	if p.Tags["opening_hours"] != "" {
		tier++
	}
	return tier
}

func sortName(p models.POI) string {
	if p.Name != "" {
		return strings.ToLower(p.Name)
	}
	return strings.ToLower(p.TypeLabel)
}

// FilterOpenNow keeps only POIs whose opening_hours tag parses and admits
// the given instant. It applies only to the explicit category allow-list;
// other categories pass through untouched.
func FilterOpenNow(pois []models.POI, category string, now time.Time) []models.POI {
	if !openFilterCategories[category] {
		return pois
	}
	open := make([]models.POI, 0, len(pois))
	for _, p := range pois {
		spec := p.Tags["opening_hours"]
		if spec == "" {
			continue
		}
		if hours.IsOpen(spec, now) {
			open = append(open, p)
		}
	}
	return open
}
