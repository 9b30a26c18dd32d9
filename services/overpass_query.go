package services

import (
	"fmt"
	"strings"
)

// Category predicate tables for the Overpass query builder. Each entry is a
// hand-curated union of feature-type selectors; the builder appends the
// around-filter and the shared query envelope. Unrecognized categories fall
// through to a plain amenity match, which mirrors how the categories were
// originally curated: an unknown category is a caller bug, not a runtime
// failure mode.
var categorySelectors = map[string][]string{
	"nightlife": {
		`node["amenity"="nightclub"]`,
		`node["amenity"="casino"]`,
		`node["amenity"="music_venue"]`,
		`node["amenity"="bar"]`,
		`way["amenity"="nightclub"]`,
		`way["amenity"="casino"]`,
		`way["amenity"="music_venue"]`,
		`way["amenity"="bar"]`,
		`relation["amenity"="nightclub"]`,
		`relation["amenity"="casino"]`,
		`relation["amenity"="music_venue"]`,
		`relation["amenity"="bar"]`,
	},
	"nature": {
		`relation["route"="hiking"]`,
		`nwr["natural"="beach"]`,
		`nwr["leisure"="park"]`,
		`way["landuse"="forest"]`,
		`nwr["natural"="water"]["water"="lake"]`,
		`nwr["waterway"="river"]`,
		`nwr["waterway"="waterfall"]`,
		`nwr["natural"="peak"]`,
		`nwr["tourism"="viewpoint"]`,
		`nwr["leisure"="nature_reserve"]`,
		`nwr["natural"="cave_entrance"]`,
		`nwr["natural"="hot_spring"]`,
		`nwr["sport"="climbing"]`,
		`nwr["tourism"="camp_site"]`,
		`nwr["tourism"="picnic_site"]`,
		`nwr["tourism"="wildlife_hide"]`,
	},
	"arts": {
		`nwr["amenity"="arts_centre"]`,
		`nwr["amenity"="theatre"]`,
		`nwr["amenity"="community_centre"]`,
		`nwr["amenity"="music_school"]`,
		`nwr["tourism"="gallery"]`,
		`nwr["tourism"="museum"]`,
		`nwr["tourism"="artwork"]["artwork_type"!="statue"]`,
		`nwr["leisure"="art_gallery"]`,
		`nwr["building"="theatre"]`,
		`nwr["building"="museum"]`,
		`nwr["building"="arts_centre"]`,
		`nwr["craft"]`,
		`nwr["amenity"="dance_school"]`,
		`nwr["leisure"="outdoor_dance"]`,
	},
	"entertainment": {
		`nwr["amenity"="theatre"]`,
		`nwr["amenity"="cinema"]`,
		`nwr["amenity"="arts_centre"]`,
		`nwr["leisure"="sports_centre"]`,
		`nwr["tourism"="theme_park"]`,
		`nwr["leisure"="amusement_arcade"]`,
		`nwr["leisure"="miniature_golf"]`,
		`nwr["amenity"="planetarium"]`,
		`nwr["amenity"="aquarium"]`,
		`nwr["amenity"="exhibition_centre"]`,
		`nwr["amenity"="events_venue"]`,
	},
	"sports": {
		`nwr["leisure"="sports_centre"]`,
		`nwr["leisure"="stadium"]`,
		`nwr["leisure"="pitch"]["sport"]`,
		`nwr["amenity"="ice_rink"]`,
		`nwr["amenity"="bowling_alley"]`,
		`nwr["leisure"="sports_hall"]`,
		`nwr["leisure"="swimming_pool"]["name"]["access"!~"^(private|residents|customers)$"]["private"!="yes"]`,
		`nwr["leisure"="golf_course"]["sport"="golf"]`,
		`nwr["leisure"="miniature_golf"]`,
		`nwr["leisure"="sports_centre"]["sport"="climbing"]`,
		`nwr["sport"="skating"]`,
		`nwr["amenity"="bar"]["bar:sport"="yes"]`,
		`nwr["amenity"="bar"]["bar:sports"="yes"]`,
		`nwr["amenity"="pub"]["bar:sport"="yes"]`,
	},
	"shopping": {
		`nwr["building"="mall"]`,
		`nwr["amenity"="marketplace"]`,
		`nwr["shop"="market"]`,
		`nwr["landuse"="retail"]`,
	},
	"live_music": {
		`nwr["amenity"="theatre"]["theatre:type"="music"]`,
		`nwr["amenity"="theatre"]`,
		`nwr["event"="music_festival"]`,
		`nwr["shop"="music"]`,
		`nwr["amenity"="music_venue"]`,
		`nwr["amenity"="concert_hall"]`,
		`nwr["building"="pavilion"]`,
	},
	"cafes": {
		`nwr["cuisine"="pastries"]`,
		`nwr["cuisine"="tea"]`,
		`nwr["amenity"="cafe"]`,
		`nwr["shop"="coffee"]`,
		`nwr["cuisine"="coffee_shop"]`,
		`nwr["shop"="bakery"]`,
		`nwr["shop"="pastry"]`,
	},
	"fast_desserts": {
		`nwr["amenity"="fast_food"]`,
		`nwr["cuisine"="ice_cream"]`,
		`nwr["cuisine"="burger"]`,
		`nwr["cuisine"="pizza"]`,
		`nwr["cuisine"="sushi"]`,
		`nwr["shop"="confectionery"]`,
		`nwr["cuisine"="dessert"]`,
		`nwr["shop"="chocolate"]`,
		`nwr["shop"="pastry"]`,
		`nwr["cuisine"="donuts"]`,
	},
}

// BuildOverpassQuery renders the Overpass QL for a category search around a
// center point. Radius is in meters.
func BuildOverpassQuery(category string, lat, lon float64, radius int) string {
	selectors, ok := categorySelectors[category]
	if !ok {
		selectors = []string{
			fmt.Sprintf(`node["amenity"=%q]`, category),
			fmt.Sprintf(`way["amenity"=%q]`, category),
			fmt.Sprintf(`relation["amenity"=%q]`, category),
		}
	}

	around := fmt.Sprintf("(around:%d,%.6f,%.6f);", radius, lat, lon)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, sel := range selectors {
		b.WriteString(sel)
		b.WriteString(around)
	}
	b.WriteString(");out center;")
	return b.String()
}
