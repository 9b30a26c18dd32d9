package models

// Bookmark is a user-saved place. The (user_id, latitude, longitude) triple
// is unique in the store; the coordinate pair is the de facto join key back
// to a POI.
type Bookmark struct {
	ID          string  `json:"id" bson:"_id,omitempty"`
	UserID      string  `json:"user_id" bson:"user_id"`
	Latitude    float64 `json:"latitude" bson:"latitude"`
	Longitude   float64 `json:"longitude" bson:"longitude"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description" bson:"description"`
	Image       string  `json:"image" bson:"image"`
	Suburb      string  `json:"suburb" bson:"suburb"`
	Hours       string  `json:"hours" bson:"hours"`
	Website     string  `json:"website" bson:"website"`
}
