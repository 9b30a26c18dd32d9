package services

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"poi-server/models"
	"poi-server/utils/errors"
)

// BookmarkService persists user bookmarks in MongoDB. A unique index on
// (user_id, latitude, longitude) makes the store the source of truth for
// deduplication; callers above it do not dedupe.
type BookmarkService struct {
	collection *mongo.Collection
}

func NewBookmarkService(db *mongo.Database) *BookmarkService {
	collection := db.Collection("bookmarks")

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "latitude", Value: 1},
			{Key: "longitude", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(context.Background(), indexModel); err != nil {
		log.Printf("Failed to create unique index on bookmarks: %v", err)
	}

	return &BookmarkService{collection: collection}
}

// List returns all bookmarks owned by the user.
func (s *BookmarkService) List(ctx context.Context, userID string) ([]models.Bookmark, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to load bookmarks", http.StatusInternalServerError)
	}
	defer cursor.Close(ctx)

	bookmarks := []models.Bookmark{}
	if err := cursor.All(ctx, &bookmarks); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to decode bookmarks", http.StatusInternalServerError)
	}
	return bookmarks, nil
}

// Add stores a bookmark and returns its server-assigned id.
func (s *BookmarkService) Add(ctx context.Context, bookmark models.Bookmark) (string, error) {
	if !models.ValidCoords(bookmark.Latitude, bookmark.Longitude) {
		return "", errors.ErrInvalidInput
	}
	bookmark.ID = uuid.New().String()

	if _, err := s.collection.InsertOne(ctx, bookmark); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.ErrConflict
		}
		return "", errors.Wrap(err, "DB_ERROR", "Failed to add bookmark", http.StatusInternalServerError)
	}
	return bookmark.ID, nil
}

// Remove deletes a bookmark by id.
func (s *BookmarkService) Remove(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "Failed to remove bookmark", http.StatusInternalServerError)
	}
	if result.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// Exists reports whether the user already bookmarked this exact coordinate.
func (s *BookmarkService) Exists(ctx context.Context, userID string, lat, lon float64) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"latitude":  lat,
		"longitude": lon,
	})
	if err != nil {
		return false, errors.Wrap(err, "DB_ERROR", "Failed to check bookmark", http.StatusInternalServerError)
	}
	return count > 0, nil
}
