package handlers

import (
	"encoding/json"
	"net/http"

	"poi-server/middleware"
	"poi-server/models"
	"poi-server/services"
	"poi-server/utils/errors"
)

type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
	reconciler      *services.ReconcilerService
}

func NewBookmarkHandler(bookmarkService *services.BookmarkService, reconciler *services.ReconcilerService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService, reconciler: reconciler}
}

func requestUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}

// GetBookmarks handles GET /bookmarks/get.
func (h *BookmarkHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	bookmarks, err := h.bookmarkService.List(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmarks)
}

// GetBookmarkPOIs handles GET /bookmarks/pois: the bookmarks-tab view,
// returning the user's bookmarks normalized into canonical POIs.
func (h *BookmarkHandler) GetBookmarkPOIs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	bookmarks, err := h.bookmarkService.List(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services.NormalizeBookmarks(bookmarks))
}

// AddBookmark handles POST /bookmarks/add.
func (h *BookmarkHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var bookmark models.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&bookmark); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	bookmark.ID = ""
	bookmark.UserID = userID
	if bookmark.Name == "" {
		bookmark.Name = "Unknown"
	}

	id, err := h.reconciler.Add(r.Context(), bookmark)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Bookmark added successfully", "id": id})
}

// RemoveBookmark handles POST /bookmarks/remove.
func (h *BookmarkHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		BookmarkID string `json:"bookmark_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.BookmarkID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.reconciler.Remove(r.Context(), userID, input.BookmarkID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Bookmark removed successfully"})
}

// CheckBookmarkExists handles POST /bookmarks/check_exists.
func (h *BookmarkHandler) CheckBookmarkExists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	exists, err := h.bookmarkService.Exists(r.Context(), userID, input.Latitude, input.Longitude)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
}
