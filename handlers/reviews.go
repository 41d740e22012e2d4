package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookreviews/authz"
	"bookreviews/middleware"
	"bookreviews/models"
	"bookreviews/store"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewsHandler struct {
	DB store.Store
}

type CreateReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

type UpdateReviewRequest struct {
	Rating     *int    `json:"rating"`
	ReviewText *string `json:"reviewText"`
}

// Create adds a review to a book. The book must exist at creation
// time; nothing prevents the same user reviewing a book twice.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.ReviewText = strings.TrimSpace(req.ReviewText)
	if req.Rating == 0 || req.ReviewText == "" {
		http.Error(w, `{"error":"Please provide a rating and review text."}`, http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, `{"error":"rating must be between 1 and 5"}`, http.StatusBadRequest)
		return
	}
	if _, err := h.DB.BookByID(r.Context(), bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"Book not found."}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	now := time.Now().UTC()
	review := &models.Review{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		BookID:     bookID,
		UserID:     actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := h.DB.InsertReview(r.Context(), review)
	if err != nil {
		http.Error(w, `{"error":"failed to create review"}`, http.StatusInternalServerError)
		return
	}
	review.ID = id
	writeJSON(w, http.StatusCreated, models.ReviewWithUser{
		Review: *review,
		User:   &models.ReviewUser{ID: actor.ID, Name: actor.Name},
	})
}

func (h *ReviewsHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	reviews, err := h.DB.ReviewsForBook(r.Context(), bookID)
	if err != nil {
		http.Error(w, `{"error":"failed to list reviews"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Update edits a review's rating or text. Owner only: admins have no
// override here, unlike deletion.
func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid review id"}`, http.StatusBadRequest)
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Review not found."}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load review"}`, http.StatusInternalServerError)
		return
	}
	if !authz.CanMutate(actor.ID, review.UserID, actor.Role, authz.UpdateReview) {
		http.Error(w, `{"error":"Forbidden: You can only edit your own reviews."}`, http.StatusForbidden)
		return
	}
	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	var upd store.ReviewUpdate
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			http.Error(w, `{"error":"rating must be between 1 and 5"}`, http.StatusBadRequest)
			return
		}
		upd.Rating = req.Rating
	}
	if req.ReviewText != nil {
		t := strings.TrimSpace(*req.ReviewText)
		if t == "" {
			http.Error(w, `{"error":"review text cannot be empty"}`, http.StatusBadRequest)
			return
		}
		upd.ReviewText = &t
	}
	if err := h.DB.UpdateReview(r.Context(), id, upd); err != nil {
		http.Error(w, `{"error":"failed to update review"}`, http.StatusInternalServerError)
		return
	}
	updated, err := h.DB.ReviewByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to load review"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.ReviewWithUser{
		Review: *updated,
		User:   &models.ReviewUser{ID: actor.ID, Name: actor.Name},
	})
}

// Delete removes a review. Owner or admin.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid review id"}`, http.StatusBadRequest)
		return
	}
	review, err := h.DB.ReviewByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Review not found."}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load review"}`, http.StatusInternalServerError)
		return
	}
	if !authz.CanMutate(actor.ID, review.UserID, actor.Role, authz.DeleteReview) {
		http.Error(w, `{"error":"Forbidden: You are not authorized to delete this review."}`, http.StatusForbidden)
		return
	}
	if err := h.DB.DeleteReview(r.Context(), id); err != nil {
		http.Error(w, `{"error":"failed to delete review"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully."})
}
