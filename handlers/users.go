package handlers

import (
	"net/http"

	"bookreviews/middleware"
	"bookreviews/store"
)

type UsersHandler struct {
	DB store.Store
}

func (h *UsersHandler) MyBooks(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	books, err := h.DB.BooksByOwner(r.Context(), actor.ID)
	if err != nil {
		http.Error(w, `{"error":"failed to list books"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// MyReviews lists the actor's reviews. Reviews whose book has since
// been deleted come back with a null book; the client shows a
// placeholder instead of failing.
func (h *UsersHandler) MyReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	reviews, err := h.DB.ReviewsByOwner(r.Context(), actor.ID)
	if err != nil {
		http.Error(w, `{"error":"failed to list reviews"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
