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
	"bookreviews/service"
	"bookreviews/store"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BooksHandler struct {
	DB     store.Store
	Covers *service.CoverService
}

type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	Year        *int    `json:"year"`
}

// List is the public catalog listing: filtered, sorted over computed
// aggregates, and paginated.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := store.ParseBookListQuery(r.URL.Query())
	page, err := h.DB.ListBooks(r.Context(), q)
	if err != nil {
		http.Error(w, `{"error":"failed to list books"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Author == "" || req.Description == "" || req.Genre == "" || req.Year == 0 {
		http.Error(w, `{"error":"Please fill in all required fields."}`, http.StatusBadRequest)
		return
	}
	if !models.ValidGenre(req.Genre) {
		http.Error(w, `{"error":"invalid genre"}`, http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	book := &models.Book{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
		AddedBy:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		http.Error(w, `{"error":"failed to create book"}`, http.StatusInternalServerError)
		return
	}
	book.ID = id
	writeJSON(w, http.StatusCreated, book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	if !authz.CanMutate(actor.ID, book.AddedBy, actor.Role, authz.UpdateBook) {
		http.Error(w, `{"error":"Forbidden: You are not authorized to update this book."}`, http.StatusForbidden)
		return
	}
	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	upd, errMsg := bookUpdateFromRequest(req)
	if errMsg != "" {
		http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.UpdateBook(r.Context(), id, upd); err != nil {
		http.Error(w, `{"error":"failed to update book"}`, http.StatusInternalServerError)
		return
	}
	updated, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func bookUpdateFromRequest(req UpdateBookRequest) (store.BookUpdate, string) {
	var upd store.BookUpdate
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return upd, "title cannot be empty"
		}
		upd.Title = &t
	}
	if req.Author != nil {
		a := strings.TrimSpace(*req.Author)
		if a == "" {
			return upd, "author cannot be empty"
		}
		upd.Author = &a
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			return upd, "description cannot be empty"
		}
		upd.Description = &d
	}
	if req.Genre != nil {
		if !models.ValidGenre(*req.Genre) {
			return upd, "invalid genre"
		}
		upd.Genre = req.Genre
	}
	if req.Year != nil {
		if *req.Year == 0 {
			return upd, "year cannot be empty"
		}
		upd.Year = req.Year
	}
	return upd, ""
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	if !authz.CanMutate(actor.ID, book.AddedBy, actor.Role, authz.DeleteBook) {
		http.Error(w, `{"error":"Forbidden: You are not authorized to delete this book."}`, http.StatusForbidden)
		return
	}
	if err := h.DB.DeleteBook(r.Context(), id); err != nil {
		http.Error(w, `{"error":"failed to delete book"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully."})
}

// Cover redirects to a third-party cover image for the book. Public so
// it can back an img src directly.
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"Book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	if h.Covers == nil {
		http.Error(w, `{"error":"no cover"}`, http.StatusNotFound)
		return
	}
	url, err := h.Covers.CoverURL(r.Context(), book.Title, book.Author)
	if err != nil {
		http.Error(w, `{"error":"no cover"}`, http.StatusNotFound)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
