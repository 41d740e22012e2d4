package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (e *env) createReview(token, bookID string, rating int, text string) map[string]any {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/books/"+bookID+"/reviews", token, map[string]any{
		"rating":     rating,
		"reviewText": text,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, "create review: %s", rec.Body.String())
	return decodeJSON[map[string]any](e.t, rec)
}

func TestCreateReviewValidation(t *testing.T) {
	e := newEnv(t)
	token, _ := e.register("Carol", "carol@example.com", "password123")
	ownerToken, _ := e.register("Owner", "owner@example.com", "password123")
	book := e.createBook(ownerToken, "Dune", "Frank Herbert", "Science Fiction", 1965)
	path := "/api/books/" + book["id"].(string) + "/reviews"

	rec := e.do(http.MethodPost, path, token, map[string]any{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing text")
	assert.Contains(t, rec.Body.String(), "Please provide a rating and review text.")

	rec = e.do(http.MethodPost, path, token, map[string]any{"reviewText": "fine"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing rating")

	for _, rating := range []int{-1, 6} {
		rec = e.do(http.MethodPost, path, token, map[string]any{"rating": rating, "reviewText": "fine"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
	}

	rec = e.do(http.MethodPost, path, "", map[string]any{"rating": 4, "reviewText": "fine"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReviewOnMissingBook(t *testing.T) {
	e := newEnv(t)
	token, _ := e.register("Carol", "carol@example.com", "password123")
	path := "/api/books/" + primitive.NewObjectID().Hex() + "/reviews"

	rec := e.do(http.MethodPost, path, token, map[string]any{"rating": 4, "reviewText": "fine"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book not found")
}

func TestCreateReviewEmbedsAuthor(t *testing.T) {
	e := newEnv(t)
	token, carol := e.register("Carol", "carol@example.com", "password123")
	ownerToken, _ := e.register("Owner", "owner@example.com", "password123")
	book := e.createBook(ownerToken, "Dune", "Frank Herbert", "Science Fiction", 1965)

	review := e.createReview(token, book["id"].(string), 5, "a classic")
	user, ok := review["user"].(map[string]any)
	require.True(t, ok, "review payload: %v", review)
	assert.Equal(t, carol.ID, user["id"])
	assert.Equal(t, "Carol", user["name"])
	assert.Equal(t, float64(5), review["rating"])
}

func TestReviewUpdateIsOwnerOnly(t *testing.T) {
	e := newEnv(t)
	carolToken, _ := e.register("Carol", "carol@example.com", "password123")
	ownerToken, _ := e.register("Owner", "owner@example.com", "password123")
	adminToken, admin := e.register("Admin", "admin@example.com", "password123")
	e.promoteToAdmin(admin.ID)

	book := e.createBook(ownerToken, "Dune", "Frank Herbert", "Science Fiction", 1965)
	review := e.createReview(carolToken, book["id"].(string), 3, "meh")
	path := "/api/reviews/" + review["id"].(string)

	// even admins cannot rewrite someone else's words
	rec := e.do(http.MethodPut, path, adminToken, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can only edit your own reviews.")

	rec = e.do(http.MethodPut, path, ownerToken, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPut, path, carolToken, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, float64(5), updated["rating"])
	assert.Equal(t, "meh", updated["reviewText"], "partial update keeps text")

	rec = e.do(http.MethodPut, path, carolToken, map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewDeleteIsOwnerOrAdmin(t *testing.T) {
	e := newEnv(t)
	carolToken, _ := e.register("Carol", "carol@example.com", "password123")
	strangerToken, _ := e.register("Stranger", "stranger@example.com", "password123")
	adminToken, admin := e.register("Admin", "admin@example.com", "password123")
	e.promoteToAdmin(admin.ID)
	ownerToken, _ := e.register("Owner", "owner@example.com", "password123")

	book := e.createBook(ownerToken, "Dune", "Frank Herbert", "Science Fiction", 1965)
	bookID := book["id"].(string)

	first := e.createReview(carolToken, bookID, 3, "meh")
	rec := e.do(http.MethodDelete, "/api/reviews/"+first["id"].(string), strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authorized to delete this review")

	rec = e.do(http.MethodDelete, "/api/reviews/"+first["id"].(string), carolToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	second := e.createReview(carolToken, bookID, 4, "better")
	rec = e.do(http.MethodDelete, "/api/reviews/"+second["id"].(string), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodDelete, "/api/reviews/"+second["id"].(string), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodGet, "/api/books/"+bookID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]map[string]any](t, rec))
}

// Full lifecycle: reviews feed the book's aggregate fields, and
// deleting the book orphans them without losing the reviewer's history.
func TestReviewLifecycleAcrossBookDeletion(t *testing.T) {
	e := newEnv(t)
	ownerToken, _ := e.register("Alice", "alice@example.com", "password123")
	carolToken, _ := e.register("Carol", "carol@example.com", "password123")

	book := e.createBook(ownerToken, "Dune", "Frank Herbert", "Science Fiction", 1965)
	bookID := book["id"].(string)
	for i, rating := range []int{5, 4, 3} {
		e.createReview(carolToken, bookID, rating, fmt.Sprintf("read %d", i+1))
	}

	rec := e.do(http.MethodGet, "/api/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, float64(3), got["reviewCount"])
	assert.Equal(t, 4.0, got["averageRating"])

	rec = e.do(http.MethodGet, "/api/books/"+bookID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, reviews, 3)

	rec = e.do(http.MethodDelete, "/api/books/"+bookID, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/users/my-reviews", carolToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, mine, 3)
	for _, r := range mine {
		book, present := r["book"]
		assert.True(t, present, "book slot stays in the payload")
		assert.Nil(t, book, "deleted book serializes as null")
	}
}
