package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"bookreviews/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used by tests. It mirrors the Mongo
// implementation's observable behavior, including the listing
// aggregation: missing averageRating sorts below any present value and
// ties break on _id ascending.
type Memory struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]models.User
	emails      map[string]primitive.ObjectID
	books       map[primitive.ObjectID]models.Book
	bookOrder   []primitive.ObjectID
	reviews     map[primitive.ObjectID]models.Review
	reviewOrder []primitive.ObjectID
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[primitive.ObjectID]models.User),
		emails:  make(map[string]primitive.ObjectID),
		books:   make(map[primitive.ObjectID]models.Book),
		reviews: make(map[primitive.ObjectID]models.Review),
	}
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.emails[user.Email]; exists {
		return primitive.NilObjectID, ErrDuplicateEmail
	}
	id := primitive.NewObjectID()
	user.ID = id
	m.users[id] = *user
	m.emails[user.Email] = id
	return id, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// SetRole is test-only support for exercising role changes against the
// live-lookup auth path; the HTTP surface never mutates roles.
func (m *Memory) SetRole(id primitive.ObjectID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Role = role
		m.users[id] = u
	}
}

// DeleteUser is test-only support for exercising the live-lookup auth
// path; the HTTP surface never deletes users.
func (m *Memory) DeleteUser(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.emails, u.Email)
		delete(m.users, id)
	}
}

func (m *Memory) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	book.ID = id
	m.books[id] = *book
	m.bookOrder = append(m.bookOrder, id)
	return id, nil
}

func matchBook(b models.Book, q BookListQuery) bool {
	if q.Search != "" {
		s := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(b.Title), s) &&
			!strings.Contains(strings.ToLower(b.Author), s) {
			return false
		}
	}
	if q.Genre != "" && b.Genre != q.Genre {
		return false
	}
	return true
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func (m *Memory) annotate(b models.Book) models.RatedBook {
	rb := models.RatedBook{Book: b}
	var sum int
	for _, id := range m.reviewOrder {
		r := m.reviews[id]
		if r.BookID == b.ID {
			rb.ReviewCount++
			sum += r.Rating
		}
	}
	if rb.ReviewCount > 0 {
		avg := round1(float64(sum) / float64(rb.ReviewCount))
		rb.AverageRating = &avg
	}
	return rb
}

// compareRated orders two annotated books by the sort field. Returns
// <0, 0, >0. Nil averageRating compares below every present value,
// matching Mongo's missing-value ordering.
func compareRated(a, b models.RatedBook, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "year":
		return a.Year - b.Year
	case "reviewCount":
		return a.ReviewCount - b.ReviewCount
	case "averageRating":
		switch {
		case a.AverageRating == nil && b.AverageRating == nil:
			return 0
		case a.AverageRating == nil:
			return -1
		case b.AverageRating == nil:
			return 1
		case *a.AverageRating < *b.AverageRating:
			return -1
		case *a.AverageRating > *b.AverageRating:
			return 1
		default:
			return 0
		}
	default: // createdAt
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		default:
			return 0
		}
	}
}

func sortRated(books []models.RatedBook, key SortKey) {
	sort.Slice(books, func(i, j int) bool {
		c := compareRated(books[i], books[j], key.Field)
		if key.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		// _id ascending, independent of the sort direction
		return books[i].ID.Hex() < books[j].ID.Hex()
	})
}

func (m *Memory) ListBooks(ctx context.Context, q BookListQuery) (*BookPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []models.RatedBook{}
	for _, id := range m.bookOrder {
		b, ok := m.books[id]
		if !ok || !matchBook(b, q) {
			continue
		}
		matched = append(matched, m.annotate(b))
	}
	total := int64(len(matched))
	sortRated(matched, q.Sort)
	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return &BookPage{
		Books:      matched[start:end],
		Page:       q.Page,
		TotalBooks: total,
		TotalPages: PageCount(total, q.Limit),
	}, nil
}

func (m *Memory) BookByID(ctx context.Context, id primitive.ObjectID) (*models.RatedBook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	rb := m.annotate(b)
	return &rb, nil
}

func (m *Memory) UpdateBook(ctx context.Context, id primitive.ObjectID, upd BookUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.Genre != nil {
		b.Genre = *upd.Genre
	}
	if upd.Year != nil {
		b.Year = *upd.Year
	}
	b.UpdatedAt = nowUTC()
	m.books[id] = b
	return nil
}

func (m *Memory) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	order := m.bookOrder[:0]
	for _, bid := range m.bookOrder {
		if bid != id {
			order = append(order, bid)
		}
	}
	m.bookOrder = order
	return nil
}

func (m *Memory) BooksByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	books := []models.Book{}
	// newest first
	for i := len(m.bookOrder) - 1; i >= 0; i-- {
		if b, ok := m.books[m.bookOrder[i]]; ok && b.AddedBy == userID {
			books = append(books, b)
		}
	}
	return books, nil
}

func (m *Memory) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	review.ID = id
	m.reviews[id] = *review
	m.reviewOrder = append(m.reviewOrder, id)
	return id, nil
}

func (m *Memory) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ReviewsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.ReviewWithUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reviews := []models.ReviewWithUser{}
	// newest first
	for i := len(m.reviewOrder) - 1; i >= 0; i-- {
		r, ok := m.reviews[m.reviewOrder[i]]
		if !ok || r.BookID != bookID {
			continue
		}
		rw := models.ReviewWithUser{Review: r}
		if u, ok := m.users[r.UserID]; ok {
			rw.User = &models.ReviewUser{ID: u.ID, Name: u.Name}
		}
		reviews = append(reviews, rw)
	}
	return reviews, nil
}

func (m *Memory) UpdateReview(ctx context.Context, id primitive.ObjectID, upd ReviewUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Rating != nil {
		r.Rating = *upd.Rating
	}
	if upd.ReviewText != nil {
		r.ReviewText = *upd.ReviewText
	}
	r.UpdatedAt = nowUTC()
	m.reviews[id] = r
	return nil
}

func (m *Memory) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)
	order := m.reviewOrder[:0]
	for _, rid := range m.reviewOrder {
		if rid != id {
			order = append(order, rid)
		}
	}
	m.reviewOrder = order
	return nil
}

func (m *Memory) ReviewsByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.ReviewWithBook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reviews := []models.ReviewWithBook{}
	// newest first
	for i := len(m.reviewOrder) - 1; i >= 0; i-- {
		r, ok := m.reviews[m.reviewOrder[i]]
		if !ok || r.UserID != userID {
			continue
		}
		rw := models.ReviewWithBook{Review: r}
		if b, ok := m.books[r.BookID]; ok {
			rw.Book = &models.ReviewBook{ID: b.ID, Title: b.Title, Author: b.Author}
		}
		reviews = append(reviews, rw)
	}
	return reviews, nil
}
