package store

import (
	"context"

	"bookreviews/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence boundary. Mongo is the production
// implementation; Memory backs the tests with identical semantics.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	ListBooks(ctx context.Context, q BookListQuery) (*BookPage, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.RatedBook, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, upd BookUpdate) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
	BooksByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error)

	InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ReviewsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.ReviewWithUser, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, upd ReviewUpdate) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	ReviewsByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.ReviewWithBook, error)
}
