package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genres is the fixed set of accepted book genres.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Thriller",
	"Fantasy",
	"Science Fiction",
	"Romance",
	"Horror",
	"Biography",
	"History",
	"Poetry",
	"Self-Help",
	"Other",
}

func ValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

type Book struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Author      string             `bson:"author" json:"author"`
	Description string             `bson:"description" json:"description"`
	Genre       string             `bson:"genre" json:"genre"`
	Year        int                `bson:"year" json:"year"`
	AddedBy     primitive.ObjectID `bson:"addedBy" json:"addedBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RatedBook is a Book annotated with review aggregates. The aggregates
// are computed at read time and never persisted; AverageRating is nil
// when the book has no reviews so it serializes as absent, not 0.
type RatedBook struct {
	Book          `bson:",inline"`
	ReviewCount   int      `bson:"reviewCount" json:"reviewCount"`
	AverageRating *float64 `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
}
