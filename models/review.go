package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Rating     int                `bson:"rating" json:"rating"` // 1..5
	ReviewText string             `bson:"reviewText" json:"reviewText"`
	BookID     primitive.ObjectID `bson:"bookId" json:"bookId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewUser is the slice of the author embedded in review responses.
type ReviewUser struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// ReviewWithUser is a review joined to its author's public fields.
type ReviewWithUser struct {
	Review `bson:",inline"`
	User   *ReviewUser `bson:"user,omitempty" json:"user,omitempty"`
}

// ReviewBook is the slice of the reviewed book embedded in my-reviews
// responses. Nil when the book has since been deleted; clients render a
// placeholder for orphaned reviews.
type ReviewBook struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Title  string             `bson:"title" json:"title"`
	Author string             `bson:"author" json:"author"`
}

// ReviewWithBook is a review joined to the book it refers to.
type ReviewWithBook struct {
	Review `bson:",inline"`
	Book   *ReviewBook `bson:"book" json:"book"`
}
