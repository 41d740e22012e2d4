package store

import (
	"context"
	"time"

	"bookreviews/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func (db *Mongo) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, review, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *Mongo) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := db.Reviews().FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ReviewsForBook lists a book's reviews newest-first, each joined to
// its author's public fields.
func (db *Mongo) ReviewsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.ReviewWithUser, error) {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "bookId", Value: bookID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "user", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$user", 0}}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "user.password", Value: 0}}}},
	}
	cur, err := db.Reviews().Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []models.ReviewWithUser{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (db *Mongo) UpdateReview(ctx context.Context, id primitive.ObjectID, upd ReviewUpdate) error {
	set := bson.M{"updatedAt": nowUTC()}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.ReviewText != nil {
		set["reviewText"] = *upd.ReviewText
	}
	res, err := db.Reviews().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Mongo) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Reviews().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewsByOwner lists a user's reviews newest-first, each joined to
// the referenced book's title and author. The book slot stays null for
// reviews whose book has been deleted.
func (db *Mongo) ReviewsByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.ReviewWithBook, error) {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "books"},
			{Key: "localField", Value: "bookId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "book"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "book", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$book", 0}}}},
		}}},
	}
	cur, err := db.Reviews().Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []models.ReviewWithBook{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
