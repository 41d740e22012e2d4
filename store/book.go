package store

import (
	"context"
	"regexp"

	"bookreviews/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Mongo) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// bookMatchFilter builds the predicate shared by the paged listing and
// the total count: case-insensitive substring match on title or author,
// plus exact genre equality.
func bookMatchFilter(q BookListQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"author": re},
		}
	}
	if q.Genre != "" {
		filter["genre"] = q.Genre
	}
	return filter
}

// reviewAggregationStages joins a book to its reviews and derives
// reviewCount and averageRating (mean rounded to one decimal; $avg of
// an empty array is null, which decodes to a nil AverageRating). These
// stages run before any sort so computed fields are sortable.
func reviewAggregationStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "reviews"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "bookId"},
			{Key: "as", Value: "reviews"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "averageRating", Value: bson.D{{Key: "$round", Value: bson.A{
				bson.D{{Key: "$avg", Value: "$reviews.rating"}},
				1,
			}}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "reviews", Value: 0}}}},
	}
}

// bookListPipeline is the full listing pipeline: match, review join and
// aggregate derivation, sort (with _id ascending as the stable
// tie-break so pages stay contiguous across requests), then skip/limit.
func bookListPipeline(q BookListQuery) mongo.Pipeline {
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}
	p := mongo.Pipeline{
		{{Key: "$match", Value: bookMatchFilter(q)}},
	}
	p = append(p, reviewAggregationStages()...)
	p = append(p,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: q.Sort.Field, Value: dir},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$skip", Value: int64(q.Page-1) * int64(q.Limit)}},
		bson.D{{Key: "$limit", Value: int64(q.Limit)}},
	)
	return p
}

// ListBooks runs the catalog listing. The total is counted in a
// separate round-trip sharing the match predicate with the paged
// pipeline; a concurrent write between the two can skew totalPages by
// at most one record, which is accepted staleness.
func (db *Mongo) ListBooks(ctx context.Context, q BookListQuery) (*BookPage, error) {
	total, err := db.Books().CountDocuments(ctx, bookMatchFilter(q))
	if err != nil {
		return nil, err
	}
	cur, err := db.Books().Aggregate(ctx, bookListPipeline(q))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.RatedBook{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return &BookPage{
		Books:      books,
		Page:       q.Page,
		TotalBooks: total,
		TotalPages: PageCount(total, q.Limit),
	}, nil
}

// BookByID reads one book with its review aggregates, using the same
// derivation stages as the listing so the two paths agree numerically.
func (db *Mongo) BookByID(ctx context.Context, id primitive.ObjectID) (*models.RatedBook, error) {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	p = append(p, reviewAggregationStages()...)
	cur, err := db.Books().Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.RatedBook
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound
	}
	return &books[0], nil
}

func (db *Mongo) UpdateBook(ctx context.Context, id primitive.ObjectID, upd BookUpdate) error {
	set := bson.M{"updatedAt": nowUTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Genre != nil {
		set["genre"] = *upd.Genre
	}
	if upd.Year != nil {
		set["year"] = *upd.Year
	}
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes the book only. Its reviews are left in place;
// ownership views tolerate the dangling book reference.
func (db *Mongo) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Books().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Mongo) BooksByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx, bson.M{"addedBy": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}
