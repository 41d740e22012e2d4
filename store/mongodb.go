package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var _ Store = (*Mongo)(nil)

func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *Mongo) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *Mongo) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *Mongo) Reviews() *mongo.Collection {
	return db.Database.Collection("reviews")
}

// EnsureIndexes creates the indexes the queries rely on. Run once at
// startup; creation is idempotent.
func (db *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := db.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Books().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "addedBy", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Reviews().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

func (db *Mongo) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
