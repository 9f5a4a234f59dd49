package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-manager/internal/repository"
)

type mongoCounterRepository struct {
	collection *mongo.Collection
}

func NewMongoCounterRepository(db *mongo.Database) repository.CounterRepository {
	return &mongoCounterRepository{collection: db.Collection(counterCollectionName)}
}

type counter struct {
	Key string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next increments the counter for key and returns the new value, creating
// the counter at 1 on first use. The increment is a single atomic update.
func (r *mongoCounterRepository) Next(ctx context.Context, key string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}
