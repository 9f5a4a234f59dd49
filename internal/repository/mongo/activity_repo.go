package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

type mongoActivityRepository struct {
	collection *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &mongoActivityRepository{collection: db.Collection(activityCollectionName)}
}

var actorExpand = query.Expand{
	Field:  "actor",
	From:   userCollectionName,
	Select: domain.SummaryFields,
	As:     "actorInfo",
}

func (r *mongoActivityRepository) Create(ctx context.Context, a *domain.Activity) (primitive.ObjectID, error) {
	a.ID = primitive.NewObjectID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utcNow()
	}
	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return a.ID, nil
}

func (r *mongoActivityRepository) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ActivityRecord], error) {
	page.Expand = append(page.Expand, actorExpand)
	return query.Paginate[domain.ActivityRecord](ctx, r.collection, filter, page)
}

func EnsureActivityIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "entity.kind", Value: 1}, {Key: "entity.id", Value: 1}}},
	})
}
