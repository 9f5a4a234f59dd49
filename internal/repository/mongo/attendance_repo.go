package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

type mongoAttendanceRepository struct {
	collection *mongo.Collection
}

func NewMongoAttendanceRepository(db *mongo.Database) repository.AttendanceRepository {
	return &mongoAttendanceRepository{collection: db.Collection(attendanceCollectionName)}
}

func (r *mongoAttendanceRepository) Create(ctx context.Context, entry *domain.AttendanceEntry) (primitive.ObjectID, error) {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = utcNow()
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return entry.ID, nil
}

func (r *mongoAttendanceRepository) List(ctx context.Context, clientID primitive.ObjectID, page query.PageRequest) (*query.Page[domain.AttendanceEntry], error) {
	return query.Paginate[domain.AttendanceEntry](ctx, r.collection, bson.M{"clientId": clientID}, page)
}

func (r *mongoAttendanceRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"checkIn": bson.M{"$gte": since}})
}

func (r *mongoAttendanceRepository) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

func EnsureAttendanceIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "checkIn", Value: -1}}},
		{Keys: bson.D{{Key: "checkIn", Value: -1}}},
	})
}
