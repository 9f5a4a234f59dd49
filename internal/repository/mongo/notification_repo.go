package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationCollectionName)}
}

func prepareNotification(n *domain.Notification, t time.Time) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = t
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = t.Add(domain.NotificationTTL)
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityMedium
	}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	prepareNotification(n, utcNow())
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return n.ID, nil
}

func (r *mongoNotificationRepository) CreateMany(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	t := utcNow()
	docs := make([]interface{}, len(ns))
	for i := range ns {
		prepareNotification(&ns[i], t)
		docs[i] = ns[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return writeErr(err)
}

func (r *mongoNotificationRepository) List(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page query.PageRequest) (*query.Page[domain.Notification], error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["read"] = false
	}
	return query.Paginate[domain.Notification](ctx, r.collection, filter, page)
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, id, recipient primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id, "recipient": recipient})
}

func (r *mongoNotificationRepository) UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
}

func (r *mongoNotificationRepository) ExistsSince(ctx context.Context, recipient primitive.ObjectID, kind domain.NotificationType, ref domain.EntityRef, since time.Time) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"recipient":      recipient,
		"type":           kind,
		"reference.kind": ref.Kind,
		"reference.id":   ref.ID,
		"createdAt":      bson.M{"$gte": since},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// EnsureNotificationIndexes creates the per-recipient index and the TTL
// index that deletes notifications once expiresAt has passed.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
}
