package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names
const (
	clientCollectionName       = "clients"
	attendanceCollectionName   = "attendance"
	progressCollectionName     = "progress"
	trainerCollectionName      = "trainers"
	paymentCollectionName      = "payments"
	userCollectionName         = "users"
	notificationCollectionName = "notifications"
	activityCollectionName     = "activities"
	counterCollectionName      = "counters"
)

// ConnectDB establishes a connection to MongoDB using the provided URI and
// pings the primary before returning the client.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged
// per collection and do not stop the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureClientIndexes(ctx, db.Collection(clientCollectionName))
	EnsureAttendanceIndexes(ctx, db.Collection(attendanceCollectionName))
	EnsureProgressIndexes(ctx, db.Collection(progressCollectionName))
	EnsureTrainerIndexes(ctx, db.Collection(trainerCollectionName))
	EnsurePaymentIndexes(ctx, db.Collection(paymentCollectionName))
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureNotificationIndexes(ctx, db.Collection(notificationCollectionName))
	EnsureActivityIndexes(ctx, db.Collection(activityCollectionName))
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("failed to create indexes", "collection", collection.Name(), "error", err)
	}
}

// writeErr maps driver write errors onto repository sentinels.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// findErr maps a missing document onto repository.ErrNotFound.
func findErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// updateByID applies update to the document with id, failing with
// ErrNotFound when there is none.
func updateByID(ctx context.Context, collection *mongo.Collection, id interface{}, update bson.M) error {
	result, err := collection.UpdateByID(ctx, id, update)
	if err != nil {
		return writeErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, collection *mongo.Collection, filter bson.M) error {
	result, err := collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
