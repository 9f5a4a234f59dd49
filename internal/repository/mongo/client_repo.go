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

// mongoClientRepository implements repository.ClientRepository using MongoDB.
type mongoClientRepository struct {
	collection *mongo.Collection
}

func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
	}
}

// trainerExpand inlines the assigned trainer of each listed client.
var trainerExpand = query.Expand{
	Field:  "assignedTrainer",
	From:   trainerCollectionName,
	Select: domain.SummaryFields,
	As:     "trainer",
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	client.ID = primitive.NewObjectID()
	t := utcNow()
	client.CreatedAt = t
	client.UpdatedAt = t

	if _, err := r.collection.InsertOne(ctx, client); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return client.ID, nil
}

func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client); err != nil {
		return nil, findErr(err)
	}
	return &client, nil
}

func (r *mongoClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&client); err != nil {
		return nil, findErr(err)
	}
	return &client, nil
}

// Update replaces the stored client with client.
func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = utcNow()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": client.ID}, client)
	if err != nil {
		return writeErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoClientRepository) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.ClientRecord], error) {
	page.Expand = append(page.Expand, trainerExpand)
	return query.Paginate[domain.ClientRecord](ctx, r.collection, filter, page)
}

func (r *mongoClientRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Client, error) {
	opts := options.Find().SetSort(bson.D{{Key: "firstName", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"assignedTrainer": trainerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []domain.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoClientRepository) CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"assignedTrainer": trainerID})
}

func (r *mongoClientRepository) ExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]domain.Client, error) {
	filter := bson.M{
		"status":            domain.ClientActive,
		"membershipEndDate": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "membershipEndDate", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []domain.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoClientRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"avatar": url, "updatedAt": utcNow()}})
}

// SetMembership sets type and end date and reactivates an expired or inactive membership.
func (r *mongoClientRepository) SetMembership(ctx context.Context, id primitive.ObjectID, membership domain.MembershipType, end time.Time) error {
	client, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	set := bson.M{
		"membershipType":    membership,
		"membershipEndDate": end,
		"updatedAt":         utcNow(),
	}
	if client.Status != domain.ClientSuspended {
		set["status"] = domain.ClientActive
	}
	return updateByID(ctx, r.collection, id, bson.M{"$set": set})
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "assignedTrainer", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "membershipEndDate", Value: 1}}},
		{Keys: bson.D{{Key: "membershipType", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
}
