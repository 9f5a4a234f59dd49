package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/repository"
)

// mongoPaymentRepository implements repository.PaymentRepository using MongoDB.
type mongoPaymentRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{collection: db.Collection(paymentCollectionName)}
}

var paymentExpands = []query.Expand{
	{Field: "client", From: clientCollectionName, Select: domain.SummaryFields, As: "clientInfo"},
	{Field: "trainer", From: trainerCollectionName, Select: domain.SummaryFields, As: "trainerInfo"},
}

func expandStages(pipeline mongo.Pipeline, expands []query.Expand) mongo.Pipeline {
	for _, e := range expands {
		pipeline = append(pipeline, query.LookupStages(e)...)
	}
	return pipeline
}

// Create inserts a payment. The invoice number must already be assigned;
// a repeated one yields repository.ErrDuplicate.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	payment.ID = primitive.NewObjectID()
	t := utcNow()
	payment.CreatedAt = t
	payment.UpdatedAt = t

	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return payment.ID, nil
}

func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PaymentRecord, error) {
	pipeline := expandStages(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$limit", Value: 1}},
	}, paymentExpands)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, repository.ErrNotFound
	}
	var record domain.PaymentRecord
	if err := cursor.Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces a payment that has not been refunded. A refund committed
// after the caller loaded the payment makes this ErrConflict.
func (r *mongoPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	payment.UpdatedAt = utcNow()
	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": payment.ID, "status": bson.M{"$ne": domain.PaymentRefunded}},
		payment,
	)
	if err != nil {
		return writeErr(err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, payment.ID)
	}
	return nil
}

func (r *mongoPaymentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoPaymentRepository) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.PaymentRecord], error) {
	page.Expand = append(page.Expand, paymentExpands...)
	return query.Paginate[domain.PaymentRecord](ctx, r.collection, filter, page)
}

func (r *mongoPaymentRepository) FindAll(ctx context.Context, filter bson.M, sort string) ([]domain.PaymentRecord, error) {
	if filter == nil {
		filter = bson.M{}
	}
	pipeline := expandStages(mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: query.BuildSort(sort)}},
	}, paymentExpands)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []domain.PaymentRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkRefunded only matches a payment that is still completed, so two
// concurrent refunds cannot both succeed.
func (r *mongoPaymentRepository) MarkRefunded(ctx context.Context, id primitive.ObjectID, refund domain.Refund) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": domain.PaymentCompleted},
		bson.M{"$set": bson.M{
			"status":    domain.PaymentRefunded,
			"refund":    refund,
			"updatedAt": utcNow(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict explains a conditional write that matched nothing.
func (r *mongoPaymentRepository) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// EnsurePaymentIndexes creates necessary indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "trainer", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "paidAt", Value: -1}}},
	})
}
