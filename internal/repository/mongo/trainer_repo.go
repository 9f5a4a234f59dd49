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

// mongoTrainerRepository implements repository.TrainerRepository using MongoDB.
// Schedule entries and salary history stay embedded; both are short and bounded.
type mongoTrainerRepository struct {
	collection *mongo.Collection
}

func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{collection: db.Collection(trainerCollectionName)}
}

func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	trainer.ID = primitive.NewObjectID()
	t := utcNow()
	trainer.CreatedAt = t
	trainer.UpdatedAt = t

	if _, err := r.collection.InsertOne(ctx, trainer); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return trainer.ID, nil
}

func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	var trainer domain.Trainer
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trainer); err != nil {
		return nil, findErr(err)
	}
	return &trainer, nil
}

func (r *mongoTrainerRepository) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&trainer); err != nil {
		return nil, findErr(err)
	}
	return &trainer, nil
}

func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = utcNow()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": trainer.ID}, trainer)
	if err != nil {
		return writeErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoTrainerRepository) List(ctx context.Context, filter bson.M, page query.PageRequest) (*query.Page[domain.Trainer], error) {
	return query.Paginate[domain.Trainer](ctx, r.collection, filter, page)
}

func (r *mongoTrainerRepository) AddScheduleEntry(ctx context.Context, id primitive.ObjectID, entry domain.ScheduleEntry) error {
	return updateByID(ctx, r.collection, id, bson.M{
		"$push": bson.M{"schedule": entry},
		"$set":  bson.M{"updatedAt": utcNow()},
	})
}

// RemoveScheduleEntry pulls one entry; ErrNotFound when the trainer or the entry is missing.
func (r *mongoTrainerRepository) RemoveScheduleEntry(ctx context.Context, id, entryID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "schedule._id": entryID},
		bson.M{
			"$pull": bson.M{"schedule": bson.M{"_id": entryID}},
			"$set":  bson.M{"updatedAt": utcNow()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainerRepository) AddSalaryRecord(ctx context.Context, id primitive.ObjectID, record domain.SalaryRecord) error {
	return updateByID(ctx, r.collection, id, bson.M{
		"$push": bson.M{"salaryHistory": record},
		"$set":  bson.M{"salary": record.Amount, "updatedAt": utcNow()},
	})
}

func (r *mongoTrainerRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.TrainerStatus) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"status": status, "updatedAt": utcNow()}})
}

func (r *mongoTrainerRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"avatar": url, "updatedAt": utcNow()}})
}

// EnsureTrainerIndexes creates necessary indexes for the trainers collection.
func EnsureTrainerIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "specialties", Value: 1}}},
	})
}
