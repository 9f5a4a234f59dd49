package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
)

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user. A taken email yields repository.ErrDuplicate.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	t := utcNow()
	user.CreatedAt = t
	user.UpdatedAt = t

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return user.ID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, findErr(err)
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, findErr(err)
	}
	return &user, nil
}

// UpdateProfile writes the editable profile fields. Credentials, role and OTP are left alone.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = utcNow()
	return updateByID(ctx, r.collection, user.ID, bson.M{"$set": bson.M{
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"email":       user.Email,
		"phone":       user.Phone,
		"preferences": user.Preferences,
		"updatedAt":   user.UpdatedAt,
	}})
}

func (r *mongoUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"lastLogin": at}})
}

// SetPassword replaces the hash and drops any pending reset code.
func (r *mongoUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return updateByID(ctx, r.collection, id, bson.M{
		"$set":   bson.M{"passwordHash": hash, "updatedAt": utcNow()},
		"$unset": bson.M{"otp": ""},
	})
}

func (r *mongoUserRepository) SetOTP(ctx context.Context, id primitive.ObjectID, otp *domain.OTP) error {
	if otp == nil {
		return updateByID(ctx, r.collection, id, bson.M{"$unset": bson.M{"otp": ""}})
	}
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"otp": otp}})
}

func (r *mongoUserRepository) IncrementOTPAttempts(ctx context.Context, id primitive.ObjectID) error {
	return updateByID(ctx, r.collection, id, bson.M{"$inc": bson.M{"otp.attempts": 1}})
}

func (r *mongoUserRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"avatar": url, "updatedAt": utcNow()}})
}

// ListActive returns active users, optionally limited to roles.
func (r *mongoUserRepository) ListActive(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	filter := bson.M{"isActive": true}
	if len(roles) > 0 {
		filter["role"] = bson.M{"$in": roles}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "isActive", Value: 1}},
		},
	})
}
