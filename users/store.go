// Package users encapsulates user profile management: the mongo-backed
// credential store and the profile/avatar operations built on it.
package users

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/db"
)

// ProfileUpdate carries the optional profile fields to persist. A nil field
// is left untouched.
type ProfileUpdate struct {
	Username *string
	Bio      *string
	Avatar   *string
}

// Store is the persistence surface for users. It extends the credential
// store contract the auth package depends on with profile operations.
type Store interface {
	auth.UserStore
	// FindByUsername looks a user up by exact username.
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
	// UpdateProfile applies the given fields and returns the updated record.
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*auth.User, error)
}

// MongoStore implements Store on the users collection.
type MongoStore struct {
	users *mongo.Collection
}

// NewMongoStore creates a MongoStore bound to the given database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{users: database.Collection(db.UsersCollection)}
}

// Insert persists a new user and fills in its generated ID. Duplicate
// username or email (unique index violation) maps to auth.ErrDuplicateUser.
func (s *MongoStore) Insert(ctx context.Context, user *auth.User) error {
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrDuplicateUser
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var user auth.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up by exact email.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByID resolves a user by its stable identifier.
func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByUsername looks a user up by exact username.
func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

// FindByUsernameOrEmail returns any user matching either field exactly.
func (s *MongoStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

// UpdateProfile applies the non-nil fields in one document write and returns
// the updated record.
func (s *MongoStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*auth.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user auth.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, auth.ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}
