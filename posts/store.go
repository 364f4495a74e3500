package posts

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/user/inkwell-go/db"
)

// Store is the persistence surface for the post aggregate. Implementations
// must guarantee that every mutation is a single atomic document write.
type Store interface {
	// Insert persists a new post and fills in its generated ID.
	Insert(ctx context.Context, post *Post) error
	// FindByID returns the post or ErrPostNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Post, error)
	// FindAll returns every post, newest first by creation time.
	FindAll(ctx context.Context) ([]Post, error)
	// UpdateFields overwrites the four mutable fields in one write and
	// returns the updated post.
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields PostFields) (*Post, error)
	// Delete removes the post. Deleting an absent post is not an error.
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ToggleLike atomically flips membership of userID in the like-set and
	// returns the updated post.
	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*Post, error)
	// AddComment atomically appends a comment and returns the updated post.
	AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Post, error)
}

// MongoStore implements Store on the posts collection.
type MongoStore struct {
	posts *mongo.Collection
}

// NewMongoStore creates a MongoStore bound to the given database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{posts: database.Collection(db.PostsCollection)}
}

// Insert persists a new post and fills in its generated ID.
func (s *MongoStore) Insert(ctx context.Context, post *Post) error {
	res, err := s.posts.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = id
	}
	return nil
}

// FindByID returns the post or ErrPostNotFound.
func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Post, error) {
	var post Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// FindAll returns every post, newest first by creation time.
func (s *MongoStore) FindAll(ctx context.Context) ([]Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []Post
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateFields overwrites the four mutable fields in one document write.
func (s *MongoStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields PostFields) (*Post, error) {
	update := bson.M{"$set": bson.M{
		"title":     fields.Title,
		"content":   fields.Content,
		"excerpt":   fields.Excerpt,
		"image":     fields.Image,
		"updatedAt": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	if err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes the post. The operation is idempotent: a zero delete count
// is not reported as an error.
func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ToggleLike flips membership of userID in the like-set. The whole toggle is
// one aggregation-pipeline update, so concurrent toggles serialize on the
// document write instead of racing through a read-modify-write window, and
// the like-set can never hold duplicates.
func (s *MongoStore) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*Post, error) {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
				bson.D{{Key: "$setDifference", Value: bson.A{likes, bson.A{userID}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	if err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// AddComment appends a comment in one atomic document write.
func (s *MongoStore) AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	if err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}
