package mongo

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postCollectionName = "posts"

// mongoPostRepository implements repository.PostRepository.
// Likes are stored as a set of user ids on the post document.
type mongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) repository.PostRepository {
	return &mongoPostRepository{
		collection: db.Collection(postCollectionName),
	}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error) {
	if post.AuthorID == primitive.NilObjectID || post.Title == "" {
		return primitive.NilObjectID, errors.New("post requires authorId and title")
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	if post.LikedBy == nil {
		post.LikedBy = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return primitive.NilObjectID, err
	}
	return post.ID, nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var post domain.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns posts newest first; ObjectIDs break ties between equal timestamps.
func (r *mongoPostRepository) List(ctx context.Context, limit int64) ([]domain.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []domain.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	// $addToSet prevents duplicates
	return r.updateLikes(ctx, postID, bson.M{"$addToSet": bson.M{"likedBy": userID}})
}

func (r *mongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likedBy": userID}})
}

func (r *mongoPostRepository) updateLikes(ctx context.Context, postID primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	// ModifiedCount is 0 when the set already had (or lacked) the user; that is fine.
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id, authorID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "authorId": authorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePostIndexes supports the newest-first feed query.
func EnsurePostIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
