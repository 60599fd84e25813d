package mongo

import (
	"alcyxob/fitness-social/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestPostRepository_Likes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	postID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	mt.Run("like on missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.AddLike(context.Background(), postID, userID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("repeated like is not an error", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		assert.NoError(t, repo.AddLike(context.Background(), postID, userID))
	})

	mt.Run("unlike", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.RemoveLike(context.Background(), postID, userID))
	})
}
