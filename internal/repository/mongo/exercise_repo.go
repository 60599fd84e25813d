package mongo

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise. The id is chosen by the caller.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" || exercise.Name == "" {
		return errors.New("exercise id and name are required")
	}

	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	exercise.Normalize()

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// Upsert replaces the exercise with the same id, keeping its original createdAt.
func (r *mongoExerciseRepository) Upsert(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" || exercise.Name == "" {
		return errors.New("exercise id and name are required")
	}
	exercise.Normalize()
	now := time.Now().UTC()
	exercise.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"name":             exercise.Name,
			"bodyPart":         exercise.BodyPart,
			"equipment":        exercise.Equipment,
			"target":           exercise.Target,
			"secondaryMuscles": exercise.SecondaryMuscles,
			"instructions":     exercise.Instructions,
			"sourceGifUrl":     exercise.SourceGifURL,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update, options.Update().SetUpsert(true))
	return err
}

// GetByID retrieves an exercise by its catalog id.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	exercise.Normalize()
	return &exercise, nil
}

// List retrieves the exercises matching the filter, ordered by id.
func (r *mongoExerciseRepository) List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	query := bson.M{}
	if filter.BodyPart != "" {
		query["bodyPart"] = filter.BodyPart
	}
	if filter.Target != "" {
		query["target"] = filter.Target
	}
	if filter.Equipment != "" {
		query["equipment"] = filter.Equipment
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	for i := range exercises {
		exercises[i].Normalize()
	}
	return exercises, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "bodyPart", Value: 1}}},
		{Keys: bson.D{{Key: "target", Value: 1}}},
		{Keys: bson.D{{Key: "equipment", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
