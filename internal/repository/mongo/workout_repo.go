// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new saved workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CreatedBy == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires createdBy and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Day.Exercises == nil {
		workout.Day.Exercises = []domain.Exercise{}
	}

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByCreator retrieves a user's saved workouts, newest first.
func (r *mongoWorkoutRepository) GetByCreator(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	if workout.Day.Exercises == nil {
		workout.Day.Exercises = []domain.Exercise{}
	}

	// createdBy in the filter keeps other users' workouts out of reach.
	filter := bson.M{"_id": workout.ID, "createdBy": workout.CreatedBy}
	workout.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":        workout.Name,
			"description": workout.Description,
			"duration":    workout.Duration,
			"day":         workout.Day,
			"updatedAt":   workout.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	// Filter ensures the workout exists AND belongs to the caller.
	filter := bson.M{
		"_id":       id,
		"createdBy": creatorID,
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
