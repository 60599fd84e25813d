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

const scheduleCollectionName = "schedules"

// mongoScheduleRepository keeps one document per user, keyed by user id:
// {_id, days: {Monday: {type, exercises: [...]}, ...}, updatedAt}.
// Each operation touches a single day's fields, so writes to different days
// never clobber each other.
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

func (r *mongoScheduleRepository) Get(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	var schedule domain.WeeklySchedule
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewWeeklySchedule(userID), nil
		}
		return nil, err
	}
	if schedule.Days == nil {
		schedule.Days = map[domain.Weekday]domain.WorkoutDay{}
	}
	return &schedule, nil
}

func (r *mongoScheduleRepository) SetDayType(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, workoutType string) error {
	update := bson.M{
		"$set": bson.M{
			dayField(day, "type"): workoutType,
			"updatedAt":           time.Now().UTC(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoScheduleRepository) AddExercise(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, exercise domain.Exercise) (bool, error) {
	if err := r.ensureDocument(ctx, userID); err != nil {
		return false, err
	}

	exercise.Normalize()
	exercisesField := dayField(day, "exercises")
	// Only match when the id is not on that day yet, so a repeat is a no-op.
	filter := bson.M{
		"_id":                    userID,
		exercisesField + "._id": bson.M{"$ne": exercise.ID},
	}
	update := bson.M{
		"$push": bson.M{exercisesField: exercise},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoScheduleRepository) RemoveExercise(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, exerciseID string) (bool, error) {
	exercisesField := dayField(day, "exercises")
	filter := bson.M{
		"_id":                    userID,
		exercisesField + "._id": exerciseID,
	}
	update := bson.M{
		"$pull": bson.M{exercisesField: bson.M{"_id": exerciseID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ensureDocument creates an empty schedule for first-time users.
func (r *mongoScheduleRepository) ensureDocument(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{"$setOnInsert": bson.M{"updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

func dayField(day domain.Weekday, field string) string {
	return "days." + string(day) + "." + field
}
