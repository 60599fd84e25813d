package mongo

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	exerciseIndexCollectionName = "exercise_index"
	counterCollectionName       = "counters"
	exerciseIndexCounterKey     = "exerciseIndex"
)

// mongoExerciseIndexRepository implements repository.ExerciseIndexRepository.
// The last handed out sequential id lives in a counter document; each mapping
// is its own document keyed by the original exercise id.
type mongoExerciseIndexRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewMongoExerciseIndexRepository(db *mongo.Database) repository.ExerciseIndexRepository {
	return &mongoExerciseIndexRepository{
		collection: db.Collection(exerciseIndexCollectionName),
		counters:   db.Collection(counterCollectionName),
	}
}

func (r *mongoExerciseIndexRepository) GetByOriginalID(ctx context.Context, originalID string) (*domain.ExerciseIndex, error) {
	return r.findOne(ctx, bson.M{"_id": originalID})
}

func (r *mongoExerciseIndexRepository) GetBySequentialID(ctx context.Context, sequentialID int) (*domain.ExerciseIndex, error) {
	return r.findOne(ctx, bson.M{"sequentialId": sequentialID})
}

func (r *mongoExerciseIndexRepository) findOne(ctx context.Context, filter bson.M) (*domain.ExerciseIndex, error) {
	var entry domain.ExerciseIndex
	if err := r.collection.FindOne(ctx, filter).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Allocate reserves the next counter value and stores the mapping. When a
// concurrent writer stored a mapping for the same id first, that mapping wins
// and the reserved value is left unused, so ids stay unique and increasing.
func (r *mongoExerciseIndexRepository) Allocate(ctx context.Context, originalID string) (*domain.ExerciseIndex, error) {
	existing, err := r.GetByOriginalID(ctx, originalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	seq, err := r.nextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserve sequential id: %w", err)
	}

	entry := &domain.ExerciseIndex{
		OriginalID:   originalID,
		SequentialID: seq,
		AssignedAt:   time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if isDuplicateKey(err) {
			return r.GetByOriginalID(ctx, originalID)
		}
		return nil, err
	}
	return entry, nil
}

func (r *mongoExerciseIndexRepository) nextSequence(ctx context.Context) (int, error) {
	var counter struct {
		Value int `bson:"value"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": exerciseIndexCounterKey},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	// A fresh counter starts at zero, so the first value is 1.
	return counter.Value + domain.FirstSequentialID - 1, nil
}

// EnsureExerciseIndexIndexes makes sequential ids unique.
func EnsureExerciseIndexIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sequentialId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
