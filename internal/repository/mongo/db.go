package mongo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI
// and verifies it with a ping against the primary.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connect can succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are logged
// and do not stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := []struct {
		collection string
		fn         func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{exerciseCollectionName, EnsureExerciseIndexes},
		{exerciseIndexCollectionName, EnsureExerciseIndexIndexes},
		{workoutCollectionName, EnsureWorkoutIndexes},
		{postCollectionName, EnsurePostIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(ctx, db.Collection(e.collection)); err != nil {
			log.Warnf("failed to create indexes for collection %s: %s", e.collection, err)
		}
	}
	log.Infoln("index creation process completed")
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
