package main

import (
	"alcyxob/fitness-social/internal/api"
	"alcyxob/fitness-social/internal/config"
	"alcyxob/fitness-social/internal/repository"
	"alcyxob/fitness-social/internal/repository/memory"
	"alcyxob/fitness-social/internal/repository/mongo"
	redisrepo "alcyxob/fitness-social/internal/repository/redis"
	"alcyxob/fitness-social/internal/storage"
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

// store is the durable state of the service.
type store struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	index     repository.ExerciseIndexRepository
	schedules repository.ScheduleRepository
	workouts  repository.WorkoutRepository
	posts     repository.PostRepository
	close     func()
}

func openStore(ctx context.Context, dbCfg config.DatabaseConfig) (*store, error) {
	switch dbCfg.Driver {
	case config.DriverMemory:
		log.Warnln("using the in-memory store, data is lost on exit")
		return &store{
			users:     memory.NewUserRepository(),
			exercises: memory.NewExerciseRepository(),
			index:     memory.NewExerciseIndexRepository(),
			schedules: memory.NewScheduleRepository(),
			workouts:  memory.NewWorkoutRepository(),
			posts:     memory.NewPostRepository(),
			close:     func() {},
		}, nil
	case config.DriverMongo, "":
		dbClient, err := mongo.ConnectDB(ctx, dbCfg.URI)
		if err != nil {
			return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		appDB := dbClient.Database(dbCfg.Name)
		log.Infof("connected to MongoDB database %s", dbCfg.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		mongo.EnsureIndexes(indexCtx, appDB)
		cancel()

		return &store{
			users:     mongo.NewMongoUserRepository(appDB),
			exercises: mongo.NewMongoExerciseRepository(appDB),
			index:     mongo.NewMongoExerciseIndexRepository(appDB),
			schedules: mongo.NewMongoScheduleRepository(appDB),
			workouts:  mongo.NewMongoWorkoutRepository(appDB),
			posts:     mongo.NewMongoPostRepository(appDB),
			close: func() {
				log.Infoln("disconnecting MongoDB")
				if err := mongo.DisconnectDB(dbClient); err != nil {
					log.Errorf("failed to disconnect MongoDB: %s", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
	}
}

// openSessions returns the session table and the login rate limiter. Without
// a Redis address sessions stay in memory and logins are not rate limited.
func openSessions(ctx context.Context, redisCfg config.RedisConfig) (repository.SessionRepository, api.RequestRateLimiter, func(), error) {
	if redisCfg.Addr == "" {
		log.Warnln("redis.addr not set: sessions kept in memory, login rate limiting disabled")
		return memory.NewSessionRepository(), nil, func() {}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("could not connect to redis at %s: %w", redisCfg.Addr, err)
	}
	log.Infof("connected to redis at %s", redisCfg.Addr)

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client: %s", err)
		}
	}
	return redisrepo.NewSessionRepository(rdb), redis_rate.NewLimiter(rdb), closeFn, nil
}

// openFileStorage returns nil when no bucket is configured; GIF routes then
// answer 503.
func openFileStorage(ctx context.Context, s3Cfg config.S3Config) (storage.FileStorage, error) {
	if s3Cfg.BucketName == "" {
		log.Warnln("s3.bucket_name not set: GIF storage disabled")
		return nil, nil
	}
	return storage.NewS3Storage(ctx, s3Cfg)
}
