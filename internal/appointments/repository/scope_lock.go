package repository

import (
	"context"
	"fmt"
	"time"

	appterrors "clinicsched/internal/appointments/errors"
	"clinicsched/internal/migrations/mongo/collections"
	"clinicsched/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScopeLockRepository bumps one lock document per scope key. Called inside
// a commit transaction, two writers of the same scope touch the same
// document, so the later one hits a write conflict and the driver retries
// it against a snapshot that includes the earlier commit.
type ScopeLockRepository interface {
	Acquire(ctx context.Context, keys []string) error
}

type mongoScopeLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScopeLockRepository(cfg *config.Config) ScopeLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScopeLockRepository{
		cfg:        cfg,
		collection: db.Collection(collections.ScopeLocks),
	}
}

func (r *mongoScopeLockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Acquire expects keys in a stable order, as returned by facade.Keys.
// A duplicate key means another request created the same lock first.
func (r *mongoScopeLockRepository) Acquire(ctx context.Context, keys []string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.Update().SetUpsert(true)
	for _, key := range keys {
		update := bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": now},
		}
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: %s", appterrors.ErrScopeLocked, key)
			}
			return fmt.Errorf("failed to acquire scope lock %s: %w", key, err)
		}
	}
	return nil
}
