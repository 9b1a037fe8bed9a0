package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicsched/internal/migrations/mongo/collections"
	whErrors "clinicsched/internal/workinghours/errors"
	"clinicsched/pkg/config"
	"clinicsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkingHoursRepository interface {
	Find(ctx context.Context, tenantID, providerID string) (*model.WorkingHoursConfig, error)
	Upsert(ctx context.Context, cfg *model.WorkingHoursConfig) error
	Delete(ctx context.Context, tenantID, providerID string) error
}

type mongoWorkingHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkingHoursRepository(cfg *config.Config) WorkingHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkingHoursRepository{
		cfg:        cfg,
		collection: db.Collection(collections.WorkingHours),
	}
}

func (r *mongoWorkingHoursRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func filterFor(tenantID, providerID string) bson.M {
	return bson.M{"tenant_id": tenantID, "provider_id": providerID}
}

func (r *mongoWorkingHoursRepository) Find(ctx context.Context, tenantID, providerID string) (*model.WorkingHoursConfig, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc model.WorkingHoursConfig
	err := r.collection.FindOne(ctx, filterFor(tenantID, providerID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, whErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find working hours: %w", err)
	}
	return &doc, nil
}

// Upsert replaces the document for (tenant, provider). The unique index on
// that pair keeps one document per owner.
func (r *mongoWorkingHoursRepository) Upsert(ctx context.Context, wh *model.WorkingHoursConfig) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	wh.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"tenant_id":   wh.TenantID,
			"provider_id": wh.ProviderID,
			"hours":       wh.Hours,
			"updated_at":  wh.UpdatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filterFor(wh.TenantID, wh.ProviderID), update, opts); err != nil {
		return fmt.Errorf("failed to upsert working hours: %w", err)
	}
	return nil
}

func (r *mongoWorkingHoursRepository) Delete(ctx context.Context, tenantID, providerID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, filterFor(tenantID, providerID))
	if err != nil {
		return fmt.Errorf("failed to delete working hours: %w", err)
	}
	if result.DeletedCount == 0 {
		return whErrors.ErrNotFound
	}
	return nil
}
