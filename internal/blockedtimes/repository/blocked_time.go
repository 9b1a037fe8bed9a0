package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bterrors "clinicsched/internal/blockedtimes/errors"
	"clinicsched/internal/migrations/mongo/collections"
	"clinicsched/pkg/config"
	"clinicsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Filter struct {
	TenantID   string
	ProviderID string
	UserID     string
	ResourceID string
	GroupID    string
	StartTime  *time.Time
	EndTime    *time.Time
}

type BlockedTimeRepository interface {
	Create(ctx context.Context, bt *model.BlockedTime) error
	CreateMany(ctx context.Context, bts []*model.BlockedTime) error
	FindByID(ctx context.Context, id string) (*model.BlockedTime, error)
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.BlockedTime, error)
	Search(ctx context.Context, f Filter, limit int, offset int64) ([]*model.BlockedTime, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByGroup(ctx context.Context, tenantID, groupID string) (int64, error)
}

type mongoBlockedTimeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockedTimeRepository(cfg *config.Config) BlockedTimeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockedTimeRepository{
		cfg:        cfg,
		collection: db.Collection(collections.BlockedTimes),
	}
}

func (r *mongoBlockedTimeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBlockedTimeRepository) Create(ctx context.Context, bt *model.BlockedTime) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	bt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, bt)
	if err != nil {
		return fmt.Errorf("failed to create blocked time: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		bt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlockedTimeRepository) CreateMany(ctx context.Context, bts []*model.BlockedTime) error {
	if len(bts) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, len(bts))
	for i, bt := range bts {
		bt.CreatedAt = now
		docs[i] = bt
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create blocked times: %w", err)
	}
	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(bts) {
			bts[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoBlockedTimeRepository) FindByID(ctx context.Context, id string) (*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bterrors.ErrInvalidID, id)
	}

	var bt model.BlockedTime
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&bt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find blocked time: %w", err)
	}
	return &bt, nil
}

// FindOverlapping returns every block in the window touching any of the query's
// provider, resource or user. Callers narrow the result with BlockedTime.AppliesTo.
func (r *mongoBlockedTimeRepository) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":  q.TenantID,
		"start_time": bson.M{"$lt": q.Window.End},
		"end_time":   bson.M{"$gt": q.Window.Start},
	}
	var or bson.A
	if q.ProviderID != "" {
		or = append(or, bson.M{"provider_id": q.ProviderID})
	}
	if q.ResourceID != "" {
		or = append(or, bson.M{"resource_id": q.ResourceID})
	}
	if q.UserID != "" {
		or = append(or, bson.M{"user_id": q.UserID})
	}
	if len(or) > 0 {
		filter["$or"] = or
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping blocked times: %w", err)
	}
	defer cursor.Close(ctx)

	var bts []*model.BlockedTime
	if err := cursor.All(ctx, &bts); err != nil {
		return nil, fmt.Errorf("failed to decode blocked times: %w", err)
	}
	return bts, nil
}

func searchFilter(f Filter) bson.M {
	filter := bson.M{"tenant_id": f.TenantID}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.ResourceID != "" {
		filter["resource_id"] = f.ResourceID
	}
	if f.GroupID != "" {
		filter["recurrence_group_id"] = f.GroupID
	}
	if f.EndTime != nil {
		filter["start_time"] = bson.M{"$lt": *f.EndTime}
	}
	if f.StartTime != nil {
		filter["end_time"] = bson.M{"$gt": *f.StartTime}
	}
	return filter
}

func (r *mongoBlockedTimeRepository) Search(ctx context.Context, f Filter, limit int, offset int64) ([]*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, searchFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search blocked times: %w", err)
	}
	defer cursor.Close(ctx)

	var bts []*model.BlockedTime
	if err := cursor.All(ctx, &bts); err != nil {
		return nil, fmt.Errorf("failed to decode blocked times: %w", err)
	}
	return bts, nil
}

func (r *mongoBlockedTimeRepository) Count(ctx context.Context, f Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, searchFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count blocked times: %w", err)
	}
	return n, nil
}

func (r *mongoBlockedTimeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete blocked time: %w", err)
	}
	if result.DeletedCount == 0 {
		return bterrors.ErrNotFound
	}
	return nil
}

func (r *mongoBlockedTimeRepository) DeleteByGroup(ctx context.Context, tenantID, groupID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"tenant_id":           tenantID,
		"recurrence_group_id": groupID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocked time group: %w", err)
	}
	return result.DeletedCount, nil
}
