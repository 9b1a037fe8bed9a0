package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "clinicsched/internal/appointments/errors"
	"clinicsched/internal/migrations/mongo/collections"
	"clinicsched/pkg/config"
	mongotx "clinicsched/pkg/db/mongo"
	"clinicsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows Search and Count. Zero fields are ignored.
type Filter struct {
	TenantID   string
	ProviderID string
	UserID     string
	ResourceID string
	Status     string
	StartTime  *time.Time
	EndTime    *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	CreateMany(ctx context.Context, appts []*model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.Appointment, error)
	CountOverlapping(ctx context.Context, q model.OverlapQuery) (int64, error)
	Search(ctx context.Context, f Filter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Update(ctx context.Context, id string, appt *model.Appointment) error
	UpdateStatus(ctx context.Context, id string, status string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(collections.Appointments),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves a SessionContext untouched; wrapping it would detach
// the operation from its transaction.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) CreateMany(ctx context.Context, appts []*model.Appointment) error {
	if len(appts) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, len(appts))
	for i, a := range appts {
		a.CreatedAt = now
		docs[i] = a
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create appointments: %w", err)
	}
	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(appts) {
			appts[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appt, nil
}

// overlapFilter selects one scope dimension: provider, else resource, else user.
func overlapFilter(q model.OverlapQuery) bson.M {
	filter := bson.M{
		"tenant_id":  q.TenantID,
		"start_time": bson.M{"$lt": q.Window.End},
		"end_time":   bson.M{"$gt": q.Window.Start},
	}
	switch {
	case q.ProviderID != "":
		filter["provider_id"] = q.ProviderID
	case q.ResourceID != "":
		filter["resource_id"] = q.ResourceID
	default:
		filter["user_id"] = q.UserID
	}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	return filter
}

func (r *mongoAppointmentRepository) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, overlapFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) CountOverlapping(ctx context.Context, q model.OverlapQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, overlapFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping appointments: %w", err)
	}
	return n, nil
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
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.EndTime != nil {
		filter["start_time"] = bson.M{"$lt": *f.EndTime}
	}
	if f.StartTime != nil {
		filter["end_time"] = bson.M{"$gt": *f.StartTime}
	}
	return filter
}

func (r *mongoAppointmentRepository) Search(ctx context.Context, f Filter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, searchFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, f Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, searchFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	appt.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"provider_id": appt.ProviderID,
			"resource_id": appt.ResourceID,
			"service_id":  appt.ServiceID,
			"start_time":  appt.StartTime,
			"end_time":    appt.EndTime,
			"notes":       appt.Notes,
			"updated_at":  appt.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appterrors.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return appterrors.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
