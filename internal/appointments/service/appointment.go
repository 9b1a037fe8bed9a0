package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	appterrors "clinicsched/internal/appointments/errors"
	"clinicsched/internal/appointments/repository"
	"clinicsched/internal/appointments/validator"
	"clinicsched/internal/events"
	"clinicsched/internal/scheduling/facade"
	"clinicsched/internal/validation"
	apperrors "clinicsched/pkg/errors"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"
	"clinicsched/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reserver is satisfied by *facade.Facade.
type Reserver interface {
	ReserveAndCommit(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string, commit facade.CommitFunc) (*model.ConflictResult, error)
	ReserveSeriesAndCommit(ctx context.Context, base model.Interval, rule model.RecurrenceRule, scope model.Scope, commit facade.SeriesCommitFunc) (*facade.SeriesResult, error)
}

// SeriesOutcome is the result of a recurring reservation.
type SeriesOutcome struct {
	GroupID        string
	Appointments   []*model.Appointment
	Skipped        []facade.SkippedInstance
	CeilingReached bool
}

type AppointmentService interface {
	// Create returns a conflict result with HasConflict set instead of an
	// error when the slot is taken.
	Create(ctx context.Context, appt *model.Appointment) (*model.ConflictResult, error)
	CreateRecurring(ctx context.Context, appt *model.Appointment, rule *model.RecurrenceRule) (*SeriesOutcome, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error)
	Reschedule(ctx context.Context, id string, update *model.AppointmentUpdate) (*model.Appointment, *model.ConflictResult, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	locks     repository.ScopeLockRepository
	reserver  Reserver
	validator *validator.AppointmentValidator
	publisher events.Publisher
	log       *logger.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	locks repository.ScopeLockRepository,
	reserver Reserver,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	log *logger.Logger,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		locks:     locks,
		reserver:  reserver,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

func (s *appointmentService) Create(ctx context.Context, appt *model.Appointment) (*model.ConflictResult, error) {
	appt.Status = model.StatusScheduled
	appt.RecurrenceRule = nil
	appt.RecurrenceGroupID = ""
	s.sanitize(appt)
	if err := s.validate(appt); err != nil {
		return nil, err
	}

	res, err := s.reserver.ReserveAndCommit(ctx, appt.Interval(), appt.Scope(), "", func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.lock(sessCtx, appt); err != nil {
				return err
			}
			if err := s.recheck(sessCtx, appt, ""); err != nil {
				return err
			}
			if err := s.repo.Create(sessCtx, appt); err != nil {
				return apperrors.Internal("Failed to create appointment", err)
			}
			return nil
		})
	})
	if err != nil {
		s.log.Error("Failed to create appointment", "tenant_id", appt.TenantID, "error", err)
		return nil, facade.ToAppError(err)
	}
	if res.HasConflict {
		s.log.Info("Appointment rejected by conflict check",
			"tenant_id", appt.TenantID,
			"provider_id", appt.ProviderID,
			"start_time", appt.StartTime,
			"conflicts", len(res.Conflicts),
		)
		return res, nil
	}

	s.log.Info("Appointment created successfully",
		"id", appt.ID,
		"tenant_id", appt.TenantID,
		"provider_id", appt.ProviderID,
		"start_time", appt.StartTime,
	)
	s.publisher.Publish(ctx, events.New(events.AppointmentReserved, appt.TenantID, appt))
	return res, nil
}

func (s *appointmentService) CreateRecurring(ctx context.Context, appt *model.Appointment, rule *model.RecurrenceRule) (*SeriesOutcome, error) {
	appt.Status = model.StatusScheduled
	s.sanitize(appt)
	if err := s.validate(appt); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRule(rule); err != nil {
		s.log.Warn("Recurrence rule validation failed", "error", err)
		return nil, validationError("Recurrence rule validation failed", err)
	}

	groupID := uuid.New().String()
	var created []*model.Appointment

	result, err := s.reserver.ReserveSeriesAndCommit(ctx, appt.Interval(), *rule, appt.Scope(), func(ctx context.Context, accepted []model.Interval) error {
		created = make([]*model.Appointment, 0, len(accepted))
		for _, iv := range accepted {
			instance := *appt
			instance.ID = ""
			instance.StartTime, instance.EndTime = iv.Start, iv.End
			instance.RecurrenceGroupID = groupID
			instance.RecurrenceRule = rule
			created = append(created, &instance)
		}
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.lock(sessCtx, appt); err != nil {
				return err
			}
			for _, instance := range created {
				if err := s.recheck(sessCtx, instance, ""); err != nil {
					return err
				}
			}
			if err := s.repo.CreateMany(sessCtx, created); err != nil {
				return apperrors.Internal("Failed to create recurring appointments", err)
			}
			return nil
		})
	})
	if err != nil {
		s.log.Error("Failed to create recurring appointments", "tenant_id", appt.TenantID, "error", err)
		return nil, facade.ToAppError(err)
	}

	outcome := &SeriesOutcome{
		Appointments:   created,
		Skipped:        result.Skipped,
		CeilingReached: result.CeilingReached,
	}
	if outcome.Appointments == nil {
		outcome.Appointments = []*model.Appointment{}
	}
	if len(created) > 0 {
		outcome.GroupID = groupID
		s.publisher.Publish(ctx, events.New(events.AppointmentSeriesReserved, appt.TenantID, map[string]any{
			"recurrenceGroupId": groupID,
			"created_count":     len(created),
			"skipped_count":     len(result.Skipped),
			"appointments":      created,
		}))
	}

	s.log.Info("Recurring appointments processed",
		"tenant_id", appt.TenantID,
		"recurrence_group_id", outcome.GroupID,
		"created", len(created),
		"skipped", len(result.Skipped),
	)
	return outcome, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id, "Failed to retrieve appointment")
	}
	return appt, nil
}

func (s *appointmentService) Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	f.TenantID = sanitizer.SanitizeID(f.TenantID)
	if f.TenantID == "" {
		return nil, 0, apperrors.InvalidInput("tenant_id is required")
	}
	if f.StartTime != nil && f.EndTime != nil && !f.EndTime.After(*f.StartTime) {
		return nil, 0, apperrors.InvalidInput("end_time must be after start_time")
	}

	var count int64
	var appts []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, f)
		if errCount != nil {
			s.log.Error("Failed to count appointments", "tenant_id", f.TenantID, "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appts, errFind = s.repo.Search(ctx, f, limit, offset)
		if errFind != nil {
			s.log.Error("Failed to search appointments", "tenant_id", f.TenantID, "error", errFind)
			errFind = apperrors.Internal("Failed to search appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if appts == nil {
		appts = []*model.Appointment{}
	}
	return appts, count, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, id string, update *model.AppointmentUpdate) (*model.Appointment, *model.ConflictResult, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if existing.Status != model.StatusScheduled {
		return nil, nil, apperrors.Conflict(fmt.Sprintf("Cannot modify a %s appointment", existing.Status))
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.log.Warn("Appointment update validation failed", "id", id, "error", err)
		return nil, nil, validationError("Invalid update input", err)
	}

	merged := mergeUpdate(existing, update)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, nil, err
	}

	persist := func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if update.ChangesSchedule() {
				if err := s.lock(sessCtx, merged); err != nil {
					return err
				}
				if err := s.recheck(sessCtx, merged, id); err != nil {
					return err
				}
			}
			if err := s.repo.Update(sessCtx, id, merged); err != nil {
				if errors.Is(err, appterrors.ErrNotFound) {
					return apperrors.NotFoundWithID("Appointment", id)
				}
				return apperrors.Internal("Failed to update appointment", err)
			}
			return nil
		})
	}

	res := &model.ConflictResult{Conflicts: []model.Conflict{}, Suggestions: []model.Slot{}}
	if update.ChangesSchedule() {
		res, err = s.reserver.ReserveAndCommit(ctx, merged.Interval(), merged.Scope(), id, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		s.log.Error("Failed to reschedule appointment", "id", id, "error", err)
		return nil, nil, facade.ToAppError(err)
	}
	if res.HasConflict {
		return nil, res, nil
	}

	s.log.Info("Appointment updated successfully", "id", id, "start_time", merged.StartTime)
	s.publisher.Publish(ctx, events.New(events.AppointmentRescheduled, merged.TenantID, map[string]any{
		"id":            id,
		"previousStart": existing.StartTime,
		"previousEnd":   existing.EndTime,
		"appointment":   merged,
	}))
	return merged, res, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	if err := s.validator.ValidateStatus(&model.StatusUpdate{Status: status}); err != nil {
		return nil, validationError("Invalid status", err)
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == status {
		return existing, nil
	}
	if !model.CanTransition(existing.Status, status) {
		s.log.Warn("Rejected status transition", "id", id, "from", existing.Status, "to", status)
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change status from %s to %s", existing.Status, status)).
			WithDetails(map[string]any{"error": appterrors.ErrInvalidTransition.Error()})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapLookupError(err, id, "Failed to update appointment status")
	}

	from := existing.Status
	existing.Status = status
	s.log.Info("Appointment status changed", "id", id, "from", from, "to", status)
	s.publisher.Publish(ctx, events.New(events.AppointmentStatusChanged, existing.TenantID, map[string]any{
		"id":   id,
		"from": from,
		"to":   status,
	}))
	return existing, nil
}

// lock writes the scope's lock documents ahead of the re-check. Concurrent
// commits for the same scope, from any process, then conflict on that write
// and the loser retries against data that includes the winner.
func (s *appointmentService) lock(ctx context.Context, appt *model.Appointment) error {
	if err := s.locks.Acquire(ctx, facade.Keys(appt.Scope())); err != nil {
		if errors.Is(err, appterrors.ErrScopeLocked) {
			return apperrors.Conflict("Time slot was booked by a concurrent request").
				WithDetails(map[string]any{"error": appterrors.ErrScopeLocked.Error()})
		}
		return apperrors.Internal("Failed to lock scheduling scope", err)
	}
	return nil
}

// recheck repeats the overlap lookup inside the commit transaction, after
// the scope lock is held.
func (s *appointmentService) recheck(ctx context.Context, appt *model.Appointment, excludeID string) error {
	q := model.OverlapQuery{
		TenantID:  appt.TenantID,
		Window:    appt.Interval(),
		Statuses:  model.BlockingStatuses,
		ExcludeID: excludeID,
	}
	if appt.ProviderID != "" {
		q.ProviderID = appt.ProviderID
	} else {
		q.UserID = appt.UserID
	}
	queries := []model.OverlapQuery{q}
	if appt.ResourceID != "" {
		rq := q
		rq.ProviderID, rq.UserID, rq.ResourceID = "", "", appt.ResourceID
		queries = append(queries, rq)
	}

	for _, q := range queries {
		n, err := s.repo.CountOverlapping(ctx, q)
		if err != nil {
			return apperrors.Internal("Failed to verify appointment slot", err)
		}
		if n > 0 {
			return apperrors.Conflict("Time slot was booked by a concurrent request").
				WithDetails(map[string]any{"error": appterrors.ErrTimeConflict.Error()})
		}
	}
	return nil
}

func (s *appointmentService) mapLookupError(err error, id, message string) error {
	switch {
	case errors.Is(err, appterrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, appterrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	default:
		s.log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *appointmentService) validate(appt *model.Appointment) error {
	if err := s.validator.Validate(appt); err != nil {
		s.log.Warn("Appointment validation failed", "tenant_id", appt.TenantID, "error", err)
		return validationError("Appointment validation failed", err)
	}
	return nil
}

func (s *appointmentService) sanitize(appt *model.Appointment) {
	appt.TenantID = sanitizer.SanitizeID(appt.TenantID)
	appt.UserID = sanitizer.SanitizeID(appt.UserID)
	appt.ProviderID = sanitizer.SanitizeID(appt.ProviderID)
	appt.ResourceID = sanitizer.SanitizeID(appt.ResourceID)
	appt.ServiceID = sanitizer.SanitizeID(appt.ServiceID)
	appt.Notes = sanitizer.SanitizeText(appt.Notes)
}

func mergeUpdate(existing *model.Appointment, update *model.AppointmentUpdate) *model.Appointment {
	merged := *existing
	if update.ProviderID != nil {
		merged.ProviderID = *update.ProviderID
	}
	if update.ResourceID != nil {
		merged.ResourceID = *update.ResourceID
	}
	if update.ServiceID != nil {
		merged.ServiceID = *update.ServiceID
	}
	if update.StartTime != nil {
		merged.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		merged.EndTime = *update.EndTime
	}
	if update.Notes != nil {
		merged.Notes = *update.Notes
	}
	return &merged
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
