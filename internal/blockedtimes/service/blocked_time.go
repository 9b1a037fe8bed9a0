package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bterrors "clinicsched/internal/blockedtimes/errors"
	"clinicsched/internal/blockedtimes/repository"
	"clinicsched/internal/blockedtimes/validator"
	"clinicsched/internal/events"
	"clinicsched/internal/scheduling/recurrence"
	"clinicsched/internal/validation"
	apperrors "clinicsched/pkg/errors"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/metrics"
	"clinicsched/pkg/model"
	"clinicsched/pkg/sanitizer"

	"github.com/google/uuid"
)

type BlockedTimeService interface {
	// Create stores a single block, or the whole series when the block
	// carries a recurrence rule.
	Create(ctx context.Context, bt *model.BlockedTime) ([]*model.BlockedTime, error)
	Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.BlockedTime, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteGroup(ctx context.Context, tenantID, groupID string) (int64, error)
}

type blockedTimeService struct {
	repo      repository.BlockedTimeRepository
	validator *validator.BlockedTimeValidator
	publisher events.Publisher
	loc       *time.Location
	ceiling   int
	log       *logger.Logger
}

func NewBlockedTimeService(
	repo repository.BlockedTimeRepository,
	validator *validator.BlockedTimeValidator,
	publisher events.Publisher,
	loc *time.Location,
	ceiling int,
	log *logger.Logger,
) BlockedTimeService {
	if loc == nil {
		loc = time.UTC
	}
	return &blockedTimeService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		loc:       loc,
		ceiling:   ceiling,
		log:       log,
	}
}

func (s *blockedTimeService) Create(ctx context.Context, bt *model.BlockedTime) ([]*model.BlockedTime, error) {
	s.sanitize(bt)
	bt.RecurrenceGroupID = ""
	if err := s.validator.Validate(bt); err != nil {
		s.log.Warn("Blocked time validation failed", "tenant_id", bt.TenantID, "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Blocked time validation failed", verrs.Fields())
		}
		return nil, apperrors.Validation("Blocked time validation failed", map[string]any{"error": err.Error()})
	}

	if bt.RecurrenceRule == nil {
		if err := s.repo.Create(ctx, bt); err != nil {
			s.log.Error("Failed to create blocked time", "tenant_id", bt.TenantID, "error", err)
			return nil, apperrors.Internal("Failed to create blocked time", err)
		}
		s.log.Info("Blocked time created successfully", "id", bt.ID, "tenant_id", bt.TenantID)
		s.publisher.Publish(ctx, events.New(events.BlockedTimeCreated, bt.TenantID, bt))
		return []*model.BlockedTime{bt}, nil
	}

	exp := recurrence.ExpandWithCeiling(bt.Interval(), *bt.RecurrenceRule, s.loc, s.ceiling)
	if exp.CeilingReached {
		metrics.IncRecurrenceCeiling()
		s.log.Warn("recurrence bounds exceeded",
			"tenant_id", bt.TenantID,
			"ceiling", s.ceiling,
		)
	}

	groupID := uuid.New().String()
	series := make([]*model.BlockedTime, 0, len(exp.Instances)+1)
	bt.RecurrenceGroupID = groupID
	series = append(series, bt)
	for _, iv := range exp.Instances {
		instance := *bt
		instance.StartTime, instance.EndTime = iv.Start, iv.End
		series = append(series, &instance)
	}

	if err := s.repo.CreateMany(ctx, series); err != nil {
		s.log.Error("Failed to create blocked time series", "tenant_id", bt.TenantID, "error", err)
		return nil, apperrors.Internal("Failed to create blocked time series", err)
	}

	s.log.Info("Blocked time series created successfully",
		"tenant_id", bt.TenantID,
		"recurrence_group_id", groupID,
		"count", len(series),
	)
	s.publisher.Publish(ctx, events.New(events.BlockedTimeCreated, bt.TenantID, map[string]any{
		"recurrenceGroupId": groupID,
		"created_count":     len(series),
		"blocked_times":     series,
	}))
	return series, nil
}

func (s *blockedTimeService) Search(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.BlockedTime, int64, error) {
	f.TenantID = sanitizer.SanitizeID(f.TenantID)
	if f.TenantID == "" {
		return nil, 0, apperrors.InvalidInput("tenant_id is required")
	}
	if f.StartTime != nil && f.EndTime != nil && !f.EndTime.After(*f.StartTime) {
		return nil, 0, apperrors.InvalidInput("end_time must be after start_time")
	}

	var count int64
	var bts []*model.BlockedTime
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, f)
	}()

	go func() {
		defer wg.Done()
		bts, errFind = s.repo.Search(ctx, f, limit, offset)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.log.Error("Failed to search blocked times", "tenant_id", f.TenantID, "error", err)
		return nil, 0, apperrors.Internal("Failed to search blocked times", err)
	}
	if bts == nil {
		bts = []*model.BlockedTime{}
	}
	return bts, count, nil
}

func (s *blockedTimeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Blocked time ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, bterrors.ErrNotFound):
			return apperrors.NotFoundWithID("Blocked time", id)
		case errors.Is(err, bterrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid blocked time ID format")
		default:
			s.log.Error("Failed to delete blocked time", "id", id, "error", err)
			return apperrors.Internal("Failed to delete blocked time", err)
		}
	}

	s.log.Info("Blocked time deleted successfully", "id", id)
	return nil
}

func (s *blockedTimeService) DeleteGroup(ctx context.Context, tenantID, groupID string) (int64, error) {
	tenantID = sanitizer.SanitizeID(tenantID)
	if tenantID == "" {
		return 0, apperrors.InvalidInput("tenant_id is required")
	}
	if _, err := uuid.Parse(groupID); err != nil {
		return 0, apperrors.InvalidInput("Invalid recurrence group ID format")
	}

	n, err := s.repo.DeleteByGroup(ctx, tenantID, groupID)
	if err != nil {
		s.log.Error("Failed to delete blocked time group", "tenant_id", tenantID, "recurrence_group_id", groupID, "error", err)
		return 0, apperrors.Internal("Failed to delete blocked time group", err)
	}
	if n == 0 {
		return 0, apperrors.NotFoundWithID("Blocked time group", groupID)
	}

	s.log.Info("Blocked time group deleted successfully",
		"tenant_id", tenantID,
		"recurrence_group_id", groupID,
		"deleted", n,
	)
	return n, nil
}

func (s *blockedTimeService) sanitize(bt *model.BlockedTime) {
	bt.TenantID = sanitizer.SanitizeID(bt.TenantID)
	bt.UserID = sanitizer.SanitizeID(bt.UserID)
	bt.ProviderID = sanitizer.SanitizeID(bt.ProviderID)
	bt.ResourceID = sanitizer.SanitizeID(bt.ResourceID)
	bt.Reason = sanitizer.SanitizeText(bt.Reason)
}
