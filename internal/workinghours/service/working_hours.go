package service

import (
	"context"
	"errors"

	whErrors "clinicsched/internal/workinghours/errors"
	"clinicsched/internal/workinghours/repository"
	"clinicsched/internal/workinghours/validator"
	apperrors "clinicsched/pkg/errors"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"
	"clinicsched/pkg/sanitizer"
)

type Cache interface {
	Get(ctx context.Context, tenantID, providerID string) (*model.EffectiveHours, bool)
	Set(ctx context.Context, eff *model.EffectiveHours)
	Invalidate(ctx context.Context, tenantID, providerID string)
}

type WorkingHoursService interface {
	// Effective satisfies contracts.WorkingHoursSource.
	Effective(ctx context.Context, tenantID, providerID string) (model.WorkingHours, error)
	Resolve(ctx context.Context, tenantID, providerID string) (*model.EffectiveHours, error)
	Upsert(ctx context.Context, wh *model.WorkingHoursConfig) error
	Delete(ctx context.Context, tenantID, providerID string) error
}

type workingHoursService struct {
	repo        repository.WorkingHoursRepository
	cache       Cache
	validator   *validator.WorkingHoursValidator
	fileDefault model.WorkingHours
	log         *logger.Logger
}

func NewWorkingHoursService(
	repo repository.WorkingHoursRepository,
	cache Cache,
	validator *validator.WorkingHoursValidator,
	fileDefault model.WorkingHours,
	log *logger.Logger,
) WorkingHoursService {
	return &workingHoursService{
		repo:        repo,
		cache:       cache,
		validator:   validator,
		fileDefault: fileDefault,
		log:         log,
	}
}

func (s *workingHoursService) Effective(ctx context.Context, tenantID, providerID string) (model.WorkingHours, error) {
	eff, err := s.Resolve(ctx, tenantID, providerID)
	if err != nil {
		return nil, err
	}
	return eff.Hours, nil
}

// Resolve walks provider, tenant default, file default. With none of them
// configured the result is closed.
func (s *workingHoursService) Resolve(ctx context.Context, tenantID, providerID string) (*model.EffectiveHours, error) {
	if tenantID == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	if eff, ok := s.cache.Get(ctx, tenantID, providerID); ok {
		return eff, nil
	}

	eff := &model.EffectiveHours{TenantID: tenantID, ProviderID: providerID}

	if providerID != "" {
		found, err := s.find(ctx, tenantID, providerID)
		if err != nil {
			return nil, err
		}
		if found != nil {
			eff.Source, eff.Hours = model.HoursSourceProvider, found.Hours
		}
	}
	if eff.Source == "" {
		found, err := s.find(ctx, tenantID, "")
		if err != nil {
			return nil, err
		}
		if found != nil {
			eff.Source, eff.Hours = model.HoursSourceTenant, found.Hours
		}
	}
	if eff.Source == "" {
		if s.fileDefault != nil {
			eff.Source, eff.Hours = model.HoursSourceFile, s.fileDefault
		} else {
			eff.Source, eff.Hours = model.HoursSourceNone, model.WorkingHours{}
		}
	}

	s.cache.Set(ctx, eff)
	return eff, nil
}

func (s *workingHoursService) find(ctx context.Context, tenantID, providerID string) (*model.WorkingHoursConfig, error) {
	found, err := s.repo.Find(ctx, tenantID, providerID)
	if err != nil {
		if errors.Is(err, whErrors.ErrNotFound) {
			return nil, nil
		}
		s.log.Error("Failed to load working hours", "tenant_id", tenantID, "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to load working hours", err)
	}
	return found, nil
}

func (s *workingHoursService) Upsert(ctx context.Context, wh *model.WorkingHoursConfig) error {
	wh.TenantID = sanitizer.SanitizeID(wh.TenantID)
	wh.ProviderID = sanitizer.SanitizeID(wh.ProviderID)
	if err := s.validator.Validate(wh); err != nil {
		s.log.Warn("Working hours validation failed", "tenant_id", wh.TenantID, "error", err)
		return apperrors.Validation("Working hours validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Upsert(ctx, wh); err != nil {
		s.log.Error("Failed to save working hours", "tenant_id", wh.TenantID, "provider_id", wh.ProviderID, "error", err)
		return apperrors.Internal("Failed to save working hours", err)
	}
	s.cache.Invalidate(ctx, wh.TenantID, wh.ProviderID)

	s.log.Info("Working hours saved successfully", "tenant_id", wh.TenantID, "provider_id", wh.ProviderID)
	return nil
}

func (s *workingHoursService) Delete(ctx context.Context, tenantID, providerID string) error {
	if tenantID == "" {
		return apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	if err := s.repo.Delete(ctx, tenantID, providerID); err != nil {
		if errors.Is(err, whErrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Working hours", tenantID+"/"+providerID)
		}
		return apperrors.Internal("Failed to delete working hours", err)
	}
	s.cache.Invalidate(ctx, tenantID, providerID)

	s.log.Info("Working hours deleted successfully", "tenant_id", tenantID, "provider_id", providerID)
	return nil
}
