// Package facade orchestrates conflict detection and recurrence expansion for
// single and recurring reservations.
package facade

import (
	"context"
	"time"

	"clinicsched/internal/scheduling/recurrence"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/metrics"
	"clinicsched/pkg/model"
)

// Checker is satisfied by conflict.Detector. Detect skips suggestions.
type Checker interface {
	Check(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error)
	Detect(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error)
}

// CommitFunc persists an accepted reservation while the scope guard is held.
type CommitFunc func(ctx context.Context) error

// SeriesCommitFunc persists the accepted instances of a series while the scope guard is held.
type SeriesCommitFunc func(ctx context.Context, created []model.Interval) error

type SkippedInstance struct {
	Interval  model.Interval   `json:"interval"`
	Conflicts []model.Conflict `json:"conflicts"`
}

type SeriesResult struct {
	Created        []model.Interval  `json:"created"`
	Skipped        []SkippedInstance `json:"skipped"`
	CeilingReached bool              `json:"ceilingReached"`
}

type Facade struct {
	checker Checker
	guard   *ScopeGuard
	loc     *time.Location
	ceiling int
	log     *logger.Logger
}

func New(checker Checker, loc *time.Location, ceiling int, log *logger.Logger) *Facade {
	if loc == nil {
		loc = time.UTC
	}
	if ceiling <= 0 {
		ceiling = recurrence.DefaultCeiling
	}
	return &Facade{
		checker: checker,
		guard:   NewScopeGuard(),
		loc:     loc,
		ceiling: ceiling,
		log:     log,
	}
}

// Reserve checks a single candidate. It keeps no state between calls.
func (f *Facade) Reserve(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error) {
	res, err := f.checker.Check(ctx, candidate, scope, excludeID)
	if err != nil {
		return nil, err
	}
	record(res)
	return res, nil
}

// ReserveSeries checks the base as instance zero and every expanded instance
// independently. Conflicting instances are skipped and recorded without
// suggestions.
func (f *Facade) ReserveSeries(ctx context.Context, base model.Interval, rule model.RecurrenceRule, scope model.Scope) (*SeriesResult, error) {
	exp := recurrence.ExpandWithCeiling(base, rule, f.loc, f.ceiling)
	if exp.CeilingReached {
		metrics.IncRecurrenceCeiling()
		f.log.Warn("recurrence bounds exceeded",
			"tenant_id", scope.TenantID,
			"frequency", rule.Frequency,
			"ceiling", f.ceiling,
		)
	}

	candidates := append([]model.Interval{base}, exp.Instances...)
	result := &SeriesResult{
		Created:        make([]model.Interval, 0, len(candidates)),
		Skipped:        []SkippedInstance{},
		CeilingReached: exp.CeilingReached,
	}

	for _, candidate := range candidates {
		res, err := f.checker.Detect(ctx, candidate, scope, "")
		if err != nil {
			return nil, err
		}
		if prev, ok := overlapsAny(candidate, result.Created); ok {
			start, end := prev.Start, prev.End
			res.Add(model.Conflict{
				Type:    model.ConflictProviderAppointment,
				Message: "Overlaps an earlier instance of the same series",
				Start:   &start,
				End:     &end,
			})
		}
		if res.HasConflict {
			for _, c := range res.Conflicts {
				metrics.IncConflict(string(c.Type))
			}
			result.Skipped = append(result.Skipped, SkippedInstance{Interval: candidate, Conflicts: res.Conflicts})
			continue
		}
		result.Created = append(result.Created, candidate)
	}

	metrics.AddSeriesInstances(metrics.OutcomeCreated, len(result.Created))
	metrics.AddSeriesInstances(metrics.OutcomeSkipped, len(result.Skipped))
	f.log.Debug("Series reservation evaluated",
		"tenant_id", scope.TenantID,
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// ReserveAndCommit runs Reserve and, when there is no conflict, commit, both
// under the scope guard.
func (f *Facade) ReserveAndCommit(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string, commit CommitFunc) (*model.ConflictResult, error) {
	unlock := f.guard.Lock(scope)
	defer unlock()

	res, err := f.Reserve(ctx, candidate, scope, excludeID)
	if err != nil {
		return nil, err
	}
	if res.HasConflict {
		return res, nil
	}
	if err := commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// ReserveSeriesAndCommit runs ReserveSeries and commits the accepted
// instances under the scope guard. Nothing is committed when every instance
// conflicts.
func (f *Facade) ReserveSeriesAndCommit(ctx context.Context, base model.Interval, rule model.RecurrenceRule, scope model.Scope, commit SeriesCommitFunc) (*SeriesResult, error) {
	unlock := f.guard.Lock(scope)
	defer unlock()

	result, err := f.ReserveSeries(ctx, base, rule, scope)
	if err != nil {
		return nil, err
	}
	if len(result.Created) == 0 {
		return result, nil
	}
	if err := commit(ctx, result.Created); err != nil {
		return nil, err
	}
	return result, nil
}

func overlapsAny(candidate model.Interval, accepted []model.Interval) (model.Interval, bool) {
	for _, iv := range accepted {
		if iv.Overlaps(candidate) {
			return iv, true
		}
	}
	return model.Interval{}, false
}

func record(res *model.ConflictResult) {
	if !res.HasConflict {
		metrics.IncReservation(metrics.OutcomeReserved)
		return
	}
	metrics.IncReservation(metrics.OutcomeConflict)
	for _, c := range res.Conflicts {
		metrics.IncConflict(string(c.Type))
	}
}
