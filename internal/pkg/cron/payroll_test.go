package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBusinessRepo struct {
	business.BusinessRepository
	ids      []string
	settings map[string]business.Settings
	listErr  error
}

func (s *stubBusinessRepo) ListIDs(ctx context.Context) ([]string, error) {
	return s.ids, s.listErr
}

func (s *stubBusinessRepo) GetSettings(ctx context.Context, businessID string) (business.Settings, error) {
	settings, ok := s.settings[businessID]
	if !ok {
		return business.Settings{}, business.ErrBusinessSettingsNotFound
	}
	return settings, nil
}

type ensureCall struct {
	businessID string
	period     payroll.Period
}

type stubPayrollService struct {
	payroll.PayrollService
	mu     sync.Mutex
	calls  []ensureCall
	errFor map[string]error
}

func (s *stubPayrollService) EnsureGenerated(ctx context.Context, businessID string, period payroll.Period) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ensureCall{businessID: businessID, period: period})
	if err := s.errFor[businessID]; err != nil {
		return 0, err
	}
	return 2, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureMonthlyPayroll_PeriodFollowsSchedulerClock(t *testing.T) {
	repo := &stubBusinessRepo{
		ids: []string{"biz-jakarta", "biz-new-york", "biz-utc"},
		settings: map[string]business.Settings{
			"biz-utc":      {BusinessID: "biz-utc"},
			"biz-jakarta":  {BusinessID: "biz-jakarta", Timezone: "Asia/Jakarta"},
			"biz-new-york": {BusinessID: "biz-new-york", Timezone: "America/New_York"},
		},
	}
	svc := &stubPayrollService{}
	jobs := NewPayrollJobs(repo, svc, discardLogger())
	// Default fire time. New York is still on February 29th.
	jobs.now = func() time.Time { return time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC) }

	require.NoError(t, jobs.EnsureMonthlyPayroll(context.Background()))

	require.Len(t, svc.calls, 3)
	sort.Slice(svc.calls, func(i, k int) bool { return svc.calls[i].businessID < svc.calls[k].businessID })
	march := payroll.Period{Month: 3, Year: 2024}
	assert.Equal(t, ensureCall{"biz-jakarta", march}, svc.calls[0])
	assert.Equal(t, ensureCall{"biz-new-york", march}, svc.calls[1])
	assert.Equal(t, ensureCall{"biz-utc", march}, svc.calls[2])
}

func TestEnsureMonthlyPayroll_ContinuesPastFailures(t *testing.T) {
	repo := &stubBusinessRepo{
		ids: []string{"biz-unconfigured", "biz-empty", "biz-broken", "biz-ok"},
		settings: map[string]business.Settings{
			"biz-empty":  {BusinessID: "biz-empty"},
			"biz-broken": {BusinessID: "biz-broken"},
			"biz-ok":     {BusinessID: "biz-ok"},
		},
	}
	svc := &stubPayrollService{errFor: map[string]error{
		"biz-empty":  payroll.ErrNoStaffEmployees,
		"biz-broken": errors.New("connection reset"),
	}}
	jobs := NewPayrollJobs(repo, svc, discardLogger())

	require.NoError(t, jobs.EnsureMonthlyPayroll(context.Background()))

	var called []string
	for _, c := range svc.calls {
		called = append(called, c.businessID)
	}
	assert.Equal(t, []string{"biz-empty", "biz-broken", "biz-ok"}, called)
}

func TestEnsureMonthlyPayroll_ListError(t *testing.T) {
	repo := &stubBusinessRepo{listErr: errors.New("db down")}
	jobs := NewPayrollJobs(repo, &stubPayrollService{}, discardLogger())

	err := jobs.EnsureMonthlyPayroll(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestScheduler_RegisterAndRunOnce(t *testing.T) {
	repo := &stubBusinessRepo{
		ids:      []string{"biz-ok"},
		settings: map[string]business.Settings{"biz-ok": {BusinessID: "biz-ok"}},
	}
	svc := &stubPayrollService{}
	jobs := NewPayrollJobs(repo, svc, discardLogger())
	scheduler := NewScheduler(discardLogger(), time.UTC)

	require.NoError(t, jobs.RegisterJobs(scheduler, ""))
	require.Len(t, scheduler.jobs, 1)
	assert.Equal(t, DefaultPayrollSpec, scheduler.jobs[0].Spec)

	scheduler.RunOnce(context.Background())
	assert.Len(t, svc.calls, 1)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	scheduler := NewScheduler(discardLogger(), nil)
	err := scheduler.AddJob("broken", "not a cron spec", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, scheduler.jobs)
}
