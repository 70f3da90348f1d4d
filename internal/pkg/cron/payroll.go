package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// DefaultPayrollSpec fires at 00:05 on the first day of every month.
const DefaultPayrollSpec = "5 0 1 * *"

type PayrollJobs struct {
	businessRepo business.BusinessRepository
	payrollSvc   payroll.PayrollService
	logger       *slog.Logger
	now          func() time.Time
}

func NewPayrollJobs(businessRepo business.BusinessRepository, payrollSvc payroll.PayrollService, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		businessRepo: businessRepo,
		payrollSvc:   payrollSvc,
		logger:       logger,
		now:          time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	if spec == "" {
		spec = DefaultPayrollSpec
	}
	return scheduler.AddJob("ensure_monthly_payroll", spec, j.EnsureMonthlyPayroll)
}

// EnsureMonthlyPayroll generates pending records for the current month of every business.
// The month is taken in UTC, the clock the schedule fires on. A failing business is logged and skipped.
func (j *PayrollJobs) EnsureMonthlyPayroll(ctx context.Context) error {
	ids, err := j.businessRepo.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list businesses: %w", err)
	}

	j.logger.Info("Cron: Starting monthly payroll generation", "business_count", len(ids))

	period := payroll.PeriodOf(j.now().UTC())

	var generated, skipped, failed int
	for _, businessID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := j.businessRepo.GetSettings(ctx, businessID); err != nil {
			if errors.Is(err, business.ErrBusinessSettingsNotFound) {
				skipped++
				j.logger.Warn("Cron: Business has no schedule configured, skipping payroll", "business_id", businessID)
				continue
			}
			failed++
			j.logger.Error("Cron: Failed to load business settings", "business_id", businessID, "error", err)
			continue
		}

		inserted, err := j.payrollSvc.EnsureGenerated(ctx, businessID, period)
		switch {
		case errors.Is(err, payroll.ErrNoStaffEmployees):
			skipped++
			j.logger.Info("Cron: Business has no staff employees", "business_id", businessID)
		case err != nil:
			failed++
			j.logger.Error("Cron: Failed to generate payroll",
				"business_id", businessID,
				"period_month", period.Month,
				"period_year", period.Year,
				"error", err,
			)
		default:
			generated += inserted
		}
	}

	j.logger.Info("Cron: Monthly payroll generation finished",
		"records_created", generated,
		"skipped", skipped,
		"failed", failed,
	)
	return nil
}
