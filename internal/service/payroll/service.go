package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	businessRepo   business.BusinessRepository
	attendanceRepo attendance.AttendanceRepository
	aggregator     *AttendanceAggregator
	calculator     *SalaryCalculator
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	businessRepo business.BusinessRepository,
	attendanceRepo attendance.AttendanceRepository,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		businessRepo:   businessRepo,
		attendanceRepo: attendanceRepo,
		aggregator:     NewAttendanceAggregator(),
		calculator:     NewSalaryCalculator(),
		logger:         logger,
		now:            time.Now,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== PAYROLL RECORDS ==========

func (s *PayrollServiceImpl) GenerateOrFetch(ctx context.Context, businessID string, req payroll.GenerateOrFetchRequest) ([]payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	basis, _ := payroll.ParseCalculationBasis(req.Basis)
	period := payroll.Period{Month: req.PeriodMonth, Year: req.PeriodYear}

	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}

	filter := payroll.RecordFilter{Period: period, EmployeeID: req.EmployeeID}
	records, err := s.payrollRepo.List(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}

	if len(records) == 0 && req.EmployeeID == nil {
		if _, err := s.EnsureGenerated(ctx, businessID, period); err != nil {
			return nil, err
		}
		records, err = s.payrollRepo.List(ctx, businessID, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list payroll records: %w", err)
		}
	}

	return s.withPreview(ctx, businessID, period, records, basis)
}

func (s *PayrollServiceImpl) EnsureGenerated(ctx context.Context, businessID string, period payroll.Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return 0, err
	}

	// Settings are checked before anything else so a misconfigured business fails as a whole.
	settings, err := s.businessRepo.GetSettings(ctx, businessID)
	if err != nil {
		return 0, err
	}

	staff, err := s.employeeRepo.ListByRole(ctx, businessID, employee.RoleStaff)
	if err != nil {
		return 0, fmt.Errorf("failed to get staff employees: %w", err)
	}
	if len(staff) == 0 {
		return 0, payroll.ErrNoStaffEmployees
	}

	employeeIDs := make([]string, 0, len(staff))
	for _, emp := range staff {
		employeeIDs = append(employeeIDs, emp.ID)
	}

	monthly, err := s.aggregate(ctx, businessID, period, settings, employeeIDs)
	if err != nil {
		return 0, err
	}

	records := make([]payroll.PayrollRecord, 0, len(staff))
	for _, emp := range staff {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate payroll record id: %w", err)
		}
		records = append(records, payroll.PayrollRecord{
			ID:              id.String(),
			EmployeeID:      emp.ID,
			BusinessID:      businessID,
			PeriodMonth:     period.Month,
			PeriodYear:      period.Year,
			BasicSalary:     emp.Salary,
			AttendanceFacts: monthly.FactsFor(emp.ID),
			FactsSource:     payroll.FactsFromAttendance,
			GrossSalary:     emp.Salary,
			TotalDeductions: decimal.Zero,
			NetSalary:       emp.Salary,
			OvertimePay:     decimal.Zero,
			PaymentStatus:   payroll.PaymentStatusPending,
		})
	}

	inserted, err := s.payrollRepo.CreateMany(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to create payroll records: %w", err)
	}

	s.logger.InfoContext(ctx, "payroll generated",
		slog.String("business_id", businessID),
		slog.Int("period_month", period.Month),
		slog.Int("period_year", period.Year),
		slog.Int("staff", len(staff)),
		slog.Int("inserted", inserted),
	)

	return inserted, nil
}

func (s *PayrollServiceImpl) CreatePayroll(ctx context.Context, businessID string, req payroll.CreatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, businessID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	basicSalary := emp.Salary
	if req.BasicSalary != nil {
		basicSalary = *req.BasicSalary
	}
	grossSalary := basicSalary
	if req.GrossSalary != nil {
		grossSalary = *req.GrossSalary
	}
	netSalary := grossSalary.Sub(req.TotalDeductions)
	if req.NetSalary != nil {
		netSalary = *req.NetSalary
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to generate payroll record id: %w", err)
	}

	record := payroll.PayrollRecord{
		ID:          id.String(),
		EmployeeID:  emp.ID,
		BusinessID:  businessID,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		BasicSalary: basicSalary,
		AttendanceFacts: payroll.AttendanceFacts{
			TotalWorkingDays:   req.TotalWorkingDays,
			TotalBusinessHours: req.TotalBusinessHours,
			PresentDays:        req.PresentDays,
			AbsentDays:         req.AbsentDays,
			LeaveDays:          req.LeaveDays,
			HalfDays:           req.HalfDays,
			TotalWorkHours:     req.TotalWorkHours,
			OvertimeHours:      req.OvertimeHours,
			HolidayWorkDays:    req.HolidayWorkDays,
			HolidayWorkHours:   req.HolidayWorkHours,
		},
		FactsSource:     payroll.FactsManual,
		GrossSalary:     grossSalary,
		TotalDeductions: req.TotalDeductions,
		NetSalary:       netSalary,
		OvertimePay:     req.OvertimePay,
		Adjustments: payroll.Adjustments{
			Allowances:      req.Allowances,
			Bonus:           req.Bonus,
			Tax:             req.Tax,
			ProvidentFund:   req.ProvidentFund,
			ProfessionalTax: req.ProfessionalTax,
			OtherDeductions: req.OtherDeductions,
		},
		PaymentStatus: payroll.PaymentStatusPending,
		Notes:         req.Notes,
	}

	created, err := s.payrollRepo.Create(ctx, record)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if created.EmployeeName == nil {
		created.EmployeeName = &emp.FullName
		created.EmployeeCode = &emp.EmployeeCode
	}

	return mapToRecordResponse(created), nil
}

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, businessID string, id string, basis payroll.CalculationBasis) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id, businessID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	responses, err := s.withPreview(ctx, businessID, record.Period(), []payroll.PayrollRecord{record}, basis)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return responses[0], nil
}

func (s *PayrollServiceImpl) UpdatePayroll(ctx context.Context, businessID string, req payroll.UpdatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.payrollRepo.GetByID(ctx, req.ID, businessID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	if req.PaymentStatus != nil && *req.PaymentStatus != record.PaymentStatus {
		if record.PaymentStatus == payroll.PaymentStatusPaid {
			return payroll.PayrollRecordResponse{}, payroll.ErrInvalidStatusTransition
		}
		now := s.now()
		record.PaymentStatus = payroll.PaymentStatusPaid
		record.PaymentDate = &now
	}

	applyUpdate(&record, req)
	if req.ChangesFacts() {
		record.FactsSource = payroll.FactsManual
	}

	updated, err := s.payrollRepo.Update(ctx, record)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return mapToRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, businessID string, req payroll.MarkPaidRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	basis, _ := payroll.ParseCalculationBasis(req.CalculationBasis)

	record, err := s.payrollRepo.GetByID(ctx, req.ID, businessID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if record.PaymentStatus == payroll.PaymentStatusPaid {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordAlreadyPaid
	}

	// Facts that still follow the attendance log are frozen as of now; supplied or
	// corrected facts are paid as stored.
	if record.FactsSource == payroll.FactsFromAttendance {
		monthly, ok, err := s.liveFacts(ctx, businessID, record.Period(), []string{record.EmployeeID})
		if err != nil {
			return payroll.PayrollRecordResponse{}, err
		}
		if ok {
			record.AttendanceFacts = monthly.FactsFor(record.EmployeeID)
		}
	}
	breakdown := s.calculator.Settle(record.Input(), basis)

	now := s.now()
	record.GrossSalary = breakdown.GrossSalary
	record.NetSalary = breakdown.NetSalary
	record.TotalDeductions = breakdown.TotalDeductions
	record.OvertimePay = breakdown.OvertimePay
	record.CalculationBasis = &basis
	record.PaymentStatus = payroll.PaymentStatusPaid
	record.PaymentDate = &now

	paid, err := s.payrollRepo.MarkPaid(ctx, record, now)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll marked as paid",
		slog.String("business_id", businessID),
		slog.String("payroll_id", paid.ID),
		slog.String("employee_id", paid.EmployeeID),
		slog.String("basis", string(basis)),
		slog.String("net_salary", paid.NetSalary.StringFixed(2)),
	)

	return mapToRecordResponse(paid), nil
}

func (s *PayrollServiceImpl) DeletePayroll(ctx context.Context, businessID string, id string) error {
	return s.payrollRepo.Delete(ctx, id, businessID)
}

// ========== SUMMARY & CALCULATOR ==========

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, businessID string, period payroll.Period) (payroll.PayrollSummaryResponse, error) {
	if err := period.Validate(); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	summary, err := s.payrollRepo.GetSummary(ctx, businessID, period)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	return payroll.PayrollSummaryResponse{
		PeriodMonth:        period.Month,
		PeriodYear:         period.Year,
		TotalEmployees:     summary.TotalEmployees,
		TotalBasicSalary:   summary.TotalBasicSalary,
		TotalGrossSalary:   summary.TotalGrossSalary,
		TotalDeductions:    summary.TotalDeductions,
		TotalOvertimePay:   summary.TotalOvertimePay,
		TotalNetSalary:     summary.TotalNetSalary,
		TotalPaidNetSalary: summary.TotalPaidNetSalary,
		PendingCount:       summary.PendingCount,
		PaidCount:          summary.PaidCount,
	}, nil
}

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculateRequest) (payroll.BreakdownResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BreakdownResponse{}, err
	}
	basis, _ := payroll.ParseCalculationBasis(req.CalculationBasis)

	return mapToBreakdownResponse(s.calculator.Settle(req.Input(), basis), basis), nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) aggregate(
	ctx context.Context,
	businessID string,
	period payroll.Period,
	settings business.Settings,
	employeeIDs []string,
) (MonthlyAttendance, error) {
	holidays, err := s.businessRepo.ListHolidaysInMonth(ctx, businessID, period.Year, period.Month)
	if err != nil {
		return MonthlyAttendance{}, fmt.Errorf("failed to get holidays: %w", err)
	}

	records, err := s.attendanceRepo.ListByMonth(ctx, businessID, period.Year, period.Month)
	if err != nil {
		return MonthlyAttendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return s.aggregator.Aggregate(period, settings, holidays, records, employeeIDs)
}

// liveFacts aggregates the current attendance of the period. ok is false when the
// business schedule is missing or invalid; callers then keep the stored facts.
func (s *PayrollServiceImpl) liveFacts(
	ctx context.Context,
	businessID string,
	period payroll.Period,
	employeeIDs []string,
) (MonthlyAttendance, bool, error) {
	settings, err := s.businessRepo.GetSettings(ctx, businessID)
	if err != nil {
		if errors.Is(err, business.ErrBusinessSettingsNotFound) {
			s.logger.WarnContext(ctx, "attendance refresh skipped, business settings missing",
				slog.String("business_id", businessID))
			return MonthlyAttendance{}, false, nil
		}
		return MonthlyAttendance{}, false, err
	}

	monthly, err := s.aggregate(ctx, businessID, period, settings, employeeIDs)
	if err != nil {
		if errors.Is(err, business.ErrInvalidSchedule) {
			s.logger.WarnContext(ctx, "attendance refresh skipped, business schedule invalid",
				slog.String("business_id", businessID), slog.Any("error", err))
			return MonthlyAttendance{}, false, nil
		}
		return MonthlyAttendance{}, false, err
	}
	return monthly, true, nil
}

// withPreview maps records to responses. Pending records carry a derivation from the
// facts MarkPaid would use right now; paid records are returned as stored.
func (s *PayrollServiceImpl) withPreview(
	ctx context.Context,
	businessID string,
	period payroll.Period,
	records []payroll.PayrollRecord,
	basis payroll.CalculationBasis,
) ([]payroll.PayrollRecordResponse, error) {
	responses := mapToRecordResponses(records)

	var syncedIDs []string
	for _, r := range records {
		if r.PaymentStatus == payroll.PaymentStatusPending && r.FactsSource == payroll.FactsFromAttendance {
			syncedIDs = append(syncedIDs, r.EmployeeID)
		}
	}

	var (
		monthly MonthlyAttendance
		live    bool
	)
	if len(syncedIDs) > 0 {
		var err error
		monthly, live, err = s.liveFacts(ctx, businessID, period, syncedIDs)
		if err != nil {
			return nil, err
		}
	}

	for i, r := range records {
		if r.PaymentStatus != payroll.PaymentStatusPending {
			continue
		}
		current := r
		if live && r.FactsSource == payroll.FactsFromAttendance {
			current.AttendanceFacts = monthly.FactsFor(r.EmployeeID)
			setFactsOnResponse(&responses[i], current.AttendanceFacts)
		}
		preview := mapToBreakdownResponse(s.calculator.Settle(current.Input(), basis), basis)
		responses[i].Preview = &preview
	}

	return responses, nil
}

func applyUpdate(r *payroll.PayrollRecord, req payroll.UpdatePayrollRequest) {
	setDecimal := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}

	setDecimal(&r.BasicSalary, req.BasicSalary)
	setInt(&r.TotalWorkingDays, req.TotalWorkingDays)
	setDecimal(&r.TotalBusinessHours, req.TotalBusinessHours)
	setInt(&r.PresentDays, req.PresentDays)
	setInt(&r.AbsentDays, req.AbsentDays)
	setInt(&r.LeaveDays, req.LeaveDays)
	setInt(&r.HalfDays, req.HalfDays)
	setDecimal(&r.TotalWorkHours, req.TotalWorkHours)
	setDecimal(&r.OvertimeHours, req.OvertimeHours)
	setInt(&r.HolidayWorkDays, req.HolidayWorkDays)
	setDecimal(&r.HolidayWorkHours, req.HolidayWorkHours)

	setDecimal(&r.GrossSalary, req.GrossSalary)
	setDecimal(&r.TotalDeductions, req.TotalDeductions)
	setDecimal(&r.NetSalary, req.NetSalary)
	setDecimal(&r.OvertimePay, req.OvertimePay)
	setDecimal(&r.Allowances, req.Allowances)
	setDecimal(&r.Bonus, req.Bonus)
	setDecimal(&r.Tax, req.Tax)
	setDecimal(&r.ProvidentFund, req.ProvidentFund)
	setDecimal(&r.ProfessionalTax, req.ProfessionalTax)
	setDecimal(&r.OtherDeductions, req.OtherDeductions)

	if req.CalculationBasis != nil {
		basis, _ := payroll.ParseCalculationBasis(*req.CalculationBasis)
		r.CalculationBasis = &basis
	}
	if req.Notes != nil {
		r.Notes = req.Notes
	}
}

func setFactsOnResponse(resp *payroll.PayrollRecordResponse, f payroll.AttendanceFacts) {
	resp.TotalWorkingDays = f.TotalWorkingDays
	resp.TotalBusinessHours = f.TotalBusinessHours
	resp.PresentDays = f.PresentDays
	resp.AbsentDays = f.AbsentDays
	resp.LeaveDays = f.LeaveDays
	resp.HalfDays = f.HalfDays
	resp.TotalWorkHours = f.TotalWorkHours
	resp.OvertimeHours = f.OvertimeHours
	resp.HolidayWorkDays = f.HolidayWorkDays
	resp.HolidayWorkHours = f.HolidayWorkHours
}

func mapToBreakdownResponse(b payroll.Breakdown, basis payroll.CalculationBasis) payroll.BreakdownResponse {
	return payroll.BreakdownResponse{
		CalculationBasis: string(basis),
		PerDayRate:       b.PerDayRate,
		PerHourRate:      b.PerHourRate,
		EarnedSalary:     b.EarnedSalary,
		OvertimePay:      b.OvertimePay,
		GrossSalary:      b.GrossSalary,
		AbsenceDeduction: b.AbsenceDeduction,
		TotalDeductions:  b.TotalDeductions,
		NetSalary:        b.NetSalary,
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	var paymentDate *string
	if r.PaymentDate != nil {
		str := r.PaymentDate.Format(time.RFC3339)
		paymentDate = &str
	}

	var basis *string
	if r.CalculationBasis != nil {
		str := string(*r.CalculationBasis)
		basis = &str
	}

	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	resp := payroll.PayrollRecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: employeeName,
		EmployeeCode: employeeCode,
		BusinessID:   r.BusinessID,
		PeriodMonth:  r.PeriodMonth,
		PeriodYear:   r.PeriodYear,
		BasicSalary:  r.BasicSalary,

		GrossSalary:     r.GrossSalary,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		OvertimePay:     r.OvertimePay,
		Allowances:      r.Allowances,
		Bonus:           r.Bonus,
		Tax:             r.Tax,
		ProvidentFund:   r.ProvidentFund,
		ProfessionalTax: r.ProfessionalTax,
		OtherDeductions: r.OtherDeductions,

		PaymentStatus:    string(r.PaymentStatus),
		PaymentDate:      paymentDate,
		CalculationBasis: basis,
		Notes:            r.Notes,
	}
	setFactsOnResponse(&resp, r.AttendanceFacts)

	return resp
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
