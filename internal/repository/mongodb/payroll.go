package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type payrollRecordDocument struct {
	ID          string               `bson:"_id"`
	EmployeeID  string               `bson:"employee_id"`
	BusinessID  string               `bson:"business_id"`
	PeriodMonth int                  `bson:"period_month"`
	PeriodYear  int                  `bson:"period_year"`
	BasicSalary primitive.Decimal128 `bson:"basic_salary"`

	TotalWorkingDays   int                  `bson:"total_working_days"`
	TotalBusinessHours primitive.Decimal128 `bson:"total_business_hours"`
	PresentDays        int                  `bson:"present_days"`
	AbsentDays         int                  `bson:"absent_days"`
	LeaveDays          int                  `bson:"leave_days"`
	HalfDays           int                  `bson:"half_days"`
	TotalWorkHours     primitive.Decimal128 `bson:"total_work_hours"`
	OvertimeHours      primitive.Decimal128 `bson:"overtime_hours"`
	HolidayWorkDays    int                  `bson:"holiday_work_days"`
	HolidayWorkHours   primitive.Decimal128 `bson:"holiday_work_hours"`
	FactsSource        string               `bson:"facts_source,omitempty"`

	GrossSalary     primitive.Decimal128 `bson:"gross_salary"`
	TotalDeductions primitive.Decimal128 `bson:"total_deductions"`
	NetSalary       primitive.Decimal128 `bson:"net_salary"`
	OvertimePay     primitive.Decimal128 `bson:"overtime_pay"`
	Allowances      primitive.Decimal128 `bson:"allowances"`
	Bonus           primitive.Decimal128 `bson:"bonus"`
	Tax             primitive.Decimal128 `bson:"tax"`
	ProvidentFund   primitive.Decimal128 `bson:"provident_fund"`
	ProfessionalTax primitive.Decimal128 `bson:"professional_tax"`
	OtherDeductions primitive.Decimal128 `bson:"other_deductions"`

	PaymentStatus    string     `bson:"payment_status"`
	PaymentDate      *time.Time `bson:"payment_date,omitempty"`
	CalculationBasis *string    `bson:"calculation_basis,omitempty"`
	Notes            *string    `bson:"notes,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

func newPayrollRecordDocument(r payroll.PayrollRecord) payrollRecordDocument {
	var basis *string
	if r.CalculationBasis != nil {
		s := string(*r.CalculationBasis)
		basis = &s
	}
	return payrollRecordDocument{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		BusinessID:  r.BusinessID,
		PeriodMonth: r.PeriodMonth,
		PeriodYear:  r.PeriodYear,
		BasicSalary: toDecimal128(r.BasicSalary),

		TotalWorkingDays:   r.TotalWorkingDays,
		TotalBusinessHours: toDecimal128(r.TotalBusinessHours),
		PresentDays:        r.PresentDays,
		AbsentDays:         r.AbsentDays,
		LeaveDays:          r.LeaveDays,
		HalfDays:           r.HalfDays,
		TotalWorkHours:     toDecimal128(r.TotalWorkHours),
		OvertimeHours:      toDecimal128(r.OvertimeHours),
		HolidayWorkDays:    r.HolidayWorkDays,
		HolidayWorkHours:   toDecimal128(r.HolidayWorkHours),
		FactsSource:        string(r.FactsSource),

		GrossSalary:     toDecimal128(r.GrossSalary),
		TotalDeductions: toDecimal128(r.TotalDeductions),
		NetSalary:       toDecimal128(r.NetSalary),
		OvertimePay:     toDecimal128(r.OvertimePay),
		Allowances:      toDecimal128(r.Allowances),
		Bonus:           toDecimal128(r.Bonus),
		Tax:             toDecimal128(r.Tax),
		ProvidentFund:   toDecimal128(r.ProvidentFund),
		ProfessionalTax: toDecimal128(r.ProfessionalTax),
		OtherDeductions: toDecimal128(r.OtherDeductions),

		PaymentStatus:    string(r.PaymentStatus),
		PaymentDate:      r.PaymentDate,
		CalculationBasis: basis,
		Notes:            r.Notes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (d payrollRecordDocument) toEntity() (payroll.PayrollRecord, error) {
	r := payroll.PayrollRecord{
		ID:          d.ID,
		EmployeeID:  d.EmployeeID,
		BusinessID:  d.BusinessID,
		PeriodMonth: d.PeriodMonth,
		PeriodYear:  d.PeriodYear,
		AttendanceFacts: payroll.AttendanceFacts{
			TotalWorkingDays: d.TotalWorkingDays,
			PresentDays:      d.PresentDays,
			AbsentDays:       d.AbsentDays,
			LeaveDays:        d.LeaveDays,
			HalfDays:         d.HalfDays,
			HolidayWorkDays:  d.HolidayWorkDays,
		},
		FactsSource:   payroll.FactsManual,
		PaymentStatus: payroll.PaymentStatus(d.PaymentStatus),
		PaymentDate:   d.PaymentDate,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if src := payroll.FactsSource(d.FactsSource); src.IsValid() {
		r.FactsSource = src
	}
	if d.CalculationBasis != nil {
		b, err := payroll.ParseCalculationBasis(*d.CalculationBasis)
		if err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("payroll record %s: %w", d.ID, err)
		}
		r.CalculationBasis = &b
	}

	var err error
	assign := func(dst *decimal.Decimal, src primitive.Decimal128) {
		if err == nil {
			*dst, err = fromDecimal128(src)
		}
	}
	assign(&r.BasicSalary, d.BasicSalary)
	assign(&r.TotalBusinessHours, d.TotalBusinessHours)
	assign(&r.TotalWorkHours, d.TotalWorkHours)
	assign(&r.OvertimeHours, d.OvertimeHours)
	assign(&r.HolidayWorkHours, d.HolidayWorkHours)
	assign(&r.GrossSalary, d.GrossSalary)
	assign(&r.TotalDeductions, d.TotalDeductions)
	assign(&r.NetSalary, d.NetSalary)
	assign(&r.OvertimePay, d.OvertimePay)
	assign(&r.Allowances, d.Allowances)
	assign(&r.Bonus, d.Bonus)
	assign(&r.Tax, d.Tax)
	assign(&r.ProvidentFund, d.ProvidentFund)
	assign(&r.ProfessionalTax, d.ProfessionalTax)
	assign(&r.OtherDeductions, d.OtherDeductions)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("payroll record %s: %w", d.ID, err)
	}

	return r, nil
}

type payrollRepository struct {
	records   *mongo.Collection
	employees *mongo.Collection
	now       func() time.Time
}

func NewPayrollRepository(db *database.MongoDB) payroll.PayrollRepository {
	return &payrollRepository{
		records:   db.Database.Collection(payrollRecordsCollection),
		employees: db.Database.Collection(employeesCollection),
		now:       time.Now,
	}
}

// withEmployeeNames fills the joined employee fields the SQL store gets from a join.
func (r *payrollRepository) withEmployeeNames(ctx context.Context, records []payroll.PayrollRecord) error {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.EmployeeID)
	}
	names, err := namesByID(ctx, r.employees, ids)
	if err != nil {
		return err
	}
	for i := range records {
		if emp, ok := names[records[i].EmployeeID]; ok {
			name, code := emp.FullName, emp.EmployeeCode
			records[i].EmployeeName = &name
			records[i].EmployeeCode = &code
		}
	}
	return nil
}

// ========== RECORDS ==========

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	now := r.now().UTC()
	record.CreatedAt, record.UpdatedAt = now, now

	if _, err := r.records.InsertOne(ctx, newPayrollRecordDocument(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

// CreateMany inserts unordered so one existing period does not stop the rest;
// duplicates are rejected by the uk_payroll_employee_period index and skipped.
func (r *payrollRepository) CreateMany(ctx context.Context, records []payroll.PayrollRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := r.now().UTC()
	docs := make([]interface{}, 0, len(records))
	for _, rec := range records {
		rec.CreatedAt, rec.UpdatedAt = now, now
		docs = append(docs, newPayrollRecordDocument(rec))
	}

	_, err := r.records.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		duplicates, ok := isOnlyDuplicateKeyErrors(err)
		if !ok {
			return 0, fmt.Errorf("failed to insert payroll records: %w", err)
		}
		return len(docs) - duplicates, nil
	}

	return len(docs), nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string, businessID string) (payroll.PayrollRecord, error) {
	var doc payrollRecordDocument
	err := r.records.FindOne(ctx, bson.M{"_id": id, "business_id": businessID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	record, err := doc.toEntity()
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	records := []payroll.PayrollRecord{record}
	if err := r.withEmployeeNames(ctx, records); err != nil {
		return payroll.PayrollRecord{}, err
	}
	return records[0], nil
}

func (r *payrollRepository) List(ctx context.Context, businessID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, error) {
	query := bson.M{
		"business_id":  businessID,
		"period_month": filter.Period.Month,
		"period_year":  filter.Period.Year,
	}
	if filter.EmployeeID != nil {
		query["employee_id"] = *filter.EmployeeID
	}
	if filter.Status != nil {
		query["payment_status"] = string(*filter.Status)
	}

	cursor, err := r.records.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}

	var docs []payrollRecordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode payroll records: %w", err)
	}

	records := make([]payroll.PayrollRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := r.withEmployeeNames(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *payrollRepository) Update(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	doc := newPayrollRecordDocument(record)
	doc.UpdatedAt = r.now().UTC()

	set := bson.M{
		"basic_salary":         doc.BasicSalary,
		"total_working_days":   doc.TotalWorkingDays,
		"total_business_hours": doc.TotalBusinessHours,
		"present_days":         doc.PresentDays,
		"absent_days":          doc.AbsentDays,
		"leave_days":           doc.LeaveDays,
		"half_days":            doc.HalfDays,
		"total_work_hours":     doc.TotalWorkHours,
		"overtime_hours":       doc.OvertimeHours,
		"holiday_work_days":    doc.HolidayWorkDays,
		"holiday_work_hours":   doc.HolidayWorkHours,
		"facts_source":         doc.FactsSource,
		"gross_salary":         doc.GrossSalary,
		"total_deductions":     doc.TotalDeductions,
		"net_salary":           doc.NetSalary,
		"overtime_pay":         doc.OvertimePay,
		"allowances":           doc.Allowances,
		"bonus":                doc.Bonus,
		"tax":                  doc.Tax,
		"provident_fund":       doc.ProvidentFund,
		"professional_tax":     doc.ProfessionalTax,
		"other_deductions":     doc.OtherDeductions,
		"payment_status":       doc.PaymentStatus,
		"payment_date":         doc.PaymentDate,
		"calculation_basis":    doc.CalculationBasis,
		"notes":                doc.Notes,
		"updated_at":           doc.UpdatedAt,
	}

	res, err := r.records.UpdateOne(ctx, bson.M{"_id": record.ID, "business_id": record.BusinessID}, bson.M{"$set": set})
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record: %w", err)
	}
	if res.MatchedCount == 0 {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

// MarkPaid only matches pending records, so concurrent finalizations have a single winner.
func (r *payrollRepository) MarkPaid(ctx context.Context, record payroll.PayrollRecord, paidAt time.Time) (payroll.PayrollRecord, error) {
	doc := newPayrollRecordDocument(record)

	filter := bson.M{
		"_id":            record.ID,
		"business_id":    record.BusinessID,
		"payment_status": string(payroll.PaymentStatusPending),
	}
	set := bson.M{
		"total_working_days":   doc.TotalWorkingDays,
		"total_business_hours": doc.TotalBusinessHours,
		"present_days":         doc.PresentDays,
		"absent_days":          doc.AbsentDays,
		"leave_days":           doc.LeaveDays,
		"half_days":            doc.HalfDays,
		"total_work_hours":     doc.TotalWorkHours,
		"overtime_hours":       doc.OvertimeHours,
		"holiday_work_days":    doc.HolidayWorkDays,
		"holiday_work_hours":   doc.HolidayWorkHours,
		"gross_salary":         doc.GrossSalary,
		"total_deductions":     doc.TotalDeductions,
		"net_salary":           doc.NetSalary,
		"overtime_pay":         doc.OvertimePay,
		"calculation_basis":    doc.CalculationBasis,
		"payment_status":       string(payroll.PaymentStatusPaid),
		"payment_date":         paidAt,
		"updated_at":           r.now().UTC(),
	}

	res, err := r.records.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to mark payroll record as paid: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, record.ID, record.BusinessID); err != nil {
			return payroll.PayrollRecord{}, err
		}
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
	}

	return r.GetByID(ctx, record.ID, record.BusinessID)
}

func (r *payrollRepository) Delete(ctx context.Context, id string, businessID string) error {
	res, err := r.records.DeleteOne(ctx, bson.M{"_id": id, "business_id": businessID})
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if res.DeletedCount == 0 {
		return payroll.ErrPayrollRecordNotFound
	}
	return nil
}

// ========== SUMMARY ==========

type summaryDocument struct {
	TotalEmployees     int                  `bson:"total_employees"`
	TotalBasicSalary   primitive.Decimal128 `bson:"total_basic_salary"`
	TotalGrossSalary   primitive.Decimal128 `bson:"total_gross_salary"`
	TotalDeductions    primitive.Decimal128 `bson:"total_deductions"`
	TotalOvertimePay   primitive.Decimal128 `bson:"total_overtime_pay"`
	TotalNetSalary     primitive.Decimal128 `bson:"total_net_salary"`
	PendingCount       int                  `bson:"pending_count"`
	PaidCount          int                  `bson:"paid_count"`
	TotalPaidNetSalary primitive.Decimal128 `bson:"total_paid_net_salary"`
}

func (r *payrollRepository) GetSummary(ctx context.Context, businessID string, period payroll.Period) (payroll.Summary, error) {
	isPaid := bson.M{"$eq": bson.A{"$payment_status", string(payroll.PaymentStatusPaid)}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"business_id":  businessID,
			"period_month": period.Month,
			"period_year":  period.Year,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":                   nil,
			"total_employees":       bson.M{"$sum": 1},
			"total_basic_salary":    bson.M{"$sum": "$basic_salary"},
			"total_gross_salary":    bson.M{"$sum": "$gross_salary"},
			"total_deductions":      bson.M{"$sum": "$total_deductions"},
			"total_overtime_pay":    bson.M{"$sum": "$overtime_pay"},
			"total_net_salary":      bson.M{"$sum": "$net_salary"},
			"pending_count":         bson.M{"$sum": bson.M{"$cond": bson.A{isPaid, 0, 1}}},
			"paid_count":            bson.M{"$sum": bson.M{"$cond": bson.A{isPaid, 1, 0}}},
			"total_paid_net_salary": bson.M{"$sum": bson.M{"$cond": bson.A{isPaid, "$net_salary", primitive.NewDecimal128(0, 0)}}},
		}}},
	}

	cursor, err := r.records.Aggregate(ctx, pipeline)
	if err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	var docs []summaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to decode payroll summary: %w", err)
	}
	if len(docs) == 0 {
		return payroll.Summary{}, nil
	}

	d := docs[0]
	s := payroll.Summary{
		TotalEmployees: d.TotalEmployees,
		PendingCount:   d.PendingCount,
		PaidCount:      d.PaidCount,
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src primitive.Decimal128
	}{
		{&s.TotalBasicSalary, d.TotalBasicSalary},
		{&s.TotalGrossSalary, d.TotalGrossSalary},
		{&s.TotalDeductions, d.TotalDeductions},
		{&s.TotalOvertimePay, d.TotalOvertimePay},
		{&s.TotalNetSalary, d.TotalNetSalary},
		{&s.TotalPaidNetSalary, d.TotalPaidNetSalary},
	} {
		v, err := fromDecimal128(f.src)
		if err != nil {
			return payroll.Summary{}, fmt.Errorf("payroll summary: %w", err)
		}
		*f.dst = v
	}

	return s, nil
}
