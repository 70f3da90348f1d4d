package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Payroll Records
	ListPayroll(w http.ResponseWriter, r *http.Request)
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	CreatePayroll(w http.ResponseWriter, r *http.Request)
	GetPayroll(w http.ResponseWriter, r *http.Request)
	UpdatePayroll(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	DeletePayroll(w http.ResponseWriter, r *http.Request)

	// Summary & Calculator
	GetSummary(w http.ResponseWriter, r *http.Request)
	Calculate(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService, now: time.Now}
}

// periodFromQuery reads month and year, defaulting to the current UTC month.
func (h *payrollHandlerImpl) periodFromQuery(r *http.Request) (int, int, error) {
	now := h.now().UTC()
	q := r.URL.Query()

	var errs validator.ValidationErrors
	month, verr := validator.ParseIntParam("month", q.Get("month"), int(now.Month()))
	if verr != nil {
		errs = append(errs, *verr)
	}
	year, verr := validator.ParseIntParam("year", q.Get("year"), now.Year())
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return month, year, nil
}

// pathID returns the {id} URL parameter; ids are UUIDv7 so anything else cannot exist.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		return "", payroll.ErrPayrollRecordNotFound
	}
	return id, nil
}

// ========== PAYROLL RECORDS ==========

func (h *payrollHandlerImpl) ListPayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, err := h.periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := payroll.GenerateOrFetchRequest{
		PeriodMonth: month,
		PeriodYear:  year,
		Basis:       r.URL.Query().Get("basis"),
	}
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		if !validator.IsValidUUID(employeeID) {
			response.HandleError(w, employee.ErrEmployeeNotFound)
			return
		}
		req.EmployeeID = &employeeID
	}

	result, err := h.payrollService.GenerateOrFetch(r.Context(), businessID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		TotalItems:  len(result),
		PeriodMonth: month,
		PeriodYear:  year,
	})
}

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	inserted, err := h.payrollService.EnsureGenerated(r.Context(), businessID, payroll.Period{Month: req.PeriodMonth, Year: req.PeriodYear})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated successfully", map[string]int{
		"period_month": req.PeriodMonth,
		"period_year":  req.PeriodYear,
		"generated":    inserted,
	})
}

func (h *payrollHandlerImpl) CreatePayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.CreatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	// Employee ids are UUIDs; anything else cannot name an employee.
	if req.EmployeeID != "" && !validator.IsValidUUID(req.EmployeeID) {
		response.HandleError(w, employee.ErrEmployeeNotFound)
		return
	}

	result, err := h.payrollService.CreatePayroll(r.Context(), businessID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll record created successfully", result)
}

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	basis, err := payroll.ParseCalculationBasis(r.URL.Query().Get("basis"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayroll(r.Context(), businessID, id, basis)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdatePayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.UpdatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.UpdatePayroll(r.Context(), businessID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll record updated successfully", result)
}

func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// The body is optional; an empty body pays on the default basis.
	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.MarkPaid(r.Context(), businessID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

func (h *payrollHandlerImpl) DeletePayroll(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.payrollService.DeletePayroll(r.Context(), businessID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll record deleted successfully", nil)
}

// ========== SUMMARY & CALCULATOR ==========

func (h *payrollHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	businessID, err := middleware.BusinessID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, err := h.periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetSummary(r.Context(), businessID, payroll.Period{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
