package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recordID   = "01908f6e-8c3a-7b2e-9c4d-1a2b3c4d5e6f"
	employeeID = "01908f6e-0000-7b2e-9c4d-1a2b3c4d5e70"
)

// stubPayrollService records the arguments of the calls under test.
type stubPayrollService struct {
	payroll.PayrollService

	businessID string
	fetchReq   payroll.GenerateOrFetchRequest
	markReq    payroll.MarkPaidRequest
	period     payroll.Period
	err        error
}

func (s *stubPayrollService) GenerateOrFetch(ctx context.Context, businessID string, req payroll.GenerateOrFetchRequest) ([]payroll.PayrollRecordResponse, error) {
	s.businessID, s.fetchReq = businessID, req
	if s.err != nil {
		return nil, s.err
	}
	return []payroll.PayrollRecordResponse{{ID: recordID, PaymentStatus: "pending"}}, nil
}

func (s *stubPayrollService) EnsureGenerated(ctx context.Context, businessID string, period payroll.Period) (int, error) {
	s.businessID, s.period = businessID, period
	return 3, s.err
}

func (s *stubPayrollService) MarkPaid(ctx context.Context, businessID string, req payroll.MarkPaidRequest) (payroll.PayrollRecordResponse, error) {
	s.businessID, s.markReq = businessID, req
	if s.err != nil {
		return payroll.PayrollRecordResponse{}, s.err
	}
	return payroll.PayrollRecordResponse{ID: req.ID, PaymentStatus: "paid"}, nil
}

func (s *stubPayrollService) GetSummary(ctx context.Context, businessID string, period payroll.Period) (payroll.PayrollSummaryResponse, error) {
	s.businessID, s.period = businessID, period
	return payroll.PayrollSummaryResponse{}, s.err
}

func (s *stubPayrollService) DeletePayroll(ctx context.Context, businessID string, id string) error {
	s.businessID = businessID
	return s.err
}

type routerFixture struct {
	svc    *stubPayrollService
	router http.Handler
	tokens map[employee.Role]string
}

func newRouterFixture(t *testing.T, svcErr error) routerFixture {
	t.Helper()
	jwtService := jwt.NewJWTService("handler-test-secret", "10m")
	svc := &stubPayrollService{err: svcErr}

	tokens := make(map[employee.Role]string)
	for _, role := range []employee.Role{employee.RoleOwner, employee.RoleManager, employee.RoleStaff} {
		token, _, err := jwtService.GenerateAccessToken("user-"+string(role), "biz-1", role)
		require.NoError(t, err)
		tokens[role] = token
	}

	return routerFixture{
		svc:    svc,
		router: NewRouter(RouterOptions{}, jwtService, NewPayrollHandler(svc)),
		tokens: tokens,
	}
}

func (f routerFixture) do(t *testing.T, role employee.Role, method, target, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+f.tokens[role])

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestListPayroll(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, resp := f.do(t, employee.RoleManager, http.MethodGet, "/api/v1/payroll?month=6&year=2024&employee_id="+employeeID+"&basis=perHour", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.TotalItems)
	assert.Equal(t, 6, resp.Meta.PeriodMonth)
	assert.Equal(t, 2024, resp.Meta.PeriodYear)

	assert.Equal(t, "biz-1", f.svc.businessID)
	assert.Equal(t, 6, f.svc.fetchReq.PeriodMonth)
	assert.Equal(t, 2024, f.svc.fetchReq.PeriodYear)
	assert.Equal(t, "perHour", f.svc.fetchReq.Basis)
	require.NotNil(t, f.svc.fetchReq.EmployeeID)
	assert.Equal(t, employeeID, *f.svc.fetchReq.EmployeeID)
}

func TestListPayroll_InvalidQuery(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, resp := f.do(t, employee.RoleOwner, http.MethodGet, "/api/v1/payroll?month=june&year=20x4", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "month")
	assert.Contains(t, resp.Error.Details, "year")
}

func TestPayrollRoutes_StaffForbidden(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, employee.RoleStaff, http.MethodGet, "/api/v1/payroll", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.svc.businessID)
}

func TestPayrollRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"settings missing", business.ErrBusinessSettingsNotFound, http.MethodPost, "/api/v1/payroll/generate", `{"period_month":6,"period_year":2024}`, http.StatusUnprocessableEntity},
		{"no staff", payroll.ErrNoStaffEmployees, http.MethodPost, "/api/v1/payroll/generate", `{"period_month":6,"period_year":2024}`, http.StatusNotFound},
		{"already paid", payroll.ErrPayrollRecordAlreadyPaid, http.MethodPost, "/api/v1/payroll/" + recordID + "/pay", "", http.StatusConflict},
		{"delete missing", payroll.ErrPayrollRecordNotFound, http.MethodDelete, "/api/v1/payroll/" + recordID, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, tt.err)
			rec, resp := f.do(t, employee.RoleOwner, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestGeneratePayroll(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, resp := f.do(t, employee.RoleOwner, http.MethodPost, "/api/v1/payroll/generate", `{"period_month":6,"period_year":2024}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payroll.Period{Month: 6, Year: 2024}, f.svc.period)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3, data["generated"])
}

func TestGeneratePayroll_BadBody(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, employee.RoleOwner, http.MethodPost, "/api/v1/payroll/generate", `{"period_month":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, employee.RoleOwner, http.MethodPost, "/api/v1/payroll/generate", `{"period_month":13,"period_year":2024}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMarkPaid_EmptyBody(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, resp := f.do(t, employee.RoleManager, http.MethodPost, "/api/v1/payroll/"+recordID+"/pay", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, recordID, f.svc.markReq.ID)
	assert.Empty(t, f.svc.markReq.CalculationBasis)
}

func TestMarkPaid_WithBasis(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, employee.RoleManager, http.MethodPost, "/api/v1/payroll/"+recordID+"/pay", `{"calculation_basis":"perHour"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "perHour", f.svc.markReq.CalculationBasis)
}

func TestPayrollByID_MalformedIDIsNotFound(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec, _ := f.do(t, employee.RoleOwner, http.MethodDelete, "/api/v1/payroll/not-a-uuid", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.svc.businessID)
}

func TestPayrollRoutes_MalformedEmployeeIDIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"list filter", http.MethodGet, "/api/v1/payroll?month=6&year=2024&employee_id=abc", ""},
		{"create", http.MethodPost, "/api/v1/payroll", `{"employee_id":"abc","period_month":6,"period_year":2024}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, nil)

			rec, resp := f.do(t, employee.RoleOwner, tt.method, tt.target, tt.body)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.False(t, resp.Success)
			assert.Empty(t, f.svc.businessID)
		})
	}
}

func TestPeriodFromQuery_DefaultsToCurrentMonth(t *testing.T) {
	h := &payrollHandlerImpl{now: func() time.Time {
		// Still March 31st in UTC.
		return time.Date(2025, 4, 1, 3, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/summary", nil)
	month, year, err := h.periodFromQuery(req)
	require.NoError(t, err)
	assert.Equal(t, 3, month)
	assert.Equal(t, 2025, year)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payroll/summary?year=2023", nil)
	month, year, err = h.periodFromQuery(req)
	require.NoError(t, err)
	assert.Equal(t, 3, month)
	assert.Equal(t, 2023, year)
}

func TestHeartbeat(t *testing.T) {
	f := newRouterFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
