package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditHandler "github.com/openclinic/intake-api/internal/handler/audit"
	authHandler "github.com/openclinic/intake-api/internal/handler/auth"
	healthHandler "github.com/openclinic/intake-api/internal/handler/health"
	patientHandler "github.com/openclinic/intake-api/internal/handler/patient"
	"github.com/openclinic/intake-api/internal/middleware"
	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository/memory"
	auditService "github.com/openclinic/intake-api/internal/service/audit"
	authService "github.com/openclinic/intake-api/internal/service/auth"
	patientService "github.com/openclinic/intake-api/internal/service/patient"
	"github.com/openclinic/intake-api/pkg/logger"
	"github.com/openclinic/intake-api/pkg/security"
)

type testServer struct {
	engine    http.Handler
	auditRepo *memory.AuditRepository
}

func newTestServer() *testServer {
	userRepo := memory.NewUserRepository()
	patientRepo := memory.NewPatientRepository()
	auditRepo := memory.NewAuditRepository()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	auditSvc := auditService.NewService(auditRepo, log)
	authSvc := authService.NewService(userRepo, security.NewBcryptHasher(security.MinCostForTests))
	patientSvc := patientService.NewService(patientRepo, auditSvc)

	r := NewRouter(
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(nil),
		patientHandler.NewHandler(patientSvc),
		auditHandler.NewHandler(auditSvc),
		Config{
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	return &testServer{engine: r.Engine(), auditRepo: auditRepo}
}

func (s *testServer) do(method, path, assertion string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if assertion != "" {
		req.Header.Set("Authorization", assertion)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) signupAndLogin(t *testing.T, username, password, role string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"username": username, "password": password, "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return fmt.Sprintf("%d:%s", resp.ID, resp.Role)
}

func validPatientBody() map[string]string {
	return map[string]string{
		"fullName":      "Jane Roe",
		"dob":           "1990-01-01",
		"ssn":           "123-45-6789",
		"symptoms":      "cough",
		"clinicalNotes": "initial intake",
	}
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"username": "u"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "u", "password": "pw", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDuplicateUsername(t *testing.T) {
	s := newTestServer()

	body := map[string]string{"username": "c1", "password": "pw", "role": "clinician"}
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/auth/signup", "", body).Code)

	body["role"] = "admin"
	body["password"] = "other"
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/auth/signup", "", body).Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newTestServer()
	s.signupAndLogin(t, "c1", "pw", "clinician")

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "c1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost", "password": "pw",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePatientRequiresAssertion(t *testing.T) {
	s := newTestServer()

	assert.Equal(t, http.StatusUnauthorized,
		s.do(http.MethodPost, "/patients/create", "", validPatientBody()).Code)
	assert.Equal(t, http.StatusUnauthorized,
		s.do(http.MethodPost, "/patients/create", "not-an-assertion", validPatientBody()).Code)
}

func TestCreatePatientRequiresClinicianRole(t *testing.T) {
	s := newTestServer()
	adminAssertion := s.signupAndLogin(t, "a1", "pw", "admin")

	// A fully valid payload still gets 403 for a non-clinician.
	w := s.do(http.MethodPost, "/patients/create", adminAssertion, validPatientBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePatientValidation(t *testing.T) {
	s := newTestServer()
	assertion := s.signupAndLogin(t, "c1", "pw", "clinician")

	body := validPatientBody()
	delete(body, "symptoms")
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/patients/create", assertion, body).Code)

	body = validPatientBody()
	body["ssn"] = "123456789"
	w := s.do(http.MethodPost, "/patients/create", assertion, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "SSN")
}

func TestCreatePatientDuplicateSSN(t *testing.T) {
	s := newTestServer()
	assertion := s.signupAndLogin(t, "c1", "pw", "clinician")

	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/patients/create", assertion, validPatientBody()).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/patients/create", assertion, validPatientBody()).Code)
}

func TestAuditEndpointsAreAdminOnly(t *testing.T) {
	s := newTestServer()
	clinicianAssertion := s.signupAndLogin(t, "c1", "pw", "clinician")
	adminAssertion := s.signupAndLogin(t, "a1", "pw", "admin")

	for _, path := range []string{"/audit/logs", "/audit/logs/user/1", "/audit/logs/patient/1"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, clinicianAssertion, nil).Code, path)
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, adminAssertion, nil).Code, path)
	}

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/audit/logs/user/abc", adminAssertion, nil).Code)
}

func TestEndToEndIntakeFlow(t *testing.T) {
	s := newTestServer()

	clinicianAssertion := s.signupAndLogin(t, "c1", "pw", "clinician")

	w := s.do(http.MethodPost, "/patients/create", clinicianAssertion, validPatientBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The creating clinician sees the record with a masked SSN.
	w = s.do(http.MethodGet, "/patients/data", clinicianAssertion, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var mine []model.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "***-**-6789", mine[0].SSN)

	// An admin sees the same record unmasked.
	adminAssertion := s.signupAndLogin(t, "a1", "pw", "admin")
	w = s.do(http.MethodGet, "/patients/data", adminAssertion, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var all []model.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, "123-45-6789", all[0].SSN)

	// Audit trail: one create plus one view per list hit, ascending.
	w = s.do(http.MethodGet, "/audit/logs", adminAssertion, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, model.AuditActionCreatePatient, entries[0].Action)
	assert.Equal(t, model.AuditActionViewPatient, entries[1].Action)
	assert.Equal(t, model.AuditActionViewPatient, entries[2].Action)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}

	filtered := s.do(http.MethodGet, fmt.Sprintf("/audit/logs/patient/%d", mine[0].ID), adminAssertion, nil)
	require.Equal(t, http.StatusOK, filtered.Code)
	var byPatient []model.AuditLog
	require.NoError(t, json.Unmarshal(filtered.Body.Bytes(), &byPatient))
	assert.Len(t, byPatient, 3)
}

func TestListPatientsRequiresAssertion(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/patients/data", "", nil).Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	w := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
