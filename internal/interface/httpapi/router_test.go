package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
	repo "flightplan-service/internal/interface/repository"
	"flightplan-service/internal/interface/repository/storetest"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

func newTestRouter(t *testing.T, store repository.FlightPlanStore) http.Handler {
	t.Helper()
	return NewRouter(RouterOptions{
		Store:  store,
		Users:  repo.NewStaticUserRepository(testUser, testPassword),
		Logger: logger.NewNopLogger(),
	})
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.SetBasicAuth(testUser, testPassword)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func fileViaAPI(t *testing.T, h http.Handler, plan entity.FlightPlan) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/flightplan/file", plan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp fileFlightPlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.FlightPlanID)
	return resp.FlightPlanID
}

func TestHealth_NoAuthRequired(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth_MissingCredentials_401(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/flightplan", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="flightplan"`, rec.Header().Get("WWW-Authenticate"))
}

func TestAuth_WrongPassword_401(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flightplan", nil)
	req.SetBasicAuth(testUser, "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="flightplan"`, rec.Header().Get("WWW-Authenticate"))
}

type erroringUsers struct{}

func (erroringUsers) Authenticate(context.Context, string, string) (*entity.User, error) {
	return nil, errors.New("users table unavailable")
}

func TestAuth_LookupError_401(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	mw := NewBasicAuthMiddleware(erroringUsers{}, logger.NewNopLogger(), m)

	called := false
	h := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(testUser, testPassword)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_StoresUserInContext(t *testing.T) {
	mw := NewBasicAuthMiddleware(repo.NewStaticUserRepository(testUser, testPassword), logger.NewNopLogger(), nil)

	var got *entity.User
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(testUser, testPassword)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, testUser, got.Username)
	assert.NotEmpty(t, got.ID)
}

func TestList_EmptyIs204(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	rec := doRequest(t, h, http.MethodGet, "/api/v1/flightplan", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestFileThenGet(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())
	plan := storetest.SamplePlan()

	id := fileViaAPI(t, h, plan)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/flightplan/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got entity.FlightPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	storetest.AssertSamePlan(t, plan, got)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []entity.FlightPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
}

func TestGet_Unknown404(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	for _, path := range []string{
		"/api/v1/flightplan/does-not-exist",
		"/api/v1/flightplan/airport/departure/does-not-exist",
		"/api/v1/flightplan/route/does-not-exist",
		"/api/v1/flightplan/time/enroute/does-not-exist",
	} {
		rec := doRequest(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestProjections(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())
	id := fileViaAPI(t, h, storetest.SamplePlan())

	rec := doRequest(t, h, http.MethodGet, "/api/v1/flightplan/airport/departure/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"flight_plan_id":"`+id+`","departing_airport":"KSEA"}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan/route/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"flight_plan_id":"`+id+`","route":"KSEA V23 BTG KPDX"}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan/time/enroute/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"flight_plan_id":"`+id+`","time_enroute":"45m0s","minutes":45}`, rec.Body.String())
}

func TestFile_MalformedBody400(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	rec := doRequest(t, h, http.MethodPost, "/api/v1/flightplan/file", `{"altitude": "high"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdate(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())
	plan := storetest.SamplePlan()
	id := fileViaAPI(t, h, plan)

	plan.ID = id
	plan.Altitude = 10000
	rec := doRequest(t, h, http.MethodPut, "/api/v1/flightplan", plan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got entity.FlightPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 10000, got.Altitude)
}

func TestUpdate_UnknownOrMissingID404(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())
	plan := storetest.SamplePlan()

	rec := doRequest(t, h, http.MethodPut, "/api/v1/flightplan", plan)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	plan.ID = "00000000000000000000000000000000"
	rec = doRequest(t, h, http.MethodPut, "/api/v1/flightplan", plan)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdate_MalformedBody400(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())

	rec := doRequest(t, h, http.MethodPut, "/api/v1/flightplan", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryFlightPlanRepository())
	id := fileViaAPI(t, h, storetest.SamplePlan())

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/flightplan/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flightplan/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/flightplan/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// faultyStore fails every operation the way a lost connection would.
type faultyStore struct{}

var errStoreDown = errors.New("connection refused")

func (faultyStore) GetAll(context.Context) ([]entity.FlightPlan, error) {
	return nil, errStoreDown
}

func (faultyStore) GetByID(context.Context, string) (entity.FlightPlan, bool, error) {
	return entity.FlightPlan{}, false, errStoreDown
}

func (faultyStore) FileFlightPlan(context.Context, entity.FlightPlan) (string, entity.TransactionOutcome) {
	return "", entity.ServerError
}

func (faultyStore) UpdateByID(context.Context, string, entity.FlightPlan) entity.TransactionOutcome {
	return entity.ServerError
}

func (faultyStore) DeleteByID(context.Context, string) (bool, error) {
	return false, errStoreDown
}

func TestStoreFaults_500(t *testing.T) {
	h := newTestRouter(t, faultyStore{})
	plan := storetest.SamplePlan()
	plan.ID = "abc"

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/flightplan", nil},
		{http.MethodGet, "/api/v1/flightplan/abc", nil},
		{http.MethodGet, "/api/v1/flightplan/time/enroute/abc", nil},
		{http.MethodPost, "/api/v1/flightplan/file", plan},
		{http.MethodPut, "/api/v1/flightplan", plan},
		{http.MethodDelete, "/api/v1/flightplan/abc", nil},
	}
	for _, tc := range cases {
		rec := doRequest(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", tc.method, tc.path)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
		assert.NotEmpty(t, body.RequestID)
	}
}

type rejectingStore struct{ faultyStore }

func (rejectingStore) FileFlightPlan(context.Context, entity.FlightPlan) (string, entity.TransactionOutcome) {
	return "", entity.BadRequest
}

func TestFile_BadRequestOutcome400(t *testing.T) {
	h := newTestRouter(t, rejectingStore{})

	rec := doRequest(t, h, http.MethodPost, "/api/v1/flightplan/file", storetest.SamplePlan())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit_429(t *testing.T) {
	h := NewRouter(RouterOptions{
		Store:          repo.NewMemoryFlightPlanRepository(),
		Users:          repo.NewStaticUserRepository(testUser, testPassword),
		Logger:         logger.NewNopLogger(),
		RateLimitRPS:   0.001,
		RateLimitBurst: 1,
	})

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestCORS_Preflight(t *testing.T) {
	h := NewRouter(RouterOptions{
		Store:       repo.NewMemoryFlightPlanRepository(),
		Users:       repo.NewStaticUserRepository(testUser, testPassword),
		CORSOrigins: []string{"https://ops.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/flightplan", nil)
	req.Header.Set("Origin", "https://ops.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://ops.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("flightplan", reg)
	h := NewRouter(RouterOptions{
		Store:          repo.NewMemoryFlightPlanRepository(),
		Users:          repo.NewStaticUserRepository(testUser, testPassword),
		Logger:         logger.NewNopLogger(),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	doRequest(t, h, http.MethodGet, "/api/v1/flightplan", nil)
	unauth := httptest.NewRecorder()
	h.ServeHTTP(unauth, httptest.NewRequest(http.MethodGet, "/api/v1/flightplan", nil))
	require.Equal(t, http.StatusUnauthorized, unauth.Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `flightplan_http_requests_total{endpoint="/api/v1/flightplan",method="GET",status_code="204"} 1`), body)
	assert.True(t, strings.Contains(body, `flightplan_auth_failures_total{reason="missing_credentials"} 1`), body)
}

func TestStatusRecorder_FirstWriteWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, statusCode: http.StatusOK}

	sr.WriteHeader(http.StatusCreated)
	sr.WriteHeader(http.StatusInternalServerError)
	_, _ = sr.Write([]byte("ok"))

	assert.Equal(t, http.StatusCreated, sr.statusCode)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
