package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"mybus/internal/auth"
	intconfig "mybus/internal/config"
	"mybus/internal/repositories"
	"mybus/internal/services"
)

var (
	userTestColumns = []string{
		"id", "name", "email", "phone", "password_hash", "role", "status",
		"last_login", "total_bookings", "total_spent", "created_at", "updated_at",
	}
	busTestColumns = []string{
		"id", "bus_category", "bus_number", "bus_type", "capacity", "registration_no",
		"gps_device_id", "current_location", "status", "route", "created_at", "updated_at",
	}
)

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, auth.TokenService, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}

	tokens := auth.NewTokenService("test-secret", time.Hour)
	userRepo := repositories.UserRepository{DB: db}
	busRepo := repositories.BusRepository{DB: db}
	scheduleRepo := repositories.ScheduleRepository{DB: db}

	env := intconfig.Env{CORSOrigins: []string{"*"}}
	r := NewRouter(env, Deps{
		DB:        db,
		Tokens:    tokens,
		Users:     services.UserService{Users: userRepo, Tokens: tokens},
		Fleet:     services.FleetService{Buses: busRepo, Schedules: scheduleRepo},
		Schedules: services.ScheduleService{Schedules: scheduleRepo},
	})
	return r, mock, tokens, func() { _ = db.Close() }
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func busRouteRow(id, busNumber, routeJSON string) *sqlmock.Rows {
	now := time.Now()
	var route any
	if routeJSON != "" {
		route = routeJSON
	}
	return sqlmock.NewRows(busTestColumns).
		AddRow(id, "AC", busNumber, "express", 40, "REG-"+id, "GPS-1", nil, "ACTIVE", route, now, now)
}

func TestRegisterResponseOmitsPasswordHash(t *testing.T) {
	r, mock, _, done := newTestServer(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(r, http.MethodPost, "/auth/register", "",
		`{"name":"John","email":"john@example.com","phone":"9999999999","password":"secret123","role":"driver"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	for _, key := range []string{"passwordHash", "password_hash", "password"} {
		if _, ok := resp.User[key]; ok {
			t.Fatalf("response leaks %q: %s", key, w.Body.String())
		}
	}
	if resp.User["role"] != "USER" {
		t.Fatalf("unknown role not coerced: %v", resp.User["role"])
	}
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	r, mock, _, done := newTestServer(t)
	defer done()

	hash, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	unknown := doJSON(r, http.MethodPost, "/auth/login", "",
		`{"email":"nobody@example.com","password":"whatever"}`)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow("u1", "John", "john@example.com", "1", hash, "USER", "ACTIVE", nil, 0, 0, now, now))
	wrong := doJSON(r, http.MethodPost, "/auth/login", "",
		`{"email":"john@example.com","password":"wrong-password"}`)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrong.Code)
	}

	var a, b struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(unknown.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if err := json.Unmarshal(wrong.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if a.Error == "" || a.Error != b.Error {
		t.Fatalf("messages differ: %q vs %q", a.Error, b.Error)
	}
}

func TestBusSearchModeIsDirectionAware(t *testing.T) {
	r, mock, tokens, done := newTestServer(t)
	defer done()

	token, err := tokens.Issue("u1", "USER")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	route := `{"city":"Bengaluru","stops":[{"name":"Majestic","order":1},{"name":"Whitefield","order":2}]}`

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WillReturnRows(busRouteRow("b1", "KA-01-1234", route))
	forward := doJSON(r, http.MethodGet, "/buses?mode=search&source=Majestic&destination=Whitefield", token, "")
	if forward.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", forward.Code, forward.Body.String())
	}
	var resp struct {
		Buses []map[string]any `json:"buses"`
	}
	if err := json.Unmarshal(forward.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Buses) != 1 {
		t.Fatalf("expected 1 matching bus, got %d", len(resp.Buses))
	}

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WillReturnRows(busRouteRow("b1", "KA-01-1234", route))
	reverse := doJSON(r, http.MethodGet, "/buses?mode=search&source=Whitefield&destination=Majestic", token, "")
	if reverse.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", reverse.Code)
	}
	resp.Buses = nil
	if err := json.Unmarshal(reverse.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Buses) != 0 {
		t.Fatalf("reverse direction must not match, got %d buses", len(resp.Buses))
	}
}

func TestBusListRejectsUnknownMode(t *testing.T) {
	r, _, tokens, done := newTestServer(t)
	defer done()

	token, err := tokens.Issue("u1", "USER")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	w := doJSON(r, http.MethodGet, "/buses?mode=bogus", token, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestBusWritesRequireAdmin(t *testing.T) {
	r, _, tokens, done := newTestServer(t)
	defer done()

	body := `{"busCategory":"AC","busNumber":"KA-01-1234","type":"express","capacity":40,"registrationNo":"REG-001","gpsDeviceId":"GPS-1"}`

	w := doJSON(r, http.MethodPost, "/buses", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	userToken, err := tokens.Issue("u1", "USER")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	w = doJSON(r, http.MethodPost, "/buses", userToken, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestDeleteBusReportsCascadeCount(t *testing.T) {
	r, mock, tokens, done := newTestServer(t)
	defer done()

	token, err := tokens.Issue("a1", "ADMIN")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM buses WHERE id").
		WithArgs("b1").
		WillReturnRows(busRouteRow("b1", "KA-01-1234", ""))
	mock.ExpectExec("DELETE FROM schedules WHERE bus_id").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM buses WHERE id").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(r, http.MethodDelete, "/buses/b1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		SchedulesRemoved int64 `json:"schedulesRemoved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.SchedulesRemoved != 2 {
		t.Fatalf("expected 2 schedules removed, got %d", resp.SchedulesRemoved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScheduleCreateListsMissingFields(t *testing.T) {
	r, _, tokens, done := newTestServer(t)
	defer done()

	token, err := tokens.Issue("a1", "ADMIN")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	w := doJSON(r, http.MethodPost, "/schedules", token, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "missing fields") {
		t.Fatalf("expected missing fields message, got %s", w.Body.String())
	}
}

func TestAdminRoutesAreGated(t *testing.T) {
	r, _, tokens, done := newTestServer(t)
	defer done()

	userToken, err := tokens.Issue("u1", "USER")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/admin/users"},
		{http.MethodPost, "/admin/users"},
		{http.MethodDelete, "/admin/users/u2"},
	} {
		w := doJSON(r, tc.method, tc.path, userToken, "")
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for USER, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _, done := newTestServer(t)
	defer done()

	w := doJSON(r, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "running") {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	r, _, _, done := newTestServer(t)
	defer done()

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/no-such-%d", time.Now().Unix()), "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "route not found") {
		t.Fatalf("unexpected 404 body: %s", w.Body.String())
	}
}
