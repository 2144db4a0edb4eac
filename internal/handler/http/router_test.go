package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/sms"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/repository/memory"
	attendanceService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/attendance"
	authService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/service/file"
	reportService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/report"
	schoolService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/school"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	schoolLat         = 25.5941
	schoolLon         = 85.1376
	testPhoto         = "data:image/jpeg;base64,/9j/4AAQ"
)

type stubFiles struct {
	mu sync.Mutex
	n  int
}

func (f *stubFiles) UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, encoded string, captureType string) (file.StoredPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := fmt.Sprintf("attendance/%s/%s-%s-%d.jpg", date.Format("2006-01-02"), userID, captureType, f.n)
	return file.StoredPhoto{URL: "http://localhost:8080/uploads/" + key, Key: key}, nil
}

func (f *stubFiles) DeleteFile(ctx context.Context, key string) error {
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t         *testing.T
	handler   http.Handler
	store     *memory.Store
	jwt       jwt.Service
	school    school.School
	principal user.User
	admin     user.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	jwtService, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	store := memory.NewStore()
	ctx := context.Background()

	sch, err := store.Schools().Create(ctx, school.School{
		Name: "Govt. Primary School Patna", Code: "PAT01",
		Latitude: schoolLat, Longitude: schoolLon,
		Address:  school.Address{Block: "Patna Sadar", District: "Patna", State: school.DefaultState},
		IsActive: true, BoundaryRadius: 100,
	})
	require.NoError(t, err)

	principal, err := store.Users().Create(ctx, user.User{
		Name: "Principal", Email: "principal@school.in", PasswordHash: "x",
		Role: user.RolePrincipal, SchoolID: &sch.ID, IsActive: true,
	})
	require.NoError(t, err)
	admin, err := store.Users().Create(ctx, user.User{
		Name: "Admin", Email: "admin@school.in", PasswordHash: "x", Role: user.RoleAdmin, IsActive: true,
	})
	require.NoError(t, err)

	systemClock := clock.System()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authSvc := authService.NewAuthService(store, store.Users(), store.Schools(), jwtService)
	attendanceSvc := attendanceService.NewAttendanceService(store.Attendances(), store.Users(), store.Schools(), &stubFiles{}, systemClock, loc)
	schoolSvc := schoolService.NewSchoolService(store.Schools(), store.Users(), sms.NewLogSender(logger), systemClock, loc)
	reportSvc := reportService.NewReportService(store.Reports(), systemClock, loc)

	router := NewRouter(
		logger,
		[]string{"http://localhost:3000"},
		jwtService,
		NewAuthHandler(authSvc),
		NewAttendanceHandler(attendanceSvc),
		NewSchoolHandler(schoolSvc),
		NewReportHandler(reportSvc),
		t.TempDir(),
	)

	return &testServer{
		t: t, handler: router, store: store, jwt: jwtService,
		school: sch, principal: principal, admin: admin,
	}
}

func (s *testServer) tokenFor(u user.User) string {
	s.t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.SchoolID, u.Role)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func capture(lat, lon float64) map[string]interface{} {
	return map[string]interface{}{
		"photo":    testPhoto,
		"location": map[string]interface{}{"latitude": lat, "longitude": lon, "accuracy": 10},
	}
}

func (s *testServer) registerTeacher(email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Teacher", "email": email, "password": "secret123", "school_id": s.school.ID,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var token auth.TokenResponse
	require.NoError(s.t, json.Unmarshal(decode(s.t, rec).Data, &token))
	assert.Equal(s.t, "teacher", token.User.Role)
	return token.AccessToken
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	s.registerTeacher("teacher@school.in")

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "teacher@school.in", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "teacher@school.in", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token auth.TokenResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &token))

	rec = s.do(http.MethodGet, "/api/auth/me", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.UserResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, "teacher@school.in", me.Email)
	require.NotNil(t, me.SchoolID)
	assert.Equal(t, s.school.ID, *me.SchoolID)

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Admin", "email": "root@school.in", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Teacher", "email": "teacher@school.in", "password": "secret123", "school_id": s.school.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/attendance/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendance_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.registerTeacher("teacher@school.in")

	rec := s.do(http.MethodPost, "/api/attendance/checkout", token, capture(schoolLat, schoolLon))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You need to check in before you can check out. Please check in first.", decode(t, rec).Error.Message)

	rec = s.do(http.MethodPost, "/api/attendance", token, capture(schoolLat+0.01, schoolLon))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are not within the school boundary. Distance: 1112m, Boundary: 100m", decode(t, rec).Error.Message)

	rec = s.do(http.MethodPost, "/api/attendance", token, map[string]interface{}{
		"photo": testPhoto, "latitude": schoolLat, "longitude": schoolLon,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "latitude is required")

	rec = s.do(http.MethodPost, "/api/attendance", token, capture(schoolLat, schoolLon))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "Check-in successful. Awaiting approval.", resp.Message)
	var checkedIn struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &checkedIn))
	assert.Equal(t, "pending", checkedIn.Status)

	rec = s.do(http.MethodPost, "/api/attendance", token, capture(schoolLat, schoolLon))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "You have already checked in today. You can only check in once per day.", decode(t, rec).Error.Message)

	rec = s.do(http.MethodPost, "/api/attendance/checkout", token, capture(schoolLat, schoolLon))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Check-out successful.", decode(t, rec).Message)

	rec = s.do(http.MethodPost, "/api/attendance/checkout", token, capture(schoolLat, schoolLon))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You need to check in before you can check out. Please check in first.", decode(t, rec).Error.Message)

	rec = s.do(http.MethodGet, "/api/attendance/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today struct {
		HasCheckedIn  bool `json:"has_checked_in"`
		HasCheckedOut bool `json:"has_checked_out"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &today))
	assert.True(t, today.HasCheckedIn)
	assert.True(t, today.HasCheckedOut)

	rec = s.do(http.MethodGet, "/api/attendance/history?page=abc", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/attendance/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Principal approves once; a second decision is refused
	principalToken := s.tokenFor(s.principal)
	rec = s.do(http.MethodPut, "/api/attendance/"+checkedIn.ID+"/approve", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/attendance/"+checkedIn.ID+"/approve", principalToken, map[string]string{"remarks": "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/attendance/"+checkedIn.ID+"/reject", principalToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/attendance/school", principalToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/attendance/export", principalToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "school-attendance-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Teacher Name,Teacher Email"))
}

func TestAttendance_AdminCannotCheckIn(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/attendance", s.tokenFor(s.admin), capture(schoolLat, schoolLon))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendance_PrincipalRecordsReviewedByAdmin(t *testing.T) {
	s := newTestServer(t)
	principalToken := s.tokenFor(s.principal)
	adminToken := s.tokenFor(s.admin)

	rec := s.do(http.MethodPost, "/api/attendance", principalToken, capture(schoolLat, schoolLon))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))

	rec = s.do(http.MethodGet, "/api/attendance/principals", principalToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/attendance/principals", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/attendance/principals/"+created.ID+"/reject", adminToken, map[string]string{"remarks": "blurred photo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/attendance/principals/export", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Principal Name,Principal Email,School"))

	rec = s.do(http.MethodGet, "/api/attendance/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSchools_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.tokenFor(s.admin)

	rec := s.do(http.MethodGet, "/api/schools", s.tokenFor(s.principal), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/schools", adminToken, map[string]interface{}{
		"name": "Gaya Model School", "code": "gay01", "latitude": 24.79, "longitude": 85.0,
		"address": map[string]string{"block": "Bodh Gaya", "district": "Gaya"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created school.SchoolResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.Equal(t, "GAY01", created.Code)

	rec = s.do(http.MethodPatch, "/api/schools/"+created.ID+"/boundary", adminToken, map[string]int{"boundary_radius": 20})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPatch, "/api/schools/"+created.ID+"/boundary", adminToken, map[string]int{"boundary_radius": 300})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/schools/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/schools/"+created.ID+"/sms-alert", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/schools/"+s.school.ID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodDelete, "/api/schools/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/schools/dropdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []school.DropdownItem
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "PAT01", items[0].Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.tokenFor(s.admin)

	rec := s.do(http.MethodGet, "/api/reports/stats?district=Patna", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/reports/stats?block=Danapur", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/reports/district", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Govt. Primary School Patna,Patna Sadar,Patna,0,0,0")

	rec = s.do(http.MethodGet, "/api/reports/district", s.tokenFor(s.principal), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
