package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"huntboard/internal/admintoken"
	"huntboard/internal/directory/export"
	"huntboard/internal/directory/loader"
	"huntboard/internal/directory/service"
	"huntboard/internal/directory/store/memory"
	"huntboard/internal/notify"
)

const (
	testAdminEmail    = "admin@huntboard.dev"
	testAdminPassword = "correct horse battery staple"
)

type HandlerSuite struct {
	suite.Suite
	now       time.Time
	directory *service.Service
	notifier  *notify.LogNotifier
	handler   *Handler
	router    chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewSeeded(s.now)
	ld := loader.New(store, loader.WithLogger(logger))
	s.directory = service.New(ld, service.Config{},
		service.WithLogger(logger),
		service.WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(s.directory.Refresh(context.Background(), true))

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	s.Require().NoError(err)

	s.notifier = notify.NewLogNotifier(logger, 10)
	tokens := admintoken.New("test-key", 15*time.Minute,
		admintoken.WithClock(func() time.Time { return s.now }))
	s.handler = New(s.directory, export.New("test", "test"), tokens,
		testAdminEmail, string(hash), logger,
		WithClock(func() time.Time { return s.now }),
		WithNotifier(s.notifier),
	)

	s.router = chi.NewRouter()
	s.handler.RegisterPublic(s.router)
	s.handler.Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.directory.Close()
}

func (s *HandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestLoginSuccess() {
	rec := s.do(http.MethodPost, "/admin/login", LoginRequest{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp.AccessToken)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(int((15 * time.Minute).Seconds()), resp.ExpiresIn)
}

func (s *HandlerSuite) TestLoginWrongPassword() {
	rec := s.do(http.MethodPost, "/admin/login", LoginRequest{
		Email:    testAdminEmail,
		Password: "wrong",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestLoginWrongEmail() {
	rec := s.do(http.MethodPost, "/admin/login", LoginRequest{
		Email:    "stranger@example.com",
		Password: testAdminPassword,
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestLoginWithoutConfiguredHashSaysSo() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := admintoken.New("test-key", 15*time.Minute)
	handler := New(s.directory, export.New("test", "test"), tokens,
		testAdminEmail, "", logger)
	router := chi.NewRouter()
	handler.RegisterPublic(router)

	data, err := json.Marshal(LoginRequest{Email: testAdminEmail, Password: testAdminPassword})
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "admin login is not configured")
}

func (s *HandlerSuite) TestGetUsers() {
	rec := s.do(http.MethodGet, "/admin/users", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp UsersListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(len(resp.Users), resp.Total)
	s.NotEmpty(resp.Users)
}

func (s *HandlerSuite) TestGetUsersFiltered() {
	rec := s.do(http.MethodGet, "/admin/users?status=inactive&sort=applications", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp UsersListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, u := range resp.Users {
		s.Equal("inactive", u.Status)
	}
}

func (s *HandlerSuite) TestGetUsersSearchNoMatch() {
	rec := s.do(http.MethodGet, "/admin/users?search=zzz-does-not-exist", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp UsersListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Zero(resp.Total)
	s.NotNil(resp.Users)
}

func (s *HandlerSuite) TestGetStats() {
	rec := s.do(http.MethodGet, "/admin/stats", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var stats map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	s.Contains(stats, "totalUsers")
	s.Contains(stats, "mostActiveUser")
}

func (s *HandlerSuite) TestGetRefreshState() {
	rec := s.do(http.MethodGet, "/admin/refresh", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var state map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &state))
	s.Equal("success", state["refreshStatus"])
	s.Equal(false, state["isRefreshing"])
}

func (s *HandlerSuite) TestDebouncedRefreshAccepted() {
	rec := s.do(http.MethodPost, "/admin/refresh", nil)
	s.Equal(http.StatusAccepted, rec.Code)
}

func (s *HandlerSuite) TestForcedRefresh() {
	rec := s.do(http.MethodPost, "/admin/refresh?force=true", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var state map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &state))
	s.Equal("success", state["refreshStatus"])
}

func (s *HandlerSuite) TestExportUsers() {
	rec := s.do(http.MethodGet, "/admin/export/users", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="huntboard-users-2025-06-15.json"`,
		rec.Header().Get("Content-Disposition"))

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
	s.Contains(doc, "allUsers")
	s.Contains(doc, "userStats")
	s.Contains(doc, "systemInfo")
}

func (s *HandlerSuite) TestExportAnalytics() {
	rec := s.do(http.MethodGet, "/admin/export/analytics?timeRange=30d", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(`attachment; filename="huntboard-analytics-2025-06-15.json"`,
		rec.Header().Get("Content-Disposition"))

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
	s.Contains(doc, "analytics")
	s.Equal("30d", doc["timeRange"])
}

func (s *HandlerSuite) TestNotifications() {
	s.notifier.Notify(context.Background(), notify.LevelSuccess, "Data refreshed successfully", time.Second)

	rec := s.do(http.MethodGet, "/admin/notifications", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Notifications []notify.Notification `json:"notifications"`
		Total         int                   `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(1, resp.Total)
	s.Equal("Data refreshed successfully", resp.Notifications[0].Message)
}
