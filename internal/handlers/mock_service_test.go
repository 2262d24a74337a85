package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"ecoviewer/internal/models"
	"ecoviewer/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockConnection struct {
	handoff   models.Handoff
	err       error
	calls     int
	lastSent  service.SubmitParams
	lastOwner int
}

func (m *mockConnection) Submit(_ context.Context, ownerID int, p service.SubmitParams) (models.Handoff, error) {
	m.calls++
	m.lastSent = p
	m.lastOwner = ownerID
	return m.handoff, m.err
}

// mockDashboards keeps views by session id. Owner checks use owner.
type mockDashboards struct {
	mu sync.Mutex

	owner    int
	views    map[string]models.DashboardView
	states   map[string]models.DashboardState
	sessions []service.SessionInfo
	mountErr error

	mounted    []models.Handoff
	unmounted  []string
	viewCalls  int
	unmountErr error
}

func newMockDashboards(owner int) *mockDashboards {
	return &mockDashboards{
		owner:  owner,
		views:  map[string]models.DashboardView{},
		states: map[string]models.DashboardState{},
	}
}

func (m *mockDashboards) Mount(_ context.Context, ownerID int, h models.Handoff) (service.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mountErr != nil {
		return service.SessionInfo{}, m.mountErr
	}
	m.mounted = append(m.mounted, h)
	info := service.SessionInfo{
		ID:          "s-1",
		ChannelID:   h.Credentials.ChannelID,
		Private:     h.Credentials.Private(),
		Orientation: models.OrientationLandscape,
		MountedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	m.owner = ownerID
	m.sessions = append(m.sessions, info)
	m.views[info.ID] = models.DashboardView{SessionID: info.ID, ChannelID: info.ChannelID}
	return info, nil
}

func (m *mockDashboards) State(ownerID int, id string) (models.DashboardState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	if !ok || ownerID != m.owner {
		return models.DashboardState{}, service.ErrSessionNotFound
	}
	return st, nil
}

func (m *mockDashboards) View(ownerID int, id string) (models.DashboardView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewCalls++
	v, ok := m.views[id]
	if !ok || ownerID != m.owner {
		return models.DashboardView{}, service.ErrSessionNotFound
	}
	return v, nil
}

func (m *mockDashboards) Sessions(ownerID int) []service.SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ownerID != m.owner {
		return []service.SessionInfo{}
	}
	return append([]service.SessionInfo{}, m.sessions...)
}

func (m *mockDashboards) Unmount(_ context.Context, ownerID int, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unmountErr != nil {
		return m.unmountErr
	}
	if _, ok := m.views[id]; !ok || ownerID != m.owner {
		return service.ErrSessionNotFound
	}
	delete(m.views, id)
	delete(m.states, id)
	m.unmounted = append(m.unmounted, id)
	return nil
}

func (m *mockDashboards) Shutdown() {}

// remove drops a session as if it was unmounted elsewhere.
func (m *mockDashboards) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.views, id)
}

type mockEventLog struct {
	resp        []models.ConnectionEvent
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastType    string
	lastChannel string
	lastOwner   int
}

func (m *mockEventLog) List(_ context.Context, ownerID int, f service.LogFilter) ([]models.ConnectionEvent, error) {
	m.lastOwner = ownerID
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastChannel = f.ChannelID
	return m.resp, m.err
}

type mockSamples struct {
	resp        []models.SampleRecord
	err         error
	lastChannel string
	lastLimit   int
	lastOwner   int
}

func (m *mockSamples) Recent(_ context.Context, ownerID int, channelID string, limit int) ([]models.SampleRecord, error) {
	m.lastOwner = ownerID
	m.lastChannel = channelID
	m.lastLimit = limit
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func newAuthedRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
