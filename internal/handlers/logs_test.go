package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecoviewer/internal/models"
	"ecoviewer/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.ConnectionEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventConnect, ChannelID: "42", Description: "channel connected"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventMount, ChannelID: "42", SessionID: "s-1", Description: "dashboard mounted"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{Authorization: auth, EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/api/v1/logs?from=notatime", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	w = httptest.NewRecorder()
	q := "/api/v1/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=mount&channel_id=42"
	r.ServeHTTP(w, newAuthedRequest(http.MethodGet, q, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                      `json:"count"`
		Events []models.ConnectionEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 || out.Events[1].SessionID != "s-1" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastOwner != 99 || logs.lastType != models.EventMount || logs.lastChannel != "42" {
		t.Fatalf("filter: owner=%d type=%q channel=%q", logs.lastOwner, logs.lastType, logs.lastChannel)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/api/v1/logs?from=2025-08-01&to=2025-08-01", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2025, 8, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("to = %v, want %v", logs.lastTo, want)
	}
}

func TestLogsHandler_ServiceError(t *testing.T) {
	logs := &mockEventLog{err: errors.New("db down")}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/api/v1/logs", ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}
