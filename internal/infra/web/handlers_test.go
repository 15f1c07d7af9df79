package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	"care-compass/internal/domain/ports/repository"
	"care-compass/internal/usecase"
)

// ---- Fakes ----

type fakeChatUC struct {
	sessions map[string]bool
}

func newFakeChatUC() *fakeChatUC {
	return &fakeChatUC{sessions: map[string]bool{}}
}

func (f *fakeChatUC) CreateSession(ctx context.Context, userID string) (*model.Session, string, error) {
	s := model.NewSession("sess-1", userID)
	f.sessions[s.ID] = true
	return s, usecase.WelcomeMessage, nil
}

func (f *fakeChatUC) HandleMessage(ctx context.Context, sessionID, userID, message string) (*usecase.ChatReply, error) {
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}
	id := sessionID
	if id == "" || !f.sessions[id] {
		id = "sess-new"
		f.sessions[id] = true
	}
	return &usecase.ChatReply{
		Response:    "here to help",
		SessionID:   id,
		Intent:      model.IntentGeneralHealth,
		State:       model.StateGeneralHealth,
		Suggestions: usecase.SuggestionsFor(model.StateGeneralHealth),
		Disclaimer:  usecase.Disclaimer,
	}, nil
}

func (f *fakeChatUC) EndSession(ctx context.Context, sessionID string) (bool, error) {
	existed := f.sessions[sessionID]
	delete(f.sessions, sessionID)
	return existed, nil
}

func (f *fakeChatUC) Summary(ctx context.Context, sessionID string) (*usecase.SessionSummary, error) {
	if !f.sessions[sessionID] {
		return nil, domain.ErrSessionNotFound
	}
	return &usecase.SessionSummary{SessionID: sessionID, State: model.StateGreeting}, nil
}

func (f *fakeChatUC) SweepExpired(ctx context.Context) (int, error) { return 2, nil }

func (f *fakeChatUC) Stats(ctx context.Context) (repository.SessionStats, error) {
	return repository.SessionStats{ActiveCount: len(f.sessions)}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeChatUC) {
	t.Helper()
	nop := zerolog.Nop()
	chat := newFakeChatUC()
	srv := NewServer(chat, nil, nil, 0, "fake-model", nil, 0, &nop)
	return srv, chat
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- Tests ----

func TestCreateSessionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/chatbot/session", map[string]string{"user_id": "u1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sess-1", body["session_id"])
	assert.NotEmpty(t, body["welcome_message"])
}

func TestMessageEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/chatbot/message", map[string]string{
		"message": "hello",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body usecase.ChatReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "here to help", body.Response)
	assert.NotEmpty(t, body.SessionID)
	assert.NotEmpty(t, body.Disclaimer)
	assert.NotEmpty(t, body.Suggestions)
}

func TestMessageEndpointRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/chatbot/message", map[string]string{
		"message": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndSessionEndpointIsIdempotent(t *testing.T) {
	srv, chat := newTestServer(t)
	chat.sessions["sess-1"] = true
	routes := srv.Routes()

	rec := doJSON(t, routes, http.MethodDelete, "/chatbot/session/sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting again still succeeds.
	rec = doJSON(t, routes, http.MethodDelete, "/chatbot/session/sess-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionSummaryEndpoint(t *testing.T) {
	srv, chat := newTestServer(t)
	chat.sessions["sess-1"] = true
	routes := srv.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/chatbot/session/sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, routes, http.MethodGet, "/chatbot/session/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/chatbot/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "fake-model", body["model"])
}

func TestCleanupEndpointInline(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/chatbot/sessions/cleanup", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["sessions_removed"])
}

func TestQuickFindClinicsRequiresLocation(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/chatbot/quick-actions/find-clinics", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/chatbot/quick-actions/find-clinics", map[string]string{
		"location": "77005",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClinicEndpointsWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/clinics/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
