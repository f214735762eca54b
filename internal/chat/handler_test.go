package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, f *serviceFixture) *chi.Mux {
	t.Helper()
	h := NewHandler(f.svc)

	r := chi.NewRouter()
	r.Post("/chat/thread", h.CreateThread)
	r.Get("/chat/status", h.QuotaStatus)
	r.Post("/chat/{threadID}", h.SendMessage)
	r.Get("/stats", h.DailyStats)
	return r
}

func createThread(t *testing.T, router *chi.Mux) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/thread", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data ThreadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ThreadID)
	return resp.Data.ThreadID
}

func sendMessage(router *chi.Mux, threadID, message string) *httptest.ResponseRecorder {
	body := strings.NewReader(`{"message":` + mustQuote(message) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/chat/"+threadID, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func mustQuote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func TestHandlerSendMessage(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "hi coach")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data SendResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello from the coach", resp.Data.Reply)
}

func TestHandlerSendEmptyMessage(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSendMalformedBody(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	req := httptest.NewRequest(http.MethodPost, "/chat/"+threadID, strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSendOversized(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, strings.Repeat("word ", 11))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "input too long")
}

func TestHandlerSendUnknownThread(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)

	rec := sendMessage(router, "deadbeef", "hello")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerSendQuotaExceeded(t *testing.T) {
	cfg := testChatConfig()
	cfg.HourlyWordLimit = 2
	f := newServiceFixture(t, cfg)
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "one two")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = sendMessage(router, threadID, "three four")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit reached")
}

func TestHandlerSendUpstreamDown(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	f.completer.err = ErrUpstreamUnavailable
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "hello")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerSendUpstreamRateLimited(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	f.completer.err = ErrUpstreamRateLimited
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "hello")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandlerQuotaStatus(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)
	threadID := createThread(t, router)

	rec := sendMessage(router, threadID, "two words")
	require.Equal(t, http.StatusOK, rec.Code)

	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, httptest.NewRequest(http.MethodGet, "/chat/status", nil))
	require.Equal(t, http.StatusOK, statusRec.Code)

	var resp struct {
		Data QuotaStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Allowed)
	assert.Equal(t, 28, resp.Data.RemainingHour)
	assert.Equal(t, 98, resp.Data.RemainingDay)
}

func TestHandlerDailyStatsEmpty(t *testing.T) {
	f := newServiceFixture(t, testChatConfig())
	router := newTestRouter(t, f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
