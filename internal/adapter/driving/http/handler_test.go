package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/oncoassist/internal/adapter/driving/http"
	"github.com/ericfisherdev/oncoassist/internal/application"
	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// --- Mock implementations ---

type mockCompleter struct {
	raw *model.RawResponse
	err error

	mu         sync.Mutex
	calls      int
	lastSecret string
}

func (m *mockCompleter) Complete(_ context.Context, _, secret string) (*model.RawResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSecret = secret
	return m.raw, m.err
}

type mockCredentialStore struct {
	mu    sync.Mutex
	value string
	set   bool
	err   error
}

func (m *mockCredentialStore) Load(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set, nil
}

func (m *mockCredentialStore) Save(ctx context.Context, secret string) error {
	if m.err != nil {
		return m.err
	}
	if strings.TrimSpace(secret) == "" {
		return m.Clear(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = secret, true
	return nil
}

func (m *mockCredentialStore) Clear(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = "", false
	return nil
}

type providerError struct{ msg string }

func (e *providerError) Error() string       { return "status 401: " + e.msg }
func (e *providerError) UserMessage() string { return e.msg }

// --- Test helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupServer(t *testing.T, completer *mockCompleter, store *mockCredentialStore) http.Handler {
	t.Helper()

	logger := discardLogger()
	reg := prometheus.NewRegistry()
	metrics, err := application.NewMetrics(reg)
	require.NoError(t, err)

	askSvc := application.NewAskService(completer, metrics, logger)
	session, err := application.NewSession(context.Background(), store, askSvc, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(askSvc, session, logger))
	httphandler.RegisterMetricsRoute(mux, reg)
	return httphandler.ApplyMiddleware(mux, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleRaw() *model.RawResponse {
	return &model.RawResponse{Choices: []model.RawChoice{{Message: &model.RawMessage{
		Content: "Answer text",
		Context: &model.RawContext{Citations: []model.Citation{
			{Title: "T", URL: "U", Content: "C\naHR0xyz", Extra: map[string]json.RawMessage{"chunk_score": json.RawMessage(`0.9`)}},
		}},
	}}}}
}

// --- Tests ---

func TestAsk_UsesHeaderKey(t *testing.T) {
	completer := &mockCompleter{raw: sampleRaw()}
	srv := setupServer(t, completer, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"What are early signs?"}`,
		map[string]string{"api-key": "header-key"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"answer":"Answer text","citations":[{"title":"T","url":"U","content":"C","chunk_score":0.9}]}`,
		rec.Body.String(),
	)
	assert.Equal(t, "header-key", completer.lastSecret)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAsk_FallsBackToStoredKey(t *testing.T) {
	completer := &mockCompleter{raw: sampleRaw()}
	srv := setupServer(t, completer, &mockCredentialStore{value: "stored-key", set: true})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stored-key", completer.lastSecret)
}

func TestAsk_PreconditionSkip(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
	}{
		{name: "empty question", body: `{"question":""}`, headers: map[string]string{"api-key": "key123"}},
		{name: "no key anywhere", body: `{"question":"valid question"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{raw: sampleRaw()}
			srv := setupServer(t, completer, &mockCredentialStore{})

			rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", tt.body, tt.headers)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, completer.calls)
		})
	}
}

func TestAsk_ProviderErrorMessage(t *testing.T) {
	completer := &mockCompleter{err: &providerError{msg: "Invalid key"}}
	srv := setupServer(t, completer, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`, map[string]string{"api-key": "bad"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid key"}`, rec.Body.String())
}

func TestAsk_TransportErrorFallback(t *testing.T) {
	completer := &mockCompleter{err: errors.New("dial tcp: connection refused")}
	srv := setupServer(t, completer, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`, map[string]string{"api-key": "k"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong. Please try again."}`, rec.Body.String())
}

func TestAsk_MalformedResponse(t *testing.T) {
	completer := &mockCompleter{raw: &model.RawResponse{}}
	srv := setupServer(t, completer, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`, map[string]string{"api-key": "k"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), model.FallbackErrorMessage)
}

func TestAsk_RequiresJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{name: "text/plain form post", contentType: "text/plain"},
		{name: "urlencoded form post", contentType: "application/x-www-form-urlencoded"},
		{name: "multipart form post", contentType: "multipart/form-data; boundary=x"},
		{name: "missing", contentType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{raw: sampleRaw()}
			srv := setupServer(t, completer, &mockCredentialStore{value: "stored-key", set: true})

			rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`,
				map[string]string{"Content-Type": tt.contentType})

			assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
			assert.Equal(t, 0, completer.calls)
		})
	}
}

func TestAsk_AcceptsJSONWithCharset(t *testing.T) {
	completer := &mockCompleter{raw: sampleRaw()}
	srv := setupServer(t, completer, &mockCredentialStore{value: "stored-key", set: true})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`,
		map[string]string{"Content-Type": "application/json; charset=utf-8"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, completer.calls)
}

func TestCredential_PutRequiresJSONContentType(t *testing.T) {
	store := &mockCredentialStore{}
	srv := setupServer(t, &mockCompleter{}, store)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/credential", `{"api_key":"key123"}`,
		map[string]string{"Content-Type": "text/plain"})

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	_, ok, _ := store.Load(context.Background())
	assert.False(t, ok)
}

func TestAsk_InvalidBody(t *testing.T) {
	srv := setupServer(t, &mockCompleter{}, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCredential_Lifecycle(t *testing.T) {
	store := &mockCredentialStore{}
	srv := setupServer(t, &mockCompleter{}, store)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/credential", "", nil)
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())

	rec = doRequest(t, srv, http.MethodPut, "/api/v1/credential", `{"api_key":"key123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"configured":true}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "key123")

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/credential", "", nil)
	assert.JSONEq(t, `{"configured":true}`, rec.Body.String())

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/credential", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, ok, _ := store.Load(context.Background())
	assert.False(t, ok)
}

func TestCredential_PutWhitespaceClears(t *testing.T) {
	store := &mockCredentialStore{value: "key123", set: true}
	srv := setupServer(t, &mockCompleter{}, store)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/credential", `{"api_key":"  "}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())
}

func TestCredential_StoreFailure(t *testing.T) {
	store := &mockCredentialStore{}
	srv := setupServer(t, &mockCompleter{}, store)
	store.err = errors.New("disk full")

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/credential", `{"api_key":"k"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, &mockCompleter{}, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestMetrics_ExposesSubmissionCounter(t *testing.T) {
	srv := setupServer(t, &mockCompleter{raw: sampleRaw()}, &mockCredentialStore{})

	doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"question":"q"}`, map[string]string{"api-key": "k"})
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `oncoassist_submissions_total{outcome="success"} 1`)
}

func TestRequestID_PropagatesCallerValue(t *testing.T) {
	srv := setupServer(t, &mockCompleter{}, &mockCredentialStore{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", map[string]string{"X-Request-ID": "abc-123"})

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	srv := httphandler.ApplyMiddleware(mux, discardLogger())

	rec := doRequest(t, srv, http.MethodGet, "/boom", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
