package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProbe(t *testing.T, rec *httptest.ResponseRecorder) (status string, checks map[string]string) {
	t.Helper()
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Status, body.Checks
}

func TestService_ReadyGate(t *testing.T) {
	s := New()
	defer s.Stop()
	s.Start(context.Background(), time.Minute)

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestService_FailingReadinessCheck(t *testing.T) {
	s := New()
	s.AddReadinessCheck("store", time.Second, func(context.Context) error {
		return errors.New("store down")
	})
	s.Start(context.Background(), time.Minute)
	defer s.Stop()
	s.SetReady(true)

	// Start runs all checks once before returning control to the ticker;
	// give the goroutine a moment to record results.
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code == http.StatusServiceUnavailable
	}, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	_, checks := decodeProbe(t, rec)
	assert.Equal(t, "store down", checks["store"])
}

func TestService_LivenessIndependentOfReadyGate(t *testing.T) {
	s := New()
	s.AddLivenessCheck("noop", time.Second, func(context.Context) error { return nil })
	s.Start(context.Background(), time.Minute)
	defer s.Stop()

	rec := httptest.NewRecorder()
	s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	status, _ := decodeProbe(t, rec)
	assert.Equal(t, "ok", status)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestEndpointCheck(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	assert.NoError(t, EndpointCheck(up.Client(), up.URL)(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	assert.Error(t, EndpointCheck(broken.Client(), broken.URL)(context.Background()))

	// 4xx still counts as reachable.
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()
	assert.NoError(t, EndpointCheck(notFound.Client(), notFound.URL)(context.Background()))
}
