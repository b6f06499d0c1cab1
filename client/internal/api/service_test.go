package api

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(NewClient(Config{Host: srv.URL, Token: "abc.def"}))
}

func TestService_TriggerBackup(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/backups", r.URL.Path)
		assert.Equal(t, "Bearer abc.def", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"correlationId":"bkp_1_abcd1234","path":"s3://backups/2026-10-14"}`))
	})

	result, err := svc.TriggerBackup(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "bkp_1_abcd1234", result.CorrelationID)
	assert.Equal(t, "s3://backups/2026-10-14", result.Path)
}

func TestService_TriggerFailureKeepsPayload(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/smoke-tests", r.URL.Path)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"correlationId":"smoke_1_abcd1234","error":"permission-denied [smoke_1_abcd1234]","errorCode":"permission-denied"}`))
	})

	result, err := svc.TriggerSmokeTest(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "smoke_1_abcd1234", result.CorrelationID)
	assert.Equal(t, "permission-denied", result.ErrorCode)
}

func TestService_StatusError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":true,"message":"unauthenticated [req_1_abcd1234]: no credentials provided"}`))
	})

	_, err := svc.Status(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Contains(t, statusErr.Message, "no credentials provided")
}

func TestService_HealthStale(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":true,"message":"stale","data":{"status":"stale"}}`))
	})

	health, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale", health.Status)
}
