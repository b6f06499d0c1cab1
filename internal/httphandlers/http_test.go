package httphandlers

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"net/http"
	"net/http/httptest"
	"testing"
	"warden/internal/manager"
	"warden/internal/types"
)

type fakeManager struct {
	token  string
	result types.TriggerResult
	health *types.Health
	status *types.BackupStatus
	err    error
}

func (f *fakeManager) TriggerBackup(ctx context.Context, token string) types.TriggerResult {
	f.token = token
	return f.result
}

func (f *fakeManager) TriggerSmokeTest(ctx context.Context, token string) types.TriggerResult {
	f.token = token
	return f.result
}

func (f *fakeManager) Status(ctx context.Context, token string) (*types.BackupStatus, error) {
	f.token = token
	return f.status, f.err
}

func (f *fakeManager) Health(ctx context.Context) (*types.Health, error) {
	return f.health, f.err
}

func serve(t *testing.T, mn manager.Manager, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	Routes(NewApiHandler(mn, zap.NewNop())).ServeHTTP(w, r)
	return w
}

func TestTriggerRoutes(t *testing.T) {
	tests := []struct {
		name   string
		target string
		result types.TriggerResult
		code   int
	}{
		{
			name:   "backup accepted",
			target: "/v1/backups",
			result: types.TriggerResult{Success: true, CorrelationID: "bkp_1_abcd1234", Path: "s3://backups/2026-10-14"},
			code:   http.StatusOK,
		},
		{
			name:   "unauthenticated",
			target: "/v1/backups",
			result: types.TriggerResult{CorrelationID: "bkp_1_abcd1234", Error: "unauthenticated", ErrorCode: "unauthenticated"},
			code:   http.StatusUnauthorized,
		},
		{
			name:   "not an admin",
			target: "/v1/smoke-tests",
			result: types.TriggerResult{CorrelationID: "smoke_1_abcd1234", Error: "permission-denied", ErrorCode: "permission-denied"},
			code:   http.StatusForbidden,
		},
		{
			name:   "pipeline failure",
			target: "/v1/smoke-tests",
			result: types.TriggerResult{CorrelationID: "smoke_1_abcd1234", Error: "no-backup [smoke_1_abcd1234]", ErrorCode: "no-backup"},
			code:   http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mn := &fakeManager{result: test.result}
			w := serve(t, mn, http.MethodPost, test.target, map[string]string{"Authorization": "Bearer abc.def"})

			assert.Equal(t, test.code, w.Code)
			assert.Equal(t, "abc.def", mn.token)

			var got types.TriggerResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, test.result, got)
		})
	}
}

func TestTriggerRoutes_AccessTokenHeader(t *testing.T) {
	mn := &fakeManager{result: types.TriggerResult{Success: true}}
	serve(t, mn, http.MethodPost, "/v1/backups", map[string]string{authorizationHeader: "legacy"})
	assert.Equal(t, "legacy", mn.token)
}

func TestStatusRoute(t *testing.T) {
	path := "s3://backups/2026-10-14"
	mn := &fakeManager{status: &types.BackupStatus{LastBackupStatus: types.StatusSuccess, LastBackupPath: &path}}
	w := serve(t, mn, http.MethodGet, "/v1/status", map[string]string{"Authorization": "Bearer abc"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Error bool               `json:"error"`
		Data  types.BackupStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Error)
	require.NotNil(t, body.Data.LastBackupPath)
	assert.Equal(t, path, *body.Data.LastBackupPath)

	mn = &fakeManager{err: types.NewPipelineError(types.KindPermissionDenied, "req_1_abcd1234", nil)}
	w = serve(t, mn, http.MethodGet, "/v1/status", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthRoute(t *testing.T) {
	w := serve(t, &fakeManager{health: &types.Health{Status: manager.HealthOK}}, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, &fakeManager{health: &types.Health{Status: manager.HealthStale}}, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"stale"`)
}

func TestAuxiliaryRoutes(t *testing.T) {
	w := serve(t, &fakeManager{}, http.MethodGet, "/v1/h", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, &fakeManager{}, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
