package main

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	"warden/internal/config"
	"warden/internal/types"
	"warden/logger"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	cfg := config.New()
	cfg.DatabasePath = filepath.Join(dir, "warden.db")
	cfg.SmokeTestDatabasePath = filepath.Join(dir, "smoke-test.db")
	cfg.AuthTokenSecret = "0123456789abcdef0123456789abcdef"
	cfg.Storage = types.StorageCredentials{Type: "File", RootDir: filepath.Join(dir, "backups")}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestApp_BackupThenSmokeTest(t *testing.T) {
	require.NoError(t, logger.InitLogger("development"))
	ctx := context.Background()
	cfg := testConfig(t)

	a, err, teardown := setup(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = teardown()
	})

	require.NoError(t, a.grantAdmin(ctx, "uid-admin"))

	tokens, err := newTokenManager(cfg)
	require.NoError(t, err)
	token, err := tokens.Issue("uid-admin")
	require.NoError(t, err)

	backupResult := a.manager.TriggerBackup(ctx, token)
	require.True(t, backupResult.Success, backupResult.Error)

	smokeResult := a.manager.TriggerSmokeTest(ctx, token)
	require.True(t, smokeResult.Success, smokeResult.Error)
	assert.Equal(t, backupResult.Path, smokeResult.Path)

	st, err := a.manager.Status(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, st.LastBackupStatus)
	assert.Equal(t, types.StatusSuccess, st.LastSmokeTestStatus)
	assert.Equal(t, backupResult.CorrelationID, st.BackupCorrelationID)
	assert.Equal(t, smokeResult.CorrelationID, st.SmokeTestCorrelationID)

	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_Schedule(t *testing.T) {
	require.NoError(t, logger.InitLogger("development"))
	cfg := testConfig(t)

	a, err, teardown := setup(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = teardown()
	})

	require.NoError(t, a.schedule(context.Background(), cfg))
	for _, job := range []string{backupJob, smokeTestJob} {
		require.Eventually(t, func() bool {
			next, err := a.scheduler.NextRun(job)
			return err == nil && next.After(time.Now())
		}, time.Second, 10*time.Millisecond)
	}
}
