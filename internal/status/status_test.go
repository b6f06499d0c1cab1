package status

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
	"warden/internal/database"
	"warden/internal/database/databasetest"
	"warden/internal/docstore"
	"warden/internal/types"
)

func newReporter(t *testing.T) Reporter {
	return NewReporter(docstore.New(database.NewDocumentRepository(databasetest.Open(t))))
}

func TestReporter_GetEmpty(t *testing.T) {
	r := newReporter(t)
	require.NoError(t, r.Ensure(context.Background()))

	st, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.LastBackupPath)
	assert.Empty(t, st.LastBackupStatus)
}

func TestReporter_BackupSuccessThenFailure(t *testing.T) {
	ctx := context.Background()
	r := newReporter(t)
	at := time.Date(2026, 10, 14, 2, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordBackup(ctx, types.BackupOutcome{
		At:            at,
		Status:        types.StatusSuccess,
		Path:          "s3://backups/2026-10-14",
		CorrelationID: "bkp_1_a",
	}))

	st, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, st.LastBackupStatus)
	require.NotNil(t, st.LastBackupPath)
	assert.Equal(t, "s3://backups/2026-10-14", *st.LastBackupPath)
	assert.Nil(t, st.LastBackupError)
	assert.Equal(t, "bkp_1_a", st.BackupCorrelationID)
	assert.True(t, at.Equal(*st.LastBackupTimestamp))

	require.NoError(t, r.RecordBackup(ctx, types.BackupOutcome{
		At:            at.Add(24 * time.Hour),
		Status:        types.StatusFailed,
		Error:         "export-failed [bkp_2_b]: quota exceeded",
		CorrelationID: "bkp_2_b",
	}))

	st, err = r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, st.LastBackupStatus)
	require.NotNil(t, st.LastBackupError)
	assert.Contains(t, *st.LastBackupError, "bkp_2_b")
	require.NotNil(t, st.LastBackupPath, "failed run keeps the last good path")
	assert.Equal(t, "s3://backups/2026-10-14", *st.LastBackupPath)

	require.NoError(t, r.RecordBackup(ctx, types.BackupOutcome{
		At:            at.Add(48 * time.Hour),
		Status:        types.StatusSuccess,
		Path:          "s3://backups/2026-10-16",
		CorrelationID: "bkp_3_c",
	}))
	st, err = r.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.LastBackupError, "success clears the previous error")
}

func TestReporter_FieldFamiliesAreIndependent(t *testing.T) {
	ctx := context.Background()
	r := newReporter(t)

	require.NoError(t, r.RecordSmokeTest(ctx, types.SmokeTestOutcome{
		Status:        types.StatusFailed,
		Error:         "no-backup [smoke_1_a]",
		CorrelationID: "smoke_1_a",
	}))
	require.NoError(t, r.RecordBackup(ctx, types.BackupOutcome{
		Status:        types.StatusSuccess,
		Path:          "file:///backups/2026-10-14",
		CorrelationID: "bkp_1_a",
	}))

	st, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, st.LastSmokeTestStatus)
	assert.Equal(t, "smoke_1_a", st.SmokeTestCorrelationID)
	require.NotNil(t, st.LastSmokeTestError)

	require.NoError(t, r.RecordSmokeTest(ctx, types.SmokeTestOutcome{
		Status:        types.StatusSuccess,
		CorrelationID: "smoke_2_b",
	}))

	st, err = r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, st.LastBackupStatus)
	assert.Equal(t, "bkp_1_a", st.BackupCorrelationID)
	assert.Equal(t, types.StatusSuccess, st.LastSmokeTestStatus)
	assert.Nil(t, st.LastSmokeTestError)
}
