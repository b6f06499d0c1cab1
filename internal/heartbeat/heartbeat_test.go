package heartbeat

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
	"warden/internal/types"
)

func TestEmit(t *testing.T) {
	path := "s3://backups/2026-10-14"
	tests := []struct {
		name      string
		beat      Beat
		level     zapcore.Level
		wantPath  interface{}
		wantState string
	}{
		{
			name:      "success",
			beat:      Beat{CorrelationID: "bkp_1_a", Path: &path, Outcome: types.StatusSuccess},
			level:     zapcore.InfoLevel,
			wantPath:  path,
			wantState: "SUCCESS",
		},
		{
			name:      "failure without path",
			beat:      Beat{CorrelationID: "bkp_2_b", Outcome: types.StatusFailed},
			level:     zapcore.ErrorLevel,
			wantPath:  nil,
			wantState: "FAILED",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			Emit(zap.New(core), test.beat)

			entries := logs.FilterMessage(Marker).All()
			require.Len(t, entries, 1)
			assert.Equal(t, test.level, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, Marker, fields["marker"])
			assert.Equal(t, test.beat.CorrelationID, fields["correlationId"])
			assert.Equal(t, test.wantPath, fields["path"])
			assert.Equal(t, test.wantState, fields["outcome"])
		})
	}
}
