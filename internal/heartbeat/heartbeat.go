// Package heartbeat emits the structured log line a log based liveness alert
// watches for. The alert fires when no line carrying Marker shows up for a
// fixed window, which is how a run that never happened is told apart from a
// run that failed.
package heartbeat

import (
	"go.uber.org/zap"
	"warden/internal/types"
)

const Marker = "BACKUP_HEARTBEAT"

type Beat struct {
	CorrelationID string
	Path          *string
	Outcome       types.RunStatus
}

func Emit(l *zap.Logger, b Beat) {
	fields := []zap.Field{
		zap.String("marker", Marker),
		zap.String("correlationId", b.CorrelationID),
		zap.Stringp("path", b.Path),
		zap.String("outcome", string(b.Outcome)),
	}

	if b.Outcome == types.StatusSuccess {
		l.Info(Marker, fields...)
		return
	}
	l.Error(Marker, fields...)
}
