package httphandlers

import (
	"go.uber.org/zap"
	"net/http"
	"warden/internal/manager"
	"warden/internal/types"
)

type (
	ApiHandler struct {
		mn     manager.Manager
		logger *zap.Logger
	}
)

func NewApiHandler(mn manager.Manager, l *zap.Logger) *ApiHandler {
	return &ApiHandler{mn: mn, logger: l}
}

func (handler *ApiHandler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	result := handler.mn.TriggerBackup(r.Context(), tokenOf(r))
	handler.logResult("backup", result)
	writeTrigger(w, result)
}

func (handler *ApiHandler) TriggerSmokeTest(w http.ResponseWriter, r *http.Request) {
	result := handler.mn.TriggerSmokeTest(r.Context(), tokenOf(r))
	handler.logResult("smoke_test", result)
	writeTrigger(w, result)
}

func (handler *ApiHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := handler.mn.Status(r.Context(), tokenOf(r))
	if err != nil {
		writeError(w, statusCode(types.KindOf(err)), err)
		return
	}

	ok(w, "success", st)
}

func (handler *ApiHandler) Health(w http.ResponseWriter, r *http.Request) {
	health, err := handler.mn.Health(r.Context())
	if err != nil {
		handler.logger.Error("failed to read backup status", zap.Error(err))
		serverError(w, err)
		return
	}

	if health.Status == manager.HealthOK {
		ok(w, health.Status, health)
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, response{Error: true, Message: health.Status, Data: health})
}

func (handler *ApiHandler) logResult(pipeline string, result types.TriggerResult) {
	lg := handler.logger.With(
		zap.String("pipeline", pipeline),
		zap.String("correlationId", result.CorrelationID))
	if result.Success {
		lg.Info("manual trigger completed", zap.String("path", result.Path))
		return
	}
	lg.Warn("manual trigger failed",
		zap.String("errorCode", result.ErrorCode),
		zap.String("error", result.Error))
}
