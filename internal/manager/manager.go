package manager

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"time"
	"warden/internal/auth"
	"warden/internal/backup"
	"warden/internal/docstore"
	"warden/internal/metrics"
	"warden/internal/misc"
	"warden/internal/smoketest"
	"warden/internal/status"
	"warden/internal/types"
)

const (
	HealthOK      = "ok"
	HealthStale   = "stale"
	HealthFailing = "failing"
)

var (
	errNotAdmin = errors.New("caller is not an administrator")
)

type (
	// Manager is the manual trigger gateway. Trigger methods never return an
	// error or panic; failures are reported through the result payload.
	Manager interface {
		TriggerBackup(ctx context.Context, token string) types.TriggerResult
		TriggerSmokeTest(ctx context.Context, token string) types.TriggerResult
		Status(ctx context.Context, token string) (*types.BackupStatus, error)
		Health(ctx context.Context) (*types.Health, error)
	}

	runner func(ctx context.Context) (correlationID, path string, err error)

	manager struct {
		tokens       *auth.TokenManager
		store        docstore.Store
		orchestrator backup.Orchestrator
		verifier     smoketest.Verifier
		reporter     status.Reporter
		logger       *zap.Logger
		staleAfter   time.Duration
		group        singleflight.Group
		now          func() time.Time
	}
)

func New(
	tokens *auth.TokenManager,
	store docstore.Store,
	orchestrator backup.Orchestrator,
	verifier smoketest.Verifier,
	reporter status.Reporter,
	l *zap.Logger,
	staleAfter time.Duration) Manager {
	return &manager{
		tokens:       tokens,
		store:        store,
		orchestrator: orchestrator,
		verifier:     verifier,
		reporter:     reporter,
		logger:       l,
		staleAfter:   staleAfter,
		now:          time.Now,
	}
}

func (m *manager) TriggerBackup(ctx context.Context, token string) types.TriggerResult {
	return m.trigger(ctx, metrics.PipelineBackup, misc.BackupPrefix, token, func(ctx context.Context) (string, string, error) {
		result, err := m.orchestrator.Run(ctx)
		if err != nil {
			return "", "", err
		}
		return result.CorrelationID, result.Path, nil
	})
}

func (m *manager) TriggerSmokeTest(ctx context.Context, token string) types.TriggerResult {
	return m.trigger(ctx, metrics.PipelineSmokeTest, misc.SmokeTestPrefix, token, func(ctx context.Context) (string, string, error) {
		result, err := m.verifier.Run(ctx)
		if err != nil {
			return "", "", err
		}
		return result.CorrelationID, result.Path, nil
	})
}

func (m *manager) Status(ctx context.Context, token string) (*types.BackupStatus, error) {
	if _, err := m.authorize(ctx, misc.RequestPrefix, token); err != nil {
		return nil, err
	}
	return m.reporter.Get(ctx)
}

func (m *manager) Health(ctx context.Context) (*types.Health, error) {
	current, err := m.reporter.Get(ctx)
	if err != nil {
		return nil, err
	}

	health := &types.Health{
		Status:                 HealthOK,
		LastBackupTimestamp:    current.LastBackupTimestamp,
		LastBackupStatus:       current.LastBackupStatus,
		LastSmokeTestTimestamp: current.LastSmokeTestTimestamp,
		LastSmokeTestStatus:    current.LastSmokeTestStatus,
	}

	switch {
	case current.LastBackupTimestamp == nil || m.now().Sub(*current.LastBackupTimestamp) > m.staleAfter:
		health.Status = HealthStale
	case current.LastBackupStatus == types.StatusFailed || current.LastSmokeTestStatus == types.StatusFailed:
		health.Status = HealthFailing
	}
	return health, nil
}

func (m *manager) trigger(ctx context.Context, pipeline, prefix, token string, run runner) (result types.TriggerResult) {
	defer m.recoverInto(pipeline, prefix, &result)

	uid, err := m.authorize(ctx, prefix, token)
	if err != nil {
		metrics.TriggerRejections.WithLabelValues(pipeline, string(types.KindOf(err))).Inc()
		return types.FailedTrigger(err, correlationOf(err))
	}

	m.logger.Info("manual trigger accepted",
		zap.String("pipeline", pipeline),
		zap.String("uid", uid))

	// the run outlives the request; concurrent callers share it
	v, _, shared := m.group.Do(pipeline, func() (interface{}, error) {
		return m.run(context.WithoutCancel(ctx), pipeline, prefix, run), nil
	})
	if shared {
		m.logger.Info("manual trigger joined a running invocation", zap.String("pipeline", pipeline))
	}
	return v.(types.TriggerResult)
}

func (m *manager) run(ctx context.Context, pipeline, prefix string, run runner) (result types.TriggerResult) {
	defer m.recoverInto(pipeline, prefix, &result)

	cid, path, err := run(ctx)
	if err != nil {
		return types.FailedTrigger(err, correlationOf(err))
	}
	return types.TriggerResult{Success: true, CorrelationID: cid, Path: path}
}

func (m *manager) recoverInto(pipeline, prefix string, result *types.TriggerResult) {
	r := recover()
	if r == nil {
		return
	}

	cid := misc.NewCorrelationID(prefix, m.now())
	err := types.NewPipelineError(types.KindInternal, cid, fmt.Errorf("panic: %v", r))
	m.logger.Error("manual trigger panicked",
		zap.String("pipeline", pipeline),
		zap.String("correlationId", cid),
		zap.Any("panic", r))
	*result = types.FailedTrigger(err, cid)
}

// authorize resolves the caller and requires the admin flag on their user
// document. Every rejection gets its own correlation id so it can be found in
// the logs.
func (m *manager) authorize(ctx context.Context, prefix, token string) (string, error) {
	cid := misc.NewCorrelationID(prefix, m.now())

	subject, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Warn("manual trigger rejected",
			zap.String("correlationId", cid),
			zap.String("reason", string(types.KindUnauthenticated)),
			zap.Error(err))
		return "", types.NewPipelineError(types.KindUnauthenticated, cid, err)
	}

	admin, err := m.isAdmin(ctx, subject.UID)
	if err != nil {
		m.logger.Error("failed to read caller profile",
			zap.String("correlationId", cid),
			zap.String("uid", subject.UID),
			zap.Error(err))
		return "", types.NewPipelineError(types.KindInternal, cid, err)
	}
	if !admin {
		m.logger.Warn("manual trigger rejected",
			zap.String("correlationId", cid),
			zap.String("reason", string(types.KindPermissionDenied)),
			zap.String("uid", subject.UID))
		return "", types.NewPipelineError(types.KindPermissionDenied, cid, errNotAdmin)
	}
	return subject.UID, nil
}

func (m *manager) isAdmin(ctx context.Context, uid string) (bool, error) {
	doc, err := m.store.Get(ctx, types.UsersCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var profile struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := doc.Decode(&profile); err != nil {
		return false, errors.Wrapf(err, "corrupt profile for user %s", uid)
	}
	return profile.IsAdmin, nil
}

func correlationOf(err error) string {
	var pe *types.PipelineError
	if errors.As(err, &pe) {
		return pe.CorrelationID
	}
	return ""
}
