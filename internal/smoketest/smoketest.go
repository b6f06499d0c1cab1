// Package smoketest proves the latest backup is restorable by importing it into
// an isolated document store and checking that it carries recognisable data.
package smoketest

import (
	"context"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"path"
	"time"
	"warden/internal/docstore"
	"warden/internal/metrics"
	"warden/internal/misc"
	"warden/internal/status"
	"warden/internal/storage"
	"warden/internal/types"
)

const (
	statusWriteTimeout = 30 * time.Second
	cleanupTimeout     = 2 * time.Minute
)

var (
	errNoBackup     = errors.New("no backup to test: the status record has no backup path")
	errSignalsEmpty = errors.New("restored data has neither the heartbeat marker nor any user document")
)

type (
	Verifier interface {
		Run(ctx context.Context) (*types.SmokeTestResult, error)
	}

	Options struct {
		Timeout     time.Duration
		CleanupSize int
		Now         func() time.Time
	}

	verifier struct {
		reporter status.Reporter
		isolated docstore.Store
		storage  storage.Storage
		logger   *zap.Logger
		opts     Options
	}
)

// NewVerifier builds a verifier that restores into isolated. isolated must
// never be the production store since it is emptied after every run.
func NewVerifier(reporter status.Reporter, isolated docstore.Store, st storage.Storage,
	l *zap.Logger, opts Options) Verifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 9 * time.Minute
	}
	if opts.CleanupSize <= 0 {
		opts.CleanupSize = 400
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &verifier{
		reporter: reporter,
		isolated: isolated,
		storage:  st,
		logger:   l,
		opts:     opts,
	}
}

func (v *verifier) Run(ctx context.Context) (*types.SmokeTestResult, error) {
	started := v.opts.Now()
	cid := misc.NewCorrelationID(misc.SmokeTestPrefix, started)
	lg := v.logger.With(zap.String("correlationId", cid))
	outcome := types.StatusFailed
	defer func() {
		metrics.ObserveRun(metrics.PipelineSmokeTest, outcome, started)
	}()

	lg.Info("starting smoke test")
	runCtx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	result, err := v.verify(runCtx, cid, lg)
	if err != nil {
		lg.Error("smoke test failed", zap.Error(err))
		v.record(ctx, lg, types.SmokeTestOutcome{
			At:            v.opts.Now().UTC(),
			Status:        types.StatusFailed,
			Error:         err.Error(),
			CorrelationID: cid,
		})
		return nil, err
	}

	result.Cleanup = v.cleanup(ctx, lg)
	outcome = types.StatusSuccess
	lg.Info("smoke test passed",
		zap.String("path", result.Path),
		zap.Bool("heartbeat", result.Signals.HeartbeatFound),
		zap.Bool("users", result.Signals.UsersFound))

	err = v.record(ctx, lg, types.SmokeTestOutcome{
		At:            v.opts.Now().UTC(),
		Status:        types.StatusSuccess,
		CorrelationID: cid,
	})
	if err != nil {
		return nil, types.NewPipelineError(types.KindInternal, cid, err)
	}
	return result, nil
}

func (v *verifier) verify(ctx context.Context, cid string, lg *zap.Logger) (*types.SmokeTestResult, error) {
	current, err := v.reporter.Get(ctx)
	if err != nil {
		return nil, types.NewPipelineError(types.KindInternal, cid, err)
	}
	if current.LastBackupPath == nil || *current.LastBackupPath == "" {
		return nil, types.NewPipelineError(types.KindNoBackup, cid, errNoBackup)
	}

	location := *current.LastBackupPath
	key, err := v.storage.Resolve(location)
	if err != nil {
		return nil, types.NewPipelineError(types.KindImport, cid, err)
	}

	lg.Info("importing backup", zap.String("path", location))
	op, err := v.isolated.Import(ctx, v.storage, path.Join(key, types.ExportDir))
	if err != nil {
		return nil, types.NewPipelineError(types.KindImport, cid, err)
	}
	if err := op.Wait(ctx); err != nil {
		return nil, types.NewPipelineError(types.KindImport, cid, err)
	}

	signals, err := v.signals(ctx)
	if err != nil {
		return nil, types.NewPipelineError(types.KindVerification, cid, err)
	}
	if !signals.Passed() {
		return nil, types.NewPipelineError(types.KindVerification, cid, errSignalsEmpty)
	}

	return &types.SmokeTestResult{
		CorrelationID: cid,
		Path:          location,
		Signals:       signals,
	}, nil
}

func (v *verifier) signals(ctx context.Context) (types.Signals, error) {
	var signals types.Signals

	_, err := v.isolated.Get(ctx, types.HeartbeatCollection, types.HeartbeatDocumentID)
	switch {
	case err == nil:
		signals.HeartbeatFound = true
	case !errors.Is(err, docstore.ErrNotFound):
		return signals, err
	}

	users, err := v.isolated.List(ctx, types.UsersCollection, 1)
	if err != nil {
		return signals, err
	}
	signals.UsersFound = len(users) > 0
	return signals, nil
}

// cleanup empties every top level collection of the isolated store. It never
// fails the run; problems are reported through the result warning.
func (v *verifier) cleanup(ctx context.Context, lg *zap.Logger) types.CleanupResult {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	var result types.CleanupResult
	collections, err := v.isolated.Collections(ctx)
	if err != nil {
		result.Warning = errors.Wrap(err, "failed to list restored collections")
		v.warn(lg, result)
		return result
	}

	for _, collection := range collections {
		for {
			n, err := v.isolated.DeleteBatch(ctx, collection, v.opts.CleanupSize)
			result.Deleted += n
			if err != nil {
				result.Warning = errors.Wrapf(err, "failed to clean up %s", collection)
				v.warn(lg, result)
				return result
			}
			if n < v.opts.CleanupSize {
				break
			}
		}
		result.Collections++
	}

	lg.Info("isolated environment cleaned up",
		zap.Int("collections", result.Collections),
		zap.Int("deleted", result.Deleted))
	return result
}

func (v *verifier) warn(lg *zap.Logger, result types.CleanupResult) {
	metrics.CleanupWarnings.Inc()
	lg.Warn("smoke test cleanup incomplete",
		zap.Int("collections", result.Collections),
		zap.Int("deleted", result.Deleted),
		zap.Error(result.Warning))
}

func (v *verifier) record(ctx context.Context, lg *zap.Logger, outcome types.SmokeTestOutcome) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	err := v.reporter.RecordSmokeTest(ctx, outcome)
	if err != nil {
		lg.Error("failed to record smoke test status", zap.Error(err))
	}
	return err
}
