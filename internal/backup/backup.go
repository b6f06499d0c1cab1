// Package backup produces one full snapshot of the document store and the
// identity directory per invocation.
package backup

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"path"
	"time"
	"warden/internal/directory"
	"warden/internal/docstore"
	"warden/internal/heartbeat"
	"warden/internal/metrics"
	"warden/internal/misc"
	"warden/internal/status"
	"warden/internal/storage"
	"warden/internal/types"
)

const (
	statusWriteTimeout = 30 * time.Second
)

var (
	ErrArtifactExists = errors.New("backup folder already written")
)

type (
	Orchestrator interface {
		Run(ctx context.Context) (*types.BackupResult, error)
	}

	Options struct {
		// Location is the timezone backup folders are named in
		Location *time.Location
		// Timeout caps the whole invocation, export included
		Timeout  time.Duration
		PageSize int
		Now      func() time.Time
	}

	orchestrator struct {
		store     docstore.Store
		directory directory.Directory
		storage   storage.Storage
		reporter  status.Reporter
		logger    *zap.Logger
		opts      Options
	}
)

func NewOrchestrator(store docstore.Store, dir directory.Directory, st storage.Storage,
	reporter status.Reporter, l *zap.Logger, opts Options) Orchestrator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 9 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = directory.MaxPageSize
	}
	opts.PageSize = lo.Clamp(opts.PageSize, 1, directory.MaxPageSize)

	return &orchestrator{
		store:     store,
		directory: dir,
		storage:   st,
		reporter:  reporter,
		logger:    l,
		opts:      opts,
	}
}

func (o *orchestrator) Run(ctx context.Context) (*types.BackupResult, error) {
	started := o.opts.Now()
	cid := misc.NewCorrelationID(misc.BackupPrefix, started)
	folder := Folder(started.In(o.opts.Location))
	destination := o.storage.Location(folder)
	lg := o.logger.With(
		zap.String("correlationId", cid),
		zap.String("destination", destination))

	beat := heartbeat.Beat{CorrelationID: cid, Outcome: types.StatusFailed}
	defer func() {
		heartbeat.Emit(o.logger, beat)
		metrics.ObserveRun(metrics.PipelineBackup, beat.Outcome, started)
	}()

	lg.Info("starting backup")
	runCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	count, err := o.snapshot(runCtx, cid, folder, lg)
	if err != nil {
		lg.Error("backup failed", zap.Error(err))
		o.record(ctx, lg, types.BackupOutcome{
			At:            o.opts.Now().UTC(),
			Status:        types.StatusFailed,
			Error:         err.Error(),
			CorrelationID: cid,
		})
		return nil, err
	}

	beat.Outcome = types.StatusSuccess
	beat.Path = &destination
	metrics.BackupDirectoryUsers.Set(float64(count))
	lg.Info("backup completed", zap.Int("users", count))

	err = o.record(ctx, lg, types.BackupOutcome{
		At:            o.opts.Now().UTC(),
		Status:        types.StatusSuccess,
		Path:          destination,
		CorrelationID: cid,
	})
	if err != nil {
		return nil, types.NewPipelineError(types.KindInternal, cid, err)
	}

	return &types.BackupResult{
		CorrelationID: cid,
		Path:          destination,
		UserCount:     count,
	}, nil
}

// snapshot runs export, directory listing and snapshot write strictly in
// that order.
func (o *orchestrator) snapshot(ctx context.Context, cid, folder string, lg *zap.Logger) (int, error) {
	if err := o.ensureUnwritten(ctx, folder); err != nil {
		return 0, types.NewPipelineError(types.KindExport, cid, err)
	}

	marker := types.Heartbeat{LastExportAt: o.opts.Now().UTC(), CorrelationID: cid}
	if err := o.store.Set(ctx, types.HeartbeatCollection, types.HeartbeatDocumentID, marker); err != nil {
		return 0, types.NewPipelineError(types.KindExport, cid, errors.Wrap(err, "failed to touch heartbeat marker"))
	}

	op, err := o.store.Export(ctx, o.storage, path.Join(folder, types.ExportDir))
	if err != nil {
		return 0, types.NewPipelineError(types.KindExport, cid, err)
	}

	lg.Info("database export started", zap.String("operation", op.Name()))
	if err := op.Wait(ctx); err != nil {
		return 0, types.NewPipelineError(types.KindExport, cid, err)
	}

	users, err := o.collectUsers(ctx)
	if err != nil {
		return 0, types.NewPipelineError(types.KindDirectoryList, cid, err)
	}

	if err := o.writeUsers(ctx, folder, users); err != nil {
		return 0, types.NewPipelineError(types.KindSnapshotWrite, cid, err)
	}
	return len(users), nil
}

// ensureUnwritten refuses a folder that already holds anything. Artifacts are
// never rewritten, so a second run on the same day fails instead.
func (o *orchestrator) ensureUnwritten(ctx context.Context, folder string) error {
	keys, err := o.storage.List(ctx, folder+"/")
	if err != nil {
		return errors.Wrap(err, "failed to inspect backup folder")
	}
	if len(keys) > 0 {
		return errors.Wrapf(ErrArtifactExists, "%s", o.storage.Location(folder))
	}
	return nil
}

func (o *orchestrator) collectUsers(ctx context.Context) ([]types.AuthUserRecord, error) {
	users := make([]types.AuthUserRecord, 0)
	token := ""
	for {
		page, err := o.directory.ListUsers(ctx, o.opts.PageSize, token)
		if err != nil {
			return nil, err
		}

		for _, u := range page.Users {
			record, err := u.Record()
			if err != nil {
				return nil, err
			}
			users = append(users, record)
		}

		if page.NextPageToken == "" {
			return users, nil
		}
		token = page.NextPageToken
	}
}

func (o *orchestrator) writeUsers(ctx context.Context, folder string, users []types.AuthUserRecord) error {
	content, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode users")
	}

	f := types.NewBytesFile(path.Base(types.UsersFile), "application/json", content)
	return errors.Wrap(o.storage.Save(ctx, path.Join(folder, types.UsersFile), f), "failed to write users snapshot")
}

// record persists the outcome on a context detached from the invocation
// deadline, so a timed out run still gets its FAILED status.
func (o *orchestrator) record(ctx context.Context, lg *zap.Logger, outcome types.BackupOutcome) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	err := o.reporter.RecordBackup(ctx, outcome)
	if err != nil {
		lg.Error("failed to record backup status", zap.Error(err))
	}
	return err
}
