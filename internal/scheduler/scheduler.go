// Package scheduler fires the pipelines on their cron schedules. Runs are
// single shot: an overlapping trigger is rescheduled and a failed run is never
// retried.
package scheduler

import (
	"context"
	"fmt"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"time"
	"warden/logger"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already scheduled")
)

type (
	Scheduler interface {
		Schedule(ctx context.Context, j Job) error
		NextRun(name string) (time.Time, error)
		Start()
		Shutdown() error
	}

	Pipeline func(ctx context.Context) error

	Job struct {
		Name       string
		Expression string
		Run        Pipeline
	}

	scheduler struct {
		cron gocron.Scheduler
	}
)

func New(location *time.Location) (Scheduler, error) {
	if location == nil {
		location = time.UTC
	}
	// cron specs carry the zone by name, so it must be resolvable
	if _, err := time.LoadLocation(location.String()); err != nil {
		return nil, errors.Wrap(err, "unsupported scheduler location")
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scheduler")
	}
	return &scheduler{cron: s}, nil
}

func (s *scheduler) Schedule(ctx context.Context, j Job) error {
	if err := ParseExpression(j.Expression); err != nil {
		return err
	}

	if _, ok := s.find(j.Name); ok {
		return errors.Wrap(ErrDuplicateJob, j.Name)
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(j.Expression, false),
		gocron.NewTask(s.run, ctx, j),
		gocron.WithName(j.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, err error) {
				logger.Error("scheduled run failed",
					zap.String("job", name),
					zap.Error(err))
			}),
		))
	if err != nil {
		return errors.Wrapf(err, "failed to schedule %s", j.Name)
	}

	logger.Info("job queued",
		zap.String("name", job.Name()),
		zap.String("expression", j.Expression))
	return nil
}

func (s *scheduler) run(ctx context.Context, j Job) error {
	logger.Info("scheduled run starting", zap.String("job", j.Name))
	return j.Run(ctx)
}

func (s *scheduler) NextRun(name string) (time.Time, error) {
	job, ok := s.find(name)
	if !ok {
		return time.Time{}, errors.Wrap(ErrJobNotFound, name)
	}
	return job.NextRun()
}

func (s *scheduler) find(name string) (gocron.Job, bool) {
	return lo.Find(s.cron.Jobs(), func(item gocron.Job) bool {
		return item.Name() == name
	})
}

func (s *scheduler) Start() {
	s.cron.Start()
}

func (s *scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

// ParseExpression accepts standard five field cron expressions.
func ParseExpression(cronExpression string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(cronExpression)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
