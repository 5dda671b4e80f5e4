package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the periodic events digest.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	digestFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetDigestFunction sets the function that builds and broadcasts the
// events digest.
func (s *Scheduler) SetDigestFunction(f func(ctx context.Context) error) {
	s.digestFunc = f
}

// Start registers the digest job under the given cron spec (UTC) and
// starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if s.digestFunc == nil {
		logrus.Warn("digest function not set, scheduler will not broadcast digests")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		logrus.WithField("spec", spec).Info("triggered events digest broadcast")
		if err := s.digestFunc(s.ctx); err != nil {
			logrus.WithError(err).Error("events digest broadcast failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.WithField("spec", spec).Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	logrus.Info("scheduler stopped")
}

// IsRunning reports whether any job is registered and running.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
