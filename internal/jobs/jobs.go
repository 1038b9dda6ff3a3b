// Package jobs runs scheduled maintenance tasks.
package jobs

import (
	"context"
	"time"

	"gadgetstore/internal/repositories"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const purgeTimeout = time.Minute

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler owns the cron instance and the tasks registered on it.
type Scheduler struct {
	sched *cron.Cron
	users repositories.UserRepository
	log   *zap.Logger
	now   func() time.Time
}

// New registers the reset-token purge under purgeSpec. The scheduler is
// not started.
func New(users repositories.UserRepository, purgeSpec string, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		sched: cron.New(cron.WithParser(cronParser)),
		users: users,
		log:   log.Named("jobs"),
		now:   time.Now,
	}
	if _, err := s.sched.AddFunc(purgeSpec, s.runPurge); err != nil {
		return nil, errors.Wrapf(err, "schedule reset token purge %q", purgeSpec)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop halts the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// PurgeExpiredResetTokens clears reset tokens whose expiry has passed.
func (s *Scheduler) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.users.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		return 0, errors.Wrap(err, "clear expired reset tokens")
	}
	if n > 0 {
		s.log.Info("expired reset tokens purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *Scheduler) runPurge() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("reset token purge panicked", zap.Any("panic", err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	if _, err := s.PurgeExpiredResetTokens(ctx); err != nil {
		s.log.Error("reset token purge failed", zap.Error(err))
	}
}
