package cronrunner

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules a named job. A job still running when its next tick
// fires is skipped, not stacked.
func (r *Runner) Add(name, spec string, job func(context.Context) error) (cron.EntryID, error) {
	var running int32
	return r.cron.AddFunc(spec, func() {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			if r.logger != nil {
				r.logger.Warn("cron job still running, skipping tick", zap.String("job", name))
			}
			return
		}
		defer atomic.StoreInt32(&running, 0)

		ctx := r.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := job(ctx); err != nil {
			if r.logger != nil {
				r.logger.Error("cron job failed", zap.String("job", name), zap.Error(err))
			}
			return
		}
		if r.logger != nil {
			r.logger.Debug("cron job finished", zap.String("job", name))
		}
	})
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
