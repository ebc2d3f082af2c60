package scheduler

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Provide(func(s *Scheduler) Dispatcher { return s }),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, cfg Config, sched *Scheduler) {
	if !cfg.StopOnShutdown {
		return
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pending := sched.Pending()
			cancelled := sched.Stop()
			sched.log.Info("scheduler stopped",
				zap.Int("pending", pending),
				zap.Int("cancelled", cancelled),
			)
			return nil
		},
	})
}
