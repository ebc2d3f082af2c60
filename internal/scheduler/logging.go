package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/rechargemock/internal/observability/context"
	obslogger "github.com/smallbiznis/rechargemock/internal/observability/logger"
	obstracing "github.com/smallbiznis/rechargemock/internal/observability/tracing"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type taskRun struct {
	task      string
	runID     string
	startedAt time.Time
	panicked  bool
	span      trace.Span
}

func (s *Scheduler) startRun(ctx context.Context, id snowflake.ID, name string) (context.Context, *taskRun) {
	run := &taskRun{
		task:      name,
		runID:     id.String(),
		startedAt: time.Now(),
	}
	ctx, run.span = obstracing.StartTask(s.withLogContext(ctx), name, run.runID)
	return ctx, run
}

func (s *Scheduler) withLogContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return obscontext.WithActor(ctx, "system", "scheduler")
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logRunStart(ctx context.Context, run *taskRun) {
	if run == nil {
		return
	}
	s.logger(ctx).Debug("scheduler.task.start",
		zap.String("task", run.task),
		zap.String("run_id", run.runID),
	)
}

func (s *Scheduler) logRunFinish(ctx context.Context, run *taskRun) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.String("task", run.task),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
	}
	defer run.span.End()
	log := s.logger(ctx)
	if run.panicked {
		log.Warn("scheduler.task.finish", fields...)
		return
	}
	log.Debug("scheduler.task.finish", fields...)
}

func (s *Scheduler) logRunPanic(ctx context.Context, run *taskRun, recovered any) {
	if run == nil {
		return
	}
	run.panicked = true
	run.span.SetStatus(codes.Error, "task panicked")
	s.logger(ctx).Error("scheduler.task.panic",
		zap.String("task", run.task),
		zap.String("run_id", run.runID),
		zap.String("error", fmt.Sprint(recovered)),
		zap.Stack("stack"),
	)
}
