// Package service содержит планировщик запусков.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"monthlymix/internal/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrRunInProgress возвращается, если запуск уже выполняется
var ErrRunInProgress = errors.New("a run is already in progress")

// ExclusiveRunner допускает не более одного запуска одновременно
type ExclusiveRunner struct {
	mixtape *Mixtape
	mu      sync.Mutex
}

// NewExclusiveRunner оборачивает оркестратор
func NewExclusiveRunner(mixtape *Mixtape) *ExclusiveRunner {
	return &ExclusiveRunner{mixtape: mixtape}
}

// TryRun запускает сборку или возвращает ErrRunInProgress
func (r *ExclusiveRunner) TryRun(ctx context.Context, trigger model.TriggerType) (*model.Report, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	return r.mixtape.Run(ctx, trigger), nil
}

// Scheduler запускает сборку по расписанию cron в UTC
type Scheduler struct {
	runner  Runner
	spec    string
	cron    *cron.Cron
	entry   cron.EntryID
	logger  *zap.Logger
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler создает новый планировщик
func NewScheduler(runner Runner, spec string, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cronLog := cronLogger{logger: logger}

	return &Scheduler{
		runner: runner,
		spec:   spec,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	id, err := s.cron.AddFunc(s.spec, s.execute)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	s.entry = id

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("cron_expression", s.spec),
		zap.Time("next_run", s.cron.Entry(id).Next))

	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping scheduler")

	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) execute() {
	s.logger.Info("Executing scheduled run")

	report, err := s.runner.TryRun(s.ctx, model.TriggerSchedule)
	if err != nil {
		s.logger.Warn("Scheduled run skipped", zap.Error(err))
		return
	}
	if !report.Success {
		s.logger.Error("Scheduled run failed",
			zap.String("run_id", report.RunID),
			zap.String("message", report.Message))
	}
}

// NextRun возвращает время следующего запуска
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// GetStatus возвращает статус планировщика
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]interface{}{
		"running":         s.running,
		"cron_expression": s.spec,
	}
	if s.running {
		entry := s.cron.Entry(s.entry)
		status["next_run"] = entry.Next
		status["prev_run"] = entry.Prev
	}
	return status
}

// cronLogger направляет журнал cron в zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, zapFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(zapFields(keysAndValues), zap.Error(err))...)
}

func zapFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
