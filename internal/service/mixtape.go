package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monthlymix/internal/extract"
	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MixtapeOptions настройки конвейера
type MixtapeOptions struct {
	RequestDelay   time.Duration
	BatchPause     time.Duration
	SearchLimit    int
	PlaylistPrefix string
	Extract        extract.Options
}

// Mixtape собирает плейлист месяца из отправленных ссылок.
// Каждый запуск независим, параллельные запуски должен исключать вызывающий.
type Mixtape struct {
	configs   ActiveConfigSource
	links     model.LinkRepository
	sources   []LinkSource
	newAPI    APIFactory
	history   *HistoryService
	notifiers []Notifier
	opts      MixtapeOptions
	now       func() time.Time
	logger    *zap.Logger
}

// NewMixtape создает оркестратор
func NewMixtape(configs ActiveConfigSource, links model.LinkRepository, newAPI APIFactory, history *HistoryService, opts MixtapeOptions, logger *zap.Logger) *Mixtape {
	if opts.PlaylistPrefix == "" {
		opts.PlaylistPrefix = "Community Picks"
	}
	return &Mixtape{
		configs: configs,
		links:   links,
		newAPI:  newAPI,
		history: history,
		opts:    opts,
		now:     time.Now,
		logger:  logger,
	}
}

// AddSource подключает дополнительный источник отправок
func (m *Mixtape) AddSource(source LinkSource) {
	m.sources = append(m.sources, source)
}

// AddNotifier подключает получателя отчетов
func (m *Mixtape) AddNotifier(notifier Notifier) {
	m.notifiers = append(m.notifiers, notifier)
}

// runContext состояние одного запуска
type runContext struct {
	id       string
	trigger  model.TriggerType
	started  time.Time
	month    model.TargetMonth
	cfg      *ActiveConfig
	api      spotify.Interface
	stats    *model.RunStats
	playlist *model.PlaylistRef
	tracks   *model.TrackSet
	logger   *zap.Logger
}

// Run собирает плейлист за предыдущий месяц
func (m *Mixtape) Run(ctx context.Context, trigger model.TriggerType) *model.Report {
	return m.run(ctx, trigger, nil)
}

// RunForMonth собирает плейлист за указанный месяц
func (m *Mixtape) RunForMonth(ctx context.Context, trigger model.TriggerType, month model.TargetMonth) *model.Report {
	return m.run(ctx, trigger, &month)
}

func (m *Mixtape) run(ctx context.Context, trigger model.TriggerType, override *model.TargetMonth) (report *model.Report) {
	rc := &runContext{
		id:      uuid.NewString(),
		trigger: trigger,
		started: m.now(),
		stats:   model.NewRunStats(),
		tracks:  model.NewTrackSet(),
	}
	rc.logger = m.logger.With(zap.String("run_id", rc.id), zap.String("trigger", trigger.String()))
	rc.logger.Info("Starting monthly mix run")

	defer func() {
		if r := recover(); r != nil {
			rc.logger.Error("Run panicked", zap.Any("panic", r), zap.Stack("stack"))
			report = m.finish(ctx, rc, false, fmt.Sprintf("internal error: %v", r))
		}
	}()

	success, message := m.execute(ctx, rc, override)
	return m.finish(ctx, rc, success, message)
}

// execute проходит стадии конвейера по порядку. Ошибка стадии до публикации
// завершает запуск, ошибки отдельных кандидатов только копятся в статистике.
func (m *Mixtape) execute(ctx context.Context, rc *runContext, override *model.TargetMonth) (bool, string) {
	cfg, err := m.configs.GetActiveConfig(ctx)
	if err != nil {
		rc.logger.Error("Failed to load configuration", zap.Error(err))
		return false, err.Error()
	}
	rc.cfg = cfg

	if override != nil {
		rc.month = *override
	} else {
		rc.month = model.ComputeTargetMonth(m.now())
	}
	rc.logger = rc.logger.With(zap.String("month", rc.month.Key))

	rc.api = m.newAPI(cfg.Credentials())
	if err := rc.api.Authenticate(ctx); err != nil {
		rc.logger.Error("Spotify authentication failed", zap.Error(err))
		return false, fmt.Sprintf("spotify authentication failed: %v", err)
	}

	items, err := m.gather(ctx, rc)
	if err != nil {
		return false, fmt.Sprintf("failed to read submitted links: %v", err)
	}
	rc.stats.ItemsScanned = len(items)
	if len(items) == 0 {
		return true, fmt.Sprintf("No submissions for %s", rc.month.Title())
	}

	candidates := extract.BuildAll(items, m.opts.Extract)
	rc.stats.CandidatesExtracted = len(candidates)
	rc.logger.Info("Extracted candidates",
		zap.Int("items", len(items)),
		zap.Int("candidates", len(candidates)))
	if len(candidates) == 0 {
		return true, fmt.Sprintf("No music found in %d submissions for %s", len(items), rc.month.Title())
	}

	if err := m.resolve(ctx, rc, candidates); err != nil {
		return false, fmt.Sprintf("track resolution aborted: %v", err)
	}
	rc.stats.TracksMatched = rc.tracks.Len()
	if rc.tracks.Len() == 0 {
		return true, fmt.Sprintf("No tracks released in %s were found", rc.month.Title())
	}

	publisher := NewPublisher(rc.api, m.opts.BatchPause, rc.logger)

	name := fmt.Sprintf("%s %s", m.opts.PlaylistPrefix, rc.month.Title())
	description := fmt.Sprintf("Tracks released in %s, shared by the community.", rc.month.Title())
	collection, err := publisher.CreateCollection(ctx, cfg.OwnerID, name, description)
	if err != nil {
		rc.logger.Error("Failed to create playlist", zap.Error(err))
		return false, fmt.Sprintf("failed to create playlist: %v", err)
	}
	rc.playlist = &model.PlaylistRef{Name: collection.Name, URL: collection.URL, ID: collection.ID}

	result, err := publisher.AppendTracks(ctx, collection.ID, rc.tracks.URIs())
	rc.stats.TracksAdded = result.Added
	rc.stats.TracksSkippedDuplicate += result.Skipped
	if err != nil {
		return false, fmt.Sprintf("failed to add tracks to %s: %v", collection.Name, err)
	}

	if m.history != nil {
		if err := m.history.RecordPlaylist(ctx, rc.id, rc.month, collection, rc.tracks.Tracks()); err != nil {
			rc.logger.Warn("Failed to record playlist history", zap.Error(err))
			rc.stats.AddError("history: %v", err)
		}
	}

	return true, fmt.Sprintf("Created %s with %d tracks", collection.Name, result.Added)
}

// gather читает отправки месяца из хранилища и дополнительных источников.
// Сбой дополнительного источника не прерывает запуск.
func (m *Mixtape) gather(ctx context.Context, rc *runContext) ([]string, error) {
	items, err := m.links.GetSubmittedLinks(ctx, rc.month.Key)
	if err != nil {
		rc.logger.Error("Failed to read submitted links", zap.Error(err))
		return nil, err
	}

	for _, source := range m.sources {
		fetched, err := source.Fetch(ctx, rc.month)
		if err != nil {
			rc.logger.Warn("Link source failed", zap.String("source", source.Name()), zap.Error(err))
			rc.stats.AddError("source %s: %v", source.Name(), err)
			continue
		}
		rc.logger.Debug("Fetched items from source",
			zap.String("source", source.Name()),
			zap.Int("items", len(fetched)))
		items = append(items, fetched...)
	}

	return items, nil
}

// resolve проверяет кандидатов последовательно с паузой между запросами
func (m *Mixtape) resolve(ctx context.Context, rc *runContext, candidates []extract.Candidate) error {
	limit := rate.Inf
	if m.opts.RequestDelay > 0 {
		limit = rate.Every(m.opts.RequestDelay)
	}
	limiter := rate.NewLimiter(limit, 1)
	resolver := NewResolver(rc.api, m.opts.SearchLimit, rc.logger)

	for _, candidate := range candidates {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		track, err := resolver.Resolve(ctx, candidate, rc.month)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			rc.logger.Warn("Failed to resolve candidate",
				zap.String("candidate", candidateLabel(candidate)),
				zap.Error(err))
			rc.stats.AddError("resolve %s: %v", candidateLabel(candidate), err)
			continue
		}
		if track == nil {
			continue
		}
		if !rc.tracks.Add(*track) {
			rc.stats.TracksSkippedDuplicate++
			rc.logger.Debug("Track already matched", zap.String("track_id", track.ID))
		}
	}

	return nil
}

// finish собирает отчет, пишет журнал и рассылает уведомления
func (m *Mixtape) finish(ctx context.Context, rc *runContext, success bool, message string) *model.Report {
	report := &model.Report{
		Success:    success,
		Message:    message,
		Playlist:   rc.playlist,
		Stats:      *rc.stats,
		DurationMS: m.now().Sub(rc.started).Milliseconds(),
		RunID:      rc.id,
		Month:      rc.month.Key,
	}

	if m.history != nil && rc.month.Key != "" {
		if err := m.history.RecordRun(ctx, rc.trigger, rc.started, report); err != nil {
			rc.logger.Warn("Failed to record run", zap.Error(err))
		}
	}

	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, report); err != nil {
			rc.logger.Warn("Failed to deliver report", zap.Error(err))
		}
	}

	rc.logger.Info("Monthly mix run finished",
		zap.Bool("success", report.Success),
		zap.String("message", report.Message),
		zap.Int("tracks_added", report.Stats.TracksAdded),
		zap.Int("errors", len(report.Stats.Errors)),
		zap.Int64("duration_ms", report.DurationMS))

	return report
}
