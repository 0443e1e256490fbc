// Package service orchestrates record loading, the analysis pipeline and
// the report cache behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gatecompass/internal/adapters/repository"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/report"
	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/okian/gatecompass/pkg/logger"
	"github.com/okian/gatecompass/pkg/metrics"
)

// ReportCache stores finished reports. Errors are logged and bypassed.
type ReportCache interface {
	Key(version string, window model.YearRange, date string) string
	Get(ctx context.Context, key string) (types.Report, bool, error)
	Set(ctx context.Context, key string, r types.Report) error
}

// Service implements the API dependencies for the analysis engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	cache    ReportCache
	pipeline *report.Pipeline
	now      func() time.Time

	// Configuration
	storeTimeout       time.Duration
	windowYears        int
	windowEnd          int
	maxWindow          int
	emptyOnUnavailable bool

	// State
	started     bool
	reports     atomic.Int64
	degraded    atomic.Int64
	failures    atomic.Int64
	cacheHits   atomic.Int64
	lastRecords atomic.Int64
	lastVersion atomic.Value

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store. Defaults to the embedded seed corpus.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache enables report caching.
func WithCache(c ReportCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithPipeline sets the analysis pipeline.
func WithPipeline(p *report.Pipeline) Option {
	return func(s *Service) {
		if p != nil {
			s.pipeline = p
		}
	}
}

// WithClock sets the source of the analysis date and default window end.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStoreTimeout bounds each store load.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithWindow sets the default window length and, when endYear > 0, a fixed
// last year instead of the current one.
func WithWindow(years, endYear int) Option {
	return func(s *Service) {
		if years > 0 {
			s.windowYears = years
		}
		if endYear > 0 {
			s.windowEnd = endYear
		}
	}
}

// WithMaxWindow caps the span a caller may request.
func WithMaxWindow(years int) Option {
	return func(s *Service) {
		if years > 0 {
			s.maxWindow = years
		}
	}
}

// WithEmptyOnUnavailable answers with a degraded empty report instead of
// ErrDataUnavailable when the store fails.
func WithEmptyOnUnavailable(enabled bool) Option {
	return func(s *Service) {
		s.emptyOnUnavailable = enabled
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		now:          time.Now,
		storeTimeout: 3 * time.Second,
		windowYears:  10,
		maxWindow:    40,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxWindow < s.windowYears {
		s.maxWindow = s.windowYears
	}
	s.lastVersion.Store("")
	return s
}

// Start resolves defaults for unset components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.pipeline == nil {
		s.pipeline = report.New()
	}
	if s.store == nil {
		seed, err := repository.Seed(repository.WithLogger(s.logger))
		if err != nil {
			return fmt.Errorf("load seed corpus: %w", err)
		}
		s.store = seed
	}

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.String("store", s.store.Name()),
		logger.Bool("cache", s.cache != nil),
		logger.Int("windowYears", s.windowYears),
		logger.Duration("storeTimeout", s.storeTimeout),
	)
	return nil
}

// Stop marks the service stopped. Closing the store is the caller's job.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// Window resolves a requested year range. Zero bounds take the defaults:
// to is the configured or current year and from spans the default length.
func (s *Service) Window(from, to int) (model.YearRange, error) {
	if to == 0 {
		to = s.windowEnd
		if to == 0 {
			to = s.now().Year()
		}
	}
	if from == 0 {
		from = model.LastYears(to, s.windowYears).Start
	}

	w, err := model.NewYearRange(from, to)
	if err != nil {
		return model.YearRange{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if w.Len() > s.maxWindow {
		return model.YearRange{}, fmt.Errorf("%w: window %s exceeds %d years", ErrBadRequest, w, s.maxWindow)
	}
	return w, nil
}

// Report computes, or fetches from cache, the report for [from, to].
func (s *Service) Report(ctx context.Context, from, to int) (types.Report, error) {
	start := time.Now()
	store, pipeline, err := s.components()
	if err != nil {
		return types.Report{}, err
	}
	window, err := s.Window(from, to)
	if err != nil {
		metrics.RecordReportFailed("bad_request")
		return types.Report{}, err
	}
	date := s.now()
	day := date.Format(report.DateLayout)

	version := s.version(ctx, store)
	if r, ok := s.cached(ctx, version, window, day); ok {
		return r, nil
	}

	records, err := s.load(ctx, store, window)
	if err != nil {
		if s.emptyOnUnavailable {
			s.degraded.Add(1)
			metrics.RecordReportGenerated(types.StatusDegraded)
			s.logger.Warn(ctx, "serving degraded report", logger.Error(err))
			return pipeline.Empty(window, date, types.StatusDegraded), nil
		}
		s.failures.Add(1)
		metrics.RecordReportFailed("data_unavailable")
		return types.Report{}, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	if version == "" && s.cache != nil {
		version = repository.Fingerprint(records)
		if r, ok := s.cached(ctx, version, window, day); ok {
			return r, nil
		}
	}

	r := pipeline.Run(records, window, date)
	s.reports.Add(1)
	metrics.RecordReportGenerated(r.Status)
	metrics.UpdateTopicsRanked(r.TotalTopics)
	metrics.RecordReportLatency(float64(time.Since(start).Microseconds()) / 1000)

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.Key(version, window, day), r); err != nil {
			metrics.RecordCacheError()
			s.logger.Warn(ctx, "report cache write failed", logger.Error(err))
		}
	}
	return r, nil
}

// Topic returns one topic of the report for [from, to].
func (s *Service) Topic(ctx context.Context, name string, from, to int) (types.TopicDetail, error) {
	r, err := s.Report(ctx, from, to)
	if err != nil {
		return types.TopicDetail{}, err
	}
	d, ok := r.Topics[name]
	if !ok {
		return types.TopicDetail{}, fmt.Errorf("%w: topic %q", ErrNotFound, name)
	}
	return d, nil
}

// Subjects summarises every subject in [from, to].
func (s *Service) Subjects(ctx context.Context, from, to int) ([]types.SubjectSummary, error) {
	store, pipeline, err := s.components()
	if err != nil {
		return nil, err
	}
	window, err := s.Window(from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.load(ctx, store, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return pipeline.Subjects(records, window), nil
}

// YearStats describes a single exam year.
func (s *Service) YearStats(ctx context.Context, year int) (types.YearStatistics, error) {
	store, pipeline, err := s.components()
	if err != nil {
		return types.YearStatistics{}, err
	}
	window, err := model.NewYearRange(year, year)
	if err != nil {
		return types.YearStatistics{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	records, err := s.load(ctx, store, window)
	if err != nil {
		return types.YearStatistics{}, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	stats, ok := pipeline.Year(records, year)
	if !ok {
		return types.YearStatistics{}, fmt.Errorf("%w: no observations for %d", ErrNotFound, year)
	}
	return stats, nil
}

// Ready reports whether the service can serve reports.
func (s *Service) Ready(ctx context.Context) error {
	store, _, err := s.components()
	if err != nil {
		return err
	}
	if p, ok := store.(repository.Pinger); ok {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"windowYears":        s.windowYears,
		"maxWindowYears":     s.maxWindow,
		"storeTimeoutMs":     s.storeTimeout.Milliseconds(),
		"cacheEnabled":       s.cache != nil,
		"emptyOnUnavailable": s.emptyOnUnavailable,
		"reportsGenerated":   s.reports.Load(),
		"reportsDegraded":    s.degraded.Load(),
		"reportsFailed":      s.failures.Load(),
		"cacheHits":          s.cacheHits.Load(),
		"lastRecordCount":    s.lastRecords.Load(),
		"corpusVersion":      s.lastVersion.Load(),
	}
	if s.store != nil {
		stats["store"] = s.store.Name()
	}
	return stats
}

func (s *Service) components() (repository.Store, *report.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.pipeline, nil
}

// load reads the window under the store timeout.
func (s *Service) load(ctx context.Context, store repository.Store, window model.YearRange) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	backend := store.Name()
	start := time.Now()
	records, err := store.Load(ctx, window)
	metrics.RecordStoreLoadLatency(backend, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordStoreError(backend)
		s.logger.Error(ctx, "record store load failed",
			logger.String("store", backend),
			logger.String("window", window.String()),
			logger.Error(err))
		return nil, err
	}

	metrics.RecordRecordsLoaded(backend, len(records))
	s.lastRecords.Store(int64(len(records)))
	return records, nil
}

// version asks the store for its content version when a cache is configured.
func (s *Service) version(ctx context.Context, store repository.Store) string {
	if s.cache == nil {
		return ""
	}
	v, ok := store.(repository.Versioner)
	if !ok {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	version, err := v.Version(ctx)
	if err != nil {
		s.logger.Debug(ctx, "store version unavailable", logger.Error(err))
		return ""
	}
	s.lastVersion.Store(version)
	return version
}

func (s *Service) cached(ctx context.Context, version string, window model.YearRange, day string) (types.Report, bool) {
	if s.cache == nil || version == "" {
		return types.Report{}, false
	}
	r, ok, err := s.cache.Get(ctx, s.cache.Key(version, window, day))
	switch {
	case err != nil:
		metrics.RecordCacheError()
		s.logger.Warn(ctx, "report cache read failed", logger.Error(err))
		return types.Report{}, false
	case !ok:
		metrics.RecordCacheMiss()
		return types.Report{}, false
	}
	metrics.RecordCacheHit()
	s.cacheHits.Add(1)
	s.lastVersion.Store(version)
	return r, true
}
