package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/gatecompass/internal/domain/dedupe"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// MergeStore combines several stores. Sources load concurrently; results are
// concatenated in declaration order and the first occurrence of an ID wins.
type MergeStore struct {
	sources []Store
	opts    options
}

// NewMergeStore returns a store over sources.
func NewMergeStore(sources []Store, opts ...Option) (*MergeStore, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return &MergeStore{sources: sources, opts: buildOptions("merge", opts)}, nil
}

func (s *MergeStore) Name() string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return s.opts.name + "(" + strings.Join(names, ",") + ")"
}

// Load fails if any source fails.
func (s *MergeStore) Load(ctx context.Context, window model.YearRange) ([]model.Record, error) {
	results := make([][]model.Record, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			records, err := src.Load(gctx, window)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]model.Record, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	merged, dropped := dedupe.Records(ctx, dedupe.NewInMemoryDeduper(), merged)
	if dropped > 0 {
		s.opts.log.Info(ctx, "dropped duplicate records across sources",
			logger.Int("dropped", dropped), logger.Int("kept", len(merged)))
	}
	return merged, nil
}

// Version joins the source versions. It is empty when any source cannot
// report one.
func (s *MergeStore) Version(ctx context.Context) (string, error) {
	parts := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		v, ok := src.(Versioner)
		if !ok {
			return "", nil
		}
		version, err := v.Version(ctx)
		if err != nil {
			return "", err
		}
		if version == "" {
			return "", nil
		}
		parts = append(parts, version)
	}
	return strings.Join(parts, "+"), nil
}

// Ping checks every source that has a remote dependency.
func (s *MergeStore) Ping(ctx context.Context) error {
	for _, src := range s.sources {
		if p, ok := src.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
		}
	}
	return nil
}
