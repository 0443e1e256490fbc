package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/pkg/logger"
)

// Open builds the store selected by cfg.StoreKind. The returned close func
// releases any pools or files and is never nil.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, func() error, error) {
	if cfg.StoreKind != config.StoreMerge {
		return open(ctx, cfg.StoreKind, cfg, log)
	}

	var (
		sources []Store
		closers []func() error
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	for _, kind := range cfg.MergeSources {
		s, c, err := open(ctx, kind, cfg, log)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sources = append(sources, s)
		closers = append(closers, c)
	}
	m, err := NewMergeStore(sources, WithLogger(log))
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return m, closeAll, nil
}

func open(ctx context.Context, kind string, cfg *config.Config, log logger.Logger) (Store, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case config.StoreSeed:
		s, err := Seed(WithLogger(log))
		return s, noop, err
	case config.StoreFile:
		return NewFileStore(cfg.CorpusPath, WithLogger(log)), noop, nil
	case config.StorePostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { s.Close(); return nil }, nil
	case config.StoreSQLite:
		s, err := OpenSQLiteStore(ctx, cfg.SQLitePath, WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", kind)
}
