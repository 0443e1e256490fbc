package corpustool

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/gatecompass/internal/adapters/repository"
	app "github.com/okian/gatecompass/internal/app"
	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/okian/gatecompass/pkg/logger"
)

var allYears = model.YearRange{Start: 1, End: 9999}

// OfflineReport runs the analysis over the corpora under path without a
// running service. A zero to defaults to the newest year in the corpus and a
// zero from to the configured window length before to.
func OfflineReport(ctx context.Context, path string, from, to int, cfg *config.Config, now time.Time, log logger.Logger) (types.Report, error) {
	pipeline, err := app.NewPipeline(cfg)
	if err != nil {
		return types.Report{}, err
	}

	records, err := repository.NewFileStore(path, repository.WithLogger(log)).Load(ctx, allYears)
	if err != nil {
		return types.Report{}, err
	}

	if to == 0 {
		for _, r := range records {
			to = max(to, r.Year)
		}
		if to == 0 {
			to = now.Year()
		}
	}
	if from == 0 {
		from = model.LastYears(to, cfg.WindowYears).Start
	}
	window, err := model.NewYearRange(from, to)
	if err != nil {
		return types.Report{}, fmt.Errorf("%w: window: %w", ErrBadFlag, err)
	}

	log.Debug(ctx, "running offline report",
		logger.String("path", path),
		logger.String("window", window.String()),
		logger.Int("records", len(records)))
	return pipeline.Run(records, window, now), nil
}

// ImportSQLite snapshots every record under corpusPath into the SQLite
// database at dbPath, replacing whatever an earlier import left there.
func ImportSQLite(ctx context.Context, corpusPath, dbPath string, log logger.Logger) (loaded, inserted int, err error) {
	records, err := repository.NewFileStore(corpusPath, repository.WithLogger(log)).Load(ctx, allYears)
	if err != nil {
		return 0, 0, err
	}

	db, err := repository.OpenSQLiteStore(ctx, dbPath, repository.WithLogger(log))
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	inserted, err = db.Replace(ctx, records)
	if err != nil {
		return 0, 0, err
	}
	log.Info(ctx, "imported corpus",
		logger.String("corpus", corpusPath),
		logger.String("db", dbPath),
		logger.Int("loaded", len(records)),
		logger.Int("inserted", inserted))
	return len(records), inserted, nil
}
