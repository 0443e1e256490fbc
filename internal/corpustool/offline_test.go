package corpustool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/gatecompass/internal/adapters/repository"
	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func writeCorpus(t *testing.T, dir string, cfg GenerateConfig) string {
	t.Helper()
	catalog, err := SeedCatalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	doc, err := Generate(context.Background(), cfg, catalog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(dir, "corpus.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := WriteDocument(f, doc, FormatJSON); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestOfflineReport(t *testing.T) {
	Convey("Given a generated corpus on disk", t, func() {
		dir := t.TempDir()
		writeCorpus(t, dir, GenerateConfig{Seed: 3, From: 2013, To: 2024, QuestionsPerYear: 30})
		cfg := config.New()
		now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

		Convey("When no window is given", func() {
			r, err := OfflineReport(context.Background(), dir, 0, 0, cfg, now, logger.Nop())

			Convey("Then the window ends at the newest corpus year", func() {
				So(err, ShouldBeNil)
				So(r.Window.EndYear, ShouldEqual, 2024)
				So(r.Window.StartYear, ShouldEqual, 2015)
				So(r.TotalRecords, ShouldEqual, 10*30)
				So(r.AnalysisDate, ShouldEqual, "2025-01-10")
				So(Check(r), ShouldBeEmpty)
			})
		})

		Convey("When an explicit window is given", func() {
			r, err := OfflineReport(context.Background(), dir, 2020, 2021, cfg, now, logger.Nop())

			So(err, ShouldBeNil)
			So(r.TotalRecords, ShouldEqual, 2*30)
		})

		Convey("When the window is inverted", func() {
			_, err := OfflineReport(context.Background(), dir, 2022, 2020, cfg, now, logger.Nop())

			So(errors.Is(err, ErrBadFlag), ShouldBeTrue)
		})

		Convey("When the corpus path does not exist", func() {
			_, err := OfflineReport(context.Background(), filepath.Join(dir, "nope"), 0, 0, cfg, now, logger.Nop())

			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
		})
	})
}

func TestImportSQLite(t *testing.T) {
	Convey("Given a generated corpus and an empty database path", t, func() {
		dir := t.TempDir()
		corpus := writeCorpus(t, dir, GenerateConfig{Seed: 9, From: 2021, To: 2022, QuestionsPerYear: 15})
		dbPath := filepath.Join(dir, "obs.db")
		ctx := context.Background()

		Convey("When importing twice", func() {
			loaded, inserted, err := ImportSQLite(ctx, corpus, dbPath, logger.Nop())
			So(err, ShouldBeNil)
			_, again, err := ImportSQLite(ctx, corpus, dbPath, logger.Nop())
			So(err, ShouldBeNil)

			Convey("Then each import writes the whole snapshot", func() {
				So(loaded, ShouldEqual, 30)
				So(inserted, ShouldEqual, 30)
				So(again, ShouldEqual, 30)
			})

			Convey("And the SQLite store serves one copy of the records", func() {
				store, err := repository.OpenSQLiteStore(ctx, dbPath)
				So(err, ShouldBeNil)
				defer func() { _ = store.Close() }()

				records, err := store.Load(ctx, model.YearRange{Start: 2022, End: 2022})
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 15)
			})
		})
	})

	Convey("Given a series corpus whose records carry no IDs", t, func() {
		dir := t.TempDir()
		corpus := filepath.Join(dir, "series.yaml")
		body := "version: s1\nseries:\n" +
			"  - subject: Algorithms\n" +
			"    topic: Sorting\n" +
			"    marks: {2022: 2, 2023: 3}\n"
		So(os.WriteFile(corpus, []byte(body), 0o600), ShouldBeNil)
		dbPath := filepath.Join(dir, "obs.db")
		ctx := context.Background()

		Convey("When importing it twice", func() {
			_, first, err := ImportSQLite(ctx, corpus, dbPath, logger.Nop())
			So(err, ShouldBeNil)
			_, second, err := ImportSQLite(ctx, corpus, dbPath, logger.Nop())
			So(err, ShouldBeNil)

			Convey("Then the database holds the rows only once", func() {
				So(first, ShouldEqual, 2)
				So(second, ShouldEqual, 2)

				store, err := repository.OpenSQLiteStore(ctx, dbPath)
				So(err, ShouldBeNil)
				defer func() { _ = store.Close() }()

				records, err := store.Load(ctx, model.YearRange{Start: 2015, End: 2024})
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, first)
			})
		})
	})
}
