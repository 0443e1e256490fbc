// Package corpustool implements the corpus-tool command tree: synthetic
// corpus generation, offline reports, SQLite import and report verification
// against a running service.
package corpustool

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/pkg/logger"
	"github.com/spf13/cobra"
)

// Default flag values.
const (
	defaultBaseURL          = "http://localhost:9080"
	defaultTimeout          = 30 * time.Second
	defaultQuestionsPerYear = 65
	defaultTop              = 25
	filePermission          = 0o600
)

type rootFlags struct {
	verbose   bool
	logFormat string
}

// NewRootCommand builds the corpus-tool command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "corpus-tool",
		Short:         "Build, inspect and verify GATE question corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(cmd.ErrOrStderr(), logger.Format(flags.logFormat)); err != nil {
				return fmt.Errorf("%w: %w", ErrBadFlag, err)
			}
			if flags.verbose {
				return logger.SetLevelString("debug")
			}
			return logger.SetLevelString("warn")
		},
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(
		newGenerateCommand(),
		newReportCommand(),
		newImportCommand(),
		newVerifyCommand(),
	)
	return root
}

func newGenerateCommand() *cobra.Command {
	var (
		cfg    GenerateConfig
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic corpus drawn from the built-in topic catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			catalog, err := SeedCatalog(ctx)
			if err != nil {
				return err
			}
			doc, err := Generate(ctx, cfg, catalog)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := WriteDocument(w, doc, format); err != nil {
				return err
			}
			logger.Get().Info(ctx, "generated corpus",
				logger.Int("records", len(doc.Records)),
				logger.String("version", doc.Version))
			return nil
		},
	}
	thisYear := time.Now().Year()
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "Random seed; equal seeds give equal corpora")
	cmd.Flags().IntVar(&cfg.From, "from", thisYear-9, "First exam year")
	cmd.Flags().IntVar(&cfg.To, "to", thisYear, "Last exam year")
	cmd.Flags().IntVar(&cfg.QuestionsPerYear, "per-year", defaultQuestionsPerYear, "Questions per exam year")
	cmd.Flags().StringVar(&format, "format", FormatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newReportCommand() *cobra.Command {
	var (
		from, to int
		top      int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "report <corpus-path>",
		Short: "Rank the topics of a corpus file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			r, err := OfflineReport(ctx, args[0], from, to, cfg, time.Now(), logger.Get())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			return RenderReport(cmd.OutOrStdout(), r, top)
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First year of the window")
	cmd.Flags().IntVar(&to, "to", 0, "Last year of the window (default newest year in the corpus)")
	cmd.Flags().IntVar(&top, "top", defaultTop, "Topics to print; 0 prints all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func newImportCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import <corpus-path>",
		Short: "Snapshot a corpus into a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("%w: --db is required", ErrBadFlag)
			}
			loaded, inserted, err := ImportSQLite(cmd.Context(), args[0], dbPath, logger.Get())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d records, inserted %d into %s\n", loaded, inserted, dbPath)
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	return cmd
}

func newVerifyCommand() *cobra.Command {
	var (
		baseURL  string
		from, to int
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Fetch /report from a running service and check its invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r, violations, err := Verify(ctx, NewHTTPClient(baseURL, timeout), from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range violations {
				_, _ = fmt.Fprintln(out, "FAIL", v)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%w: %d problems", ErrVerify, len(violations))
			}
			_, err = fmt.Fprintf(out, "ok: %d topics, window %d-%d, status %s\n",
				r.TotalTopics, r.Window.StartYear, r.Window.EndYear, r.Status)
			return err
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultBaseURL, "Base URL of the service")
	cmd.Flags().IntVar(&from, "from", 0, "First year of the window")
	cmd.Flags().IntVar(&to, "to", 0, "Last year of the window")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "HTTP request timeout")
	return cmd
}
