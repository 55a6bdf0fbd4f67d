// Command earnctl computes breakdowns and monthly summaries from the command
// line, either from JSON files or from the server's SQLite database.
//
//	earnctl day --entry entry.json [--settings settings.json] [--db earnings.db]
//	earnctl month --db earnings.db --month 2025-03 [--days] [--pdf out.pdf]
//	earnctl month --entries march.json [--settings settings.json] --month 2025-03
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/logging"
	"github.com/warp/earnings-engine/report"
	"github.com/warp/earnings-engine/store/memory"
	"github.com/warp/earnings-engine/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:          "earnctl",
		Short:        "CCNL hourly earnings calculator",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newDayCmd(), newMonthCmd(&logLevel))
	return cmd
}

func newDayCmd() *cobra.Command {
	var entryPath, settingsPath, dbPath string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Compute the breakdown of one work entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := factory.New()

			raw, err := readInput(entryPath, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read entry: %w", err)
			}
			entry, err := f.ParseEntry(raw)
			if err != nil {
				return err
			}

			settings := &earnings.Settings{}
			if settingsPath != "" {
				raw, err := readInput(settingsPath, cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read settings: %w", err)
				}
				if settings, err = f.ParseSettings(raw); err != nil {
					return err
				}
			}

			var cal generic.HolidayCalendar = generic.ItalianCalendar{}
			if dbPath != "" {
				store, err := sqlite.New(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				if cal, err = store.Calendar(cmd.Context()); err != nil {
					return err
				}
			}

			b, err := earnings.ComputeDailyBreakdown(entry, settings, cal)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), factory.BreakdownToJSON(b))
		},
	}
	cmd.Flags().StringVar(&entryPath, "entry", "-", "Entry JSON file (- for stdin)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings JSON file (default: all defaults)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database providing custom holidays")
	return cmd
}

func newMonthCmd(logLevel *string) *cobra.Command {
	var dbPath, entriesPath, settingsPath, month, pdfPath string
	var withDays bool
	var workers int

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Aggregate the entries of a month",
		Long: "Aggregate the entries of a month from the SQLite database, or from a JSON\n" +
			"array of entries when --entries is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(*logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			period := currentMonth()
			if month != "" {
				if period, err = generic.ParseMonth(month); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			var store earnings.Store
			var cal generic.HolidayCalendar = generic.ItalianCalendar{}
			if entriesPath != "" {
				mem, err := loadMemoryStore(ctx, entriesPath, settingsPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				store = mem
			} else {
				db, err := sqlite.New(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if cal, err = db.Calendar(ctx); err != nil {
					return err
				}
				store = db
			}

			summary, err := earnings.AggregateStored(ctx, store, period, earnings.AggregateOptions{
				Calendar:    cal,
				Logger:      logger,
				Concurrency: workers,
			})
			if err != nil {
				return err
			}

			if pdfPath != "" {
				if err := writePDF(pdfPath, summary); err != nil {
					return err
				}
				logger.Info("report written", zap.String("path", pdfPath))
			}
			return printJSON(cmd.OutOrStdout(), factory.SummaryToJSON(summary, withDays))
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "earnings.db", "SQLite database path")
	cmd.Flags().StringVar(&entriesPath, "entries", "", "JSON array of entries (- for stdin) instead of the database")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings JSON file used with --entries")
	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().BoolVar(&withDays, "days", false, "Include daily breakdowns")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also write a PDF report to this path")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent daily computations")
	return cmd
}

// loadMemoryStore fills an in-memory store from JSON files. Entries are
// decoded without validation, like stored documents.
func loadMemoryStore(ctx context.Context, entriesPath, settingsPath string, stdin io.Reader) (*memory.Memory, error) {
	f := factory.New()
	mem := memory.NewMemory()

	raw, err := readInput(entriesPath, stdin)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("entries must be a JSON array: %w", err)
	}
	for i, doc := range docs {
		e, err := f.DecodeEntry(doc)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := mem.SaveEntry(ctx, *e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	if settingsPath != "" {
		raw, err := readInput(settingsPath, stdin)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		settings, err := f.ParseSettings(raw)
		if err != nil {
			return nil, err
		}
		if err := mem.SaveSettings(ctx, *settings); err != nil {
			return nil, err
		}
	}
	return mem, nil
}

func writePDF(path string, summary *earnings.MonthlySummary) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.MonthlyPDF(out, summary); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func currentMonth() generic.Period {
	today := generic.Today()
	return generic.MonthPeriod(today.Year(), today.Month())
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
