package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/export"
	"github.com/hms/hms/migrations"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital IPD billing API server",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(billCmd())
	root.AddCommand(tariffCmd())
	return root
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}
	defer a.Close()

	if err := a.seed(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load demo data")
		return err
	}

	e := a.router()

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", a.addr()).Str("store", a.storeName()).Msg("starting server")
		if err := e.Start(a.addr()); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newMigrator(cmd *cobra.Command, cfg *config.Config) (*db.Migrator, func(), error) {
	if !cfg.UsesPostgres() {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	dir, _ := cmd.Flags().GetString("dir")

	pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	if dir == "" {
		return db.NewMigratorFS(pool, migrations.FS), pool.Close, nil
	}
	return db.NewMigrator(pool, dir), pool.Close, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			migrator, closePool, err := newMigrator(cmd, cfg)
			if err != nil {
				return err
			}
			defer closePool()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default: embedded)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			migrator, closePool, err := newMigrator(cmd, cfg)
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default: embedded)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Work with stored bills",
	}

	exportCmd := &cobra.Command{
		Use:   "export <bill-number>",
		Short: "Render a bill as PDF, print HTML or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.Close()
			if !cfg.UsesPostgres() {
				if err := a.seed(cmd.Context()); err != nil {
					return err
				}
			}

			det, err := a.stores.Billing.GetBillByNumber(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("bill %s: %w", args[0], err)
			}
			f, err := renderBill(a.exporter, det, format)
			if err != nil {
				return err
			}
			if out == "" {
				out = f.Name
			} else if st, err := os.Stat(out); err == nil && st.IsDir() {
				out = filepath.Join(out, f.Name)
			}
			if err := os.WriteFile(out, f.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(f.Data))
			return nil
		},
	}
	exportCmd.Flags().String("format", "pdf", "Output format: pdf, html or png")
	exportCmd.Flags().String("out", "", "Output file or directory (default: the document file name)")
	cmd.AddCommand(exportCmd)

	return cmd
}

// renderBill produces the requested rendition of a bill.
func renderBill(ex *export.Exporter, det *billing.Detail, format string) (*export.File, error) {
	doc := det.Document()
	base := doc.FileName()
	base = base[:len(base)-len(filepath.Ext(base))]
	switch format {
	case "pdf":
		return ex.PDF(doc)
	case "html":
		page, err := ex.PrintHTML(doc)
		if err != nil {
			return nil, err
		}
		return &export.File{Name: base + ".html", ContentType: "text/html; charset=utf-8", Data: page}, nil
	case "png":
		img, err := ex.PNG(doc)
		if err != nil {
			return nil, err
		}
		return &export.File{Name: base + ".png", ContentType: "image/png", Data: img}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want pdf, html or png)", format)
	}
}

func tariffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tariff",
		Short: "Print the ward tier rate table",
		RunE: func(cmd *cobra.Command, args []string) error {
			printTariffs(cmd.OutOrStdout())
			return nil
		},
	}
}

func printTariffs(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TIER\tROOM/DAY\tDOCTOR/DAY\tNURSING/DAY\tMEDICATION\t")
	for _, t := range billing.Tariffs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", t.Tier,
			export.FormatINR(t.RoomRate), export.FormatINR(t.DoctorRate),
			export.FormatINR(t.NursingRate), export.FormatINR(t.MedicationRate))
	}
	_ = tw.Flush()
}
