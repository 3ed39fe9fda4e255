/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the hours engine: runs the HTTP server and the
  store maintenance tasks.

COMMANDS:
  serve            Start the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  migrate          Apply database migrations and print the schema version
  seed-rules       Load a rule document (or the built-in one) into the store
  import-expected  Load the legacy expected-impact CSV into the store

GLOBAL FLAGS:
  --config     TOML config file (default: $HOURS_CONFIG, else none)
  --db         SQLite database path, overrides config
  --log-level  logrus level, overrides config

STARTUP SEQUENCE (serve):
  1. Load config (file, .env, environment)
  2. Open SQLite store (migrations applied), or the memory store
     with --memory
  3. Seed rules from rules_file when set
  4. Build service, handler and router
  5. Start optional audit scheduler
  6. Serve until signalled, then drain for up to 30s

EXAMPLES:
  hours-server serve --db ./data/hours.db --port 3000
  hours-server seed-rules --file rules.toml
  hours-server import-expected --file legacy.csv

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: configuration sources
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/hours-engine/api"
	"github.com/warp/hours-engine/config"
	"github.com/warp/hours-engine/factory"
	"github.com/warp/hours-engine/store/memory"
	"github.com/warp/hours-engine/store/sqlite"
	"github.com/warp/hours-engine/timekeeping"
)

var rootCmd = &cobra.Command{
	Use:           "hours-server",
	Short:         "Weekly hour-bag and annual entitlement engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		version, dirty, err := store.MigrationVersion()
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"db": cfg.DatabasePath, "version": version, "dirty": dirty}).Info("schema up to date")
		return nil
	},
}

var seedRulesCmd = &cobra.Command{
	Use:   "seed-rules",
	Short: "Replace the rule tables from a JSON/TOML document",
	Long: `Replace the absence and contract rule tables.

Without --file, the rules_file from config is used; without either, the
built-in rule set is loaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.RulesFile
		}

		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		tables, err := seedRules(cmd.Context(), store, file)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"absences":  len(tables.Absences),
			"contracts": len(tables.Contracts),
			"source":    sourceName(file),
		}).Info("rules seeded")
		return nil
	},
}

var importExpectedCmd = &cobra.Command{
	Use:   "import-expected",
	Short: "Import the legacy expected-impact CSV (week,employee,ordinary,holiday,leave)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return errors.New("--file is required")
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := timekeeping.ParseExpectedCSV(f)
		if err != nil {
			return err
		}

		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveExpected(cmd.Context(), rows); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"rows": len(rows), "file": file}).Info("expected impacts imported")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", os.Getenv("HOURS_CONFIG"), "TOML config file")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")

	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides config)")
	serveCmd.Flags().Duration("audit-interval", 0, "Re-run the audit on this interval (0 disables)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origins")
	serveCmd.Flags().Bool("memory", false, "Keep all data in process memory (demo mode, rules seeded)")

	seedRulesCmd.Flags().StringP("file", "f", "", "Rule document (.json or .toml)")
	importExpectedCmd.Flags().StringP("file", "f", "", "CSV file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedRulesCmd)
	rootCmd.AddCommand(importExpectedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// setup loads config and applies global flag overrides.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DatabasePath = db
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

type ruleSaver interface {
	SaveRules(ctx context.Context, absences []timekeeping.AbsenceType, contracts []timekeeping.ContractType) error
}

func seedRules(ctx context.Context, store ruleSaver, file string) (timekeeping.RuleTables, error) {
	f := factory.NewRuleFactory()
	var (
		tables timekeeping.RuleTables
		err    error
	)
	if file == "" {
		tables, err = f.DefaultRules()
	} else {
		tables, err = f.LoadFile(file)
	}
	if err != nil {
		return timekeeping.RuleTables{}, err
	}
	if err := store.SaveRules(ctx, tables.AbsenceList(), tables.ContractList()); err != nil {
		return timekeeping.RuleTables{}, err
	}
	return tables, nil
}

func sourceName(file string) string {
	if file == "" {
		return "built-in"
	}
	return file
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}

	// Hours go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	var store api.Store
	if inMemory, _ := cmd.Flags().GetBool("memory"); inMemory {
		store = memory.New()
		cfg.DatabasePath = "memory"
		if cfg.RulesFile == "" {
			if _, err := seedRules(cmd.Context(), store, ""); err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
		}
	} else {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		store = db
	}

	if cfg.RulesFile != "" {
		if _, err := seedRules(cmd.Context(), store, cfg.RulesFile); err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
		log.WithField("file", cfg.RulesFile).Info("rules loaded")
	}

	svc := timekeeping.NewService(store, log)
	if err := cfg.Apply(svc); err != nil {
		return err
	}

	handler := api.NewHandler(store, svc, log)
	origins, _ := cmd.Flags().GetStringSlice("cors-origin")
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: origins})

	scheduler := api.NewAuditScheduler(store, svc, log)
	scheduler.CheckInterval, _ = cmd.Flags().GetDuration("audit-interval")
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "db": cfg.DatabasePath}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
