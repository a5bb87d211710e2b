// Command inventaris serves and administers the office asset inventory.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventaris/internal/audit"
	"github.com/erazemk/inventaris/internal/config"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/imaging"
	"github.com/erazemk/inventaris/internal/inventory"
	"github.com/erazemk/inventaris/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "inventaris",
	Short: "Office asset inventory",
	Long: `Inventaris tracks office equipment under INV-NNN identifiers, keeps an
audit trail of every change and imports existing spreadsheets.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "inventaris.yaml", "path to YAML config file (optional)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the resources shared by commands.
type app struct {
	Config    *config.Config
	DB        *db.DB
	Recorder  *audit.Recorder
	Inventory *inventory.Service

	closeLog func()
}

// Close releases resources held by app.
func (a *app) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

// initApp loads configuration, sets up logging and opens the database with
// the schema in place.
func initApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	closeLog, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a := &app{Config: cfg, closeLog: closeLog}

	database, err := db.Open(cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.DB = database

	if err := db.EnsureSchema(database); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Debug("database ready", "driver", database.Driver())

	logger := slog.Default()
	a.Recorder = audit.NewRecorder(database, logger)
	qr := imaging.NewFileStore(cfg.Storage.BarcodeDir, cfg.Storage.BarcodeURLPrefix)
	a.Inventory = inventory.New(database, a.Recorder, qr, inventory.WithLogger(logger))
	return a, nil
}
