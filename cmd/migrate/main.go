package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/migration"
	"github.com/erp/ledger/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	// create and list work on the source tree only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		dir := migrationsPath
		if dir == "" {
			dir = "migrations"
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		dir := migrationsPath
		if dir == "" {
			dir = "migrations"
		}
		list, err := migration.ListMigrations(dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, m := range list {
			fmt.Printf("  %06d %s (down: %t)\n", m.Version, m.Name, m.HasDown)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migration.Source{Path: migrationsPath, FS: migrations.FS}, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		n, convErr := strconv.Atoi(argAt(args, 1))
		if convErr != nil {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		err = m.Steps(n)
	case "goto":
		v, convErr := strconv.ParseUint(argAt(args, 1), 10, 32)
		if convErr != nil {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		err = m.GoTo(uint(v))
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to get version", zap.Error(verr))
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		v, convErr := strconv.Atoi(argAt(args, 1))
		if convErr != nil {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		err = m.Force(v)
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printUsage() {
	fmt.Println(`Ledger database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Mark a version as applied after a failed run
  create <name> [desc]  Write the next numbered migration pair
  list                  List migrations on disk

Flags:
  -path string          Migrations directory (default: embedded migrations)
  -log-level string     debug, info, warn, error (default: info)

Database settings come from config.toml and LEDGER_DATABASE_* variables.`)
}
