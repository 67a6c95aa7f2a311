package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/liyaqa/membership/internal/config"
	"github.com/liyaqa/membership/internal/logger"
)

func main() {
	dir := flag.String("dir", "migrations/postgres", "Directory containing migration files")
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.up.sql"))
	if err != nil {
		logger.Fatalw("Failed to list migration files", "error", err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Fatalw("No migration files found", "dir", *dir)
	}

	if *dryRun {
		for _, file := range files {
			contents, err := os.ReadFile(file)
			if err != nil {
				logger.Fatalw("Failed to read migration file", "file", file, "error", err)
			}
			fmt.Printf("-- %s\n%s\n", file, strings.TrimSpace(string(contents)))
		}
		return
	}

	dsn := cfg.Postgres.GetDSN()
	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			logger.Fatalw("Failed to read migration file", "file", file, "error", err)
		}

		logger.Infow("Applying migration", "file", file)
		if _, err := db.Exec(string(contents)); err != nil {
			logger.Fatalw("Failed to apply migration", "file", file, "error", err)
		}
	}

	logger.Info("Migration completed successfully")
}
