package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"aufgussplan/internal/config"
	"aufgussplan/internal/database"
	"aufgussplan/internal/database/migrations"
	"aufgussplan/internal/logger"

	"github.com/joho/godotenv"
)

const usage = `usage: migrate <command>

commands:
  up          apply all pending migrations
  down        roll back every migration
  to <N>      migrate up or down to version N
  version     print the applied version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB, err := database.Open(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	runner := migrations.NewRunner(bunDB.DB, log)
	defer runner.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "to":
		var version uint64
		version, err = strconv.ParseUint(flag.Arg(1), 10, 32)
		if err != nil {
			log.Fatal("MIGRATE", fmt.Sprintf("invalid version %q", flag.Arg(1)))
		}
		err = runner.MigrateTo(uint(version))
	case "version":
		version, dirty, verr := runner.Version()
		if verr == nil {
			fmt.Printf("version %d (dirty: %v)\n", version, dirty)
		}
		err = verr
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("%s finished", flag.Arg(0)))
}
