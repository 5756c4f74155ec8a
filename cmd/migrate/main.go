package main

import (
	"flag"
	"fmt"
	"os"

	"himachal-market/internal/config"
	"himachal-market/internal/database"
	"himachal-market/internal/logger"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-dir migrations] up|down|status\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "migrations", "path to migration files")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	db := dbService.DB()

	switch command := flag.Arg(0); command {
	case "up":
		err = database.RunMigrations(db, migrationsDir, log)
	case "down":
		err = database.RollbackMigration(db, migrationsDir, log)
	case "status":
		err = database.GetMigrationStatus(db, migrationsDir)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}
