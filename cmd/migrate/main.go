package main

import (
	"flag"
	"log"

	"traveldesk/internal/database"
	"traveldesk/pkg/config"
)

func main() {
	path := flag.String("path", "file://migrations", "migrations source URL")
	steps := flag.Int("steps", 1, "steps to roll back with down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	if cfg.MigrationsPath != "" && !isFlagSet("path") {
		*path = cfg.MigrationsPath
	}

	switch cmd := flag.Arg(0); cmd {
	case "", "up":
		err = database.MigrateUp(*path, cfg.DSN())
	case "down":
		err = database.MigrateDown(*path, cfg.DSN(), *steps)
	default:
		log.Fatalf("unknown command %q, expected up or down", cmd)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Done.")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
