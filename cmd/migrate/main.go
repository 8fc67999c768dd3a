// Package main applies the session summary schema to PostgreSQL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cory-johannsen/outplay/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty uses defaults and OUTPLAY_DATABASE_* env")
	direction := flag.String("direction", "up", "up, down, or version (print the current version only)")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	migrations := flag.String("migrations", "migrations", "directory of migration files")
	flag.Parse()

	// Only the database section matters here, so the full config is not validated.
	v := config.NewViper()
	if *configPath != "" {
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("reading config: %v", err)
		}
	}
	var dbCfg config.DatabaseConfig
	if err := v.UnmarshalKey("database", &dbCfg); err != nil {
		log.Fatalf("parsing database config: %v", err)
	}

	m, err := migrate.New("file://"+*migrations, dbCfg.DSN())
	if err != nil {
		log.Fatalf("creating migrator for %s:%d/%s: %v", dbCfg.Host, dbCfg.Port, dbCfg.Name, err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		log.Fatalf("invalid direction %q: must be 'up', 'down' or 'version'", *direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatalf("reading schema version: %v", verr)
	}
	elapsed := time.Since(start)

	switch {
	case *direction == "version":
		fmt.Fprintf(os.Stdout, "version=%d dirty=%v\n", version, dirty)
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	default:
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, version, dirty, elapsed)
	}
}
