package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"contractocr/internal/config"
)

const usage = "Usage: migrate [-path dir] up|down|steps N|force V|version"

func main() {
	path := flag.String("path", "db/migrations", "directory containing migration files")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: loading config: %v", err)
	}

	m, err := migrate.New("file://"+*path, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("migrate: opening source %s: %v", *path, err)
	}
	defer m.Close()

	if err := run(m, args); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up: %w", err)
		}
		log.Println("schema is up to date")
		return nil

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down: %w", err)
		}
		log.Println("schema rolled back")
		return nil

	case "steps":
		n, err := intArg(args, 1)
		if err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("steps %d: %w", n, err)
		}
		log.Printf("applied %d steps", n)
		return nil

	case "force":
		// Clears a dirty flag left by an interrupted migration.
		v, err := intArg(args, 1)
		if err != nil {
			return fmt.Errorf("force: %w", err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force %d: %w", v, err)
		}
		log.Printf("forced version %d", v)
		return nil

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("missing numeric argument")
	}
	return strconv.Atoi(args[i])
}
