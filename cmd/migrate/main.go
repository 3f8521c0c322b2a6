package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"bookshelf/internal/platform/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	ctx := context.Background()

	if storage() == "sqlite" {
		migrateSQLite(ctx, *command)
		return
	}

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := run(db, *command, *name, migrationsDir()); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, command, name, dir string) error {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		fmt.Printf("Migration created: %s\n", name)
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}

// migrateSQLite applies the schema embedded in the sqlite package. Only "up"
// makes sense there; the file is recreated rather than rolled back.
func migrateSQLite(ctx context.Context, command string) {
	if command != "up" {
		log.Fatalf("Command %q is not supported for sqlite storage", command)
	}
	path := envOr("SQLITE_PATH", "data/bookshelf.db")
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		log.Fatalf("Failed to migrate sqlite database: %v", err)
	}
	defer db.Close()
	fmt.Fprintf(os.Stdout, "SQLite database ready at %s\n", path)
}
