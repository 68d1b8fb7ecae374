package itests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"DatasetCatalog/internal"
	"DatasetCatalog/internal/db"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DeriveTestDSN points baseDSN at a "catalog_test" database and derives an
// admin DSN on "postgres" used to create and drop it.
func DeriveTestDSN(baseDSN string) (testDSN, adminDSN, testDBName string, err error) {
	u, e := url.Parse(baseDSN)
	if e != nil {
		return "", "", "", fmt.Errorf("parse DSN: %w", e)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", "", errors.New("only URL DSN supported: postgres://...")
	}
	// tests only ever touch a local server
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return "", "", "", fmt.Errorf("refuse non-local host for tests: %s", host)
	}

	testDBName = "catalog_test"
	u.Path = "/" + testDBName
	testDSN = u.String()

	u.Path = "/postgres"
	adminDSN = u.String()

	return testDSN, adminDSN, testDBName, nil
}

func CreateTestDatabase(adminDSN, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname=$1)`, dbName,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = conn.ExecContext(ctx, `CREATE DATABASE `+pqIdent(dbName))
	return err
}

func DropTestDatabase(adminDSN, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, _ = conn.ExecContext(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, dbName)

	_, err = conn.ExecContext(ctx, `DROP DATABASE IF EXISTS `+pqIdent(dbName))
	return err
}

func pqIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SetupAndTeardownTestDB creates the test database, applies the repository
// migrations and calls initFunc with the test DSN.
func SetupAndTeardownTestDB(baseDSN string, initFunc func(string) error) (teardown func() error, err error) {
	testDSN, adminDSN, testDB, err := DeriveTestDSN(baseDSN)
	if err != nil {
		return nil, err
	}
	if os.Getenv("APP_ENV") == "production" {
		return nil, errors.New("APP_ENV=production, aborting tests")
	}

	if err := CreateTestDatabase(adminDSN, testDB); err != nil {
		return nil, fmt.Errorf("create DB %q: %w (POSTGRES_DSN -> %s)", testDB, err, redactDSN(baseDSN))
	}
	log.Printf("test DB %q created", testDB)

	root, err := internal.FindRepoRoot()
	if err != nil {
		_ = DropTestDatabase(adminDSN, testDB)
		return nil, fmt.Errorf("repo root not found: %w", err)
	}
	if err := db.Migrate(testDSN, filepath.Join(root, "migrations")); err != nil {
		_ = DropTestDatabase(adminDSN, testDB)
		return nil, err
	}
	if initFunc != nil {
		if err := initFunc(testDSN); err != nil {
			_ = DropTestDatabase(adminDSN, testDB)
			return nil, fmt.Errorf("init postgres: %w (POSTGRES_DSN -> %s)", err, redactDSN(baseDSN))
		}
	}

	teardown = func() error {
		return DropTestDatabase(adminDSN, testDB)
	}
	return teardown, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	username := u.User.Username()
	if username == "" {
		return dsn
	}
	u.User = url.UserPassword(username, "******")
	return u.String()
}
