// Package db handles all core database interactions of the forum
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/go-playground/log"
	_ "github.com/lib/pq" // Postgres driver
	_ "modernc.org/sqlite" // SQLite driver
)

type dialect uint8

const (
	postgres dialect = iota
	sqlite
)

var (
	// Stores the database instance
	db *sql.DB

	// SQL dialect of the connected database
	dbDialect dialect

	// Statement builder
	sq squirrel.StatementBuilderType

	// Temporary directory of an SQLite test database
	testDir string
)

// LoadDB connects to the database and performs schema upgrades
func LoadDB() error {
	return loadDB(config.Server.Database)
}

// LoadTestDB creates and loads a testing database. Uses a fresh SQLite file,
// unless the TEST_DB environment variable contains a PostgreSQL URL.
func LoadTestDB(suffix string) (err error) {
	common.IsTest = true

	connURL := os.Getenv("TEST_DB")
	if connURL == "" {
		testDir, err = os.MkdirTemp("", "forum_test_"+suffix)
		if err != nil {
			return
		}
		return loadDB("sqlite://" + filepath.Join(testDir, "test.db"))
	}

	run := func(line ...string) error {
		c := exec.Command(line[0], line[1:]...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}
	u, err := url.Parse(connURL)
	if err != nil {
		return
	}
	user := u.User.Username()
	dbName := fmt.Sprintf("%s_%s", strings.Trim(u.Path, "/"), suffix)

	err = run("psql", "-c", "drop database if exists "+dbName, connURL)
	if err != nil {
		return
	}

	fmt.Println("creating test database:", dbName)
	err = run(
		"psql",
		"-c",
		fmt.Sprintf(
			"create database %s with owner %s encoding UTF8",
			dbName, user,
		),
		connURL,
	)
	if err != nil {
		return
	}

	u.Path = "/" + dbName
	return loadDB(u.String())
}

// Split a connection URL into a driver name and data source
func parseConnURL(connURL string) (d dialect, dsn string) {
	switch {
	case strings.HasPrefix(connURL, "sqlite://"):
		return sqlite, strings.TrimPrefix(connURL, "sqlite://")
	case strings.HasPrefix(connURL, "file:"):
		return sqlite, connURL
	default:
		return postgres, connURL
	}
}

func loadDB(connURL string) (err error) {
	var dsn string
	dbDialect, dsn = parseConnURL(connURL)
	switch dbDialect {
	case sqlite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)"
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return
		}
		// SQLite allows only one writer
		db.SetMaxOpenConns(1)
		sq = squirrel.StatementBuilder.
			RunWith(db).
			PlaceholderFormat(squirrel.Question)
	default:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return
		}
		sq = squirrel.StatementBuilder.
			RunWith(db).
			PlaceholderFormat(squirrel.Dollar)
	}

	exists, err := tableExists("main")
	if err != nil {
		return
	}
	if !exists {
		return initDB()
	}
	return runMigrations()
}

func tableExists(name string) (exists bool, err error) {
	var q string
	switch dbDialect {
	case sqlite:
		q = `select exists (
				select 1 from sqlite_master
				where type = 'table' and name = ?
			)`
	default:
		q = `select exists (
				select 1 from information_schema.tables
				where table_schema = 'public' and table_name = $1
			)`
	}
	err = db.QueryRow(q, name).Scan(&exists)
	return
}

// initDB initializes a database
func initDB() (err error) {
	if !common.IsTest {
		log.Info("initializing database")
	}

	err = InTransaction(context.Background(), func(tx *sql.Tx) error {
		return execAll(tx,
			`create table main (
				id text primary key,
				val text not null
			)`,
			`insert into main (id, val) values ('version', '0')`,
		)
	})
	if err != nil {
		return
	}
	return runMigrations()
}

// Close DB and release resources
func Close() (err error) {
	err = db.Close()
	if testDir != "" {
		os.RemoveAll(testDir)
		testDir = ""
	}
	return
}

// ClearTables deletes the contents of specified DB tables. Only used for tests.
func ClearTables(tables ...string) (err error) {
	for _, t := range tables {
		_, err = db.Exec(`delete from ` + t)
		if err != nil {
			return
		}
	}
	return
}
