// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package bstore

// setup for the document store db
// includes migration support and txwrap setup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sawka/txwrap"

	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	dbfs "github.com/agencyforge/pagebuilder/db"
)

const BStoreDBName = "pagebuilder.db"
const InMemoryDBPath = ":memory:"
const migrationsDir = "migrations-bstore"

type TxWrap = txwrap.TxWrap

// Store persists documents.  safe for concurrent use, sqlite is limited to a single connection.
type Store struct {
	db *sqlx.DB
}

func GetDefaultDBPath() string {
	return filepath.Join(builderbase.GetDataDir(), builderbase.DBDir, BStoreDBName)
}

func openDB(dbPath string) (*sqlx.DB, error) {
	var rtn *sqlx.DB
	var err error
	if dbPath == InMemoryDBPath {
		log.Printf("[db] using in-memory db\n")
		rtn, err = sqlx.Open("sqlite3", InMemoryDBPath)
	} else {
		log.Printf("[db] opening db %s\n", dbPath)
		rtn, err = sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", dbPath))
	}
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	rtn.DB.SetMaxOpenConns(1)
	return rtn, nil
}

// MakeStore opens (creating if needed) the db at dbPath and runs migrations.
// dbPath ":memory:" gives a private in-memory db, "" uses the default location in the data dir.
func MakeStore(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath == "" {
		if err := builderbase.EnsureDBDir(); err != nil {
			return nil, err
		}
		dbPath = GetDefaultDBPath()
	}
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening db %s: %w", dbPath, err)
	}
	err = migrateDB("bstore", db.DB, dbfs.BStoreMigrationFS, migrationsDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("bstore initialized\n")
	return &Store{db: db}, nil
}

// MakeStoreWithDB wraps an already migrated db
func MakeStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) WithTx(ctx context.Context, fn func(tx *TxWrap) error) error {
	return txwrap.WithTx(ctx, s.db, fn)
}

func WithTxRtn[RT any](ctx context.Context, s *Store, fn func(tx *TxWrap) (RT, error)) (RT, error) {
	return txwrap.WithTxRtn(ctx, s.db, fn)
}

func getMigrateVersion(m *migrate.Migrate) (uint, bool, error) {
	curVersion, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return curVersion, dirty, err
}

func makeMigrate(storeName string, db *sql.DB, migrationFS fs.FS, dirName string) (*migrate.Migrate, error) {
	fsVar, err := iofs.New(migrationFS, dirName)
	if err != nil {
		return nil, fmt.Errorf("opening iofs: %w", err)
	}
	mdriver, err := sqlite3migrate.WithInstance(db, &sqlite3migrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("making %s migration driver: %w", storeName, err)
	}
	m, err := migrate.NewWithInstance("iofs", fsVar, "sqlite3", mdriver)
	if err != nil {
		return nil, fmt.Errorf("making %s migration: %w", storeName, err)
	}
	return m, nil
}

func migrateDB(storeName string, db *sql.DB, migrationFS fs.FS, dirName string) error {
	m, err := makeMigrate(storeName, db, migrationFS, dirName)
	if err != nil {
		return err
	}
	curVersion, dirty, err := getMigrateVersion(m)
	if err != nil {
		return fmt.Errorf("%s, cannot get current migration version: %w", storeName, err)
	}
	if dirty {
		return fmt.Errorf("%s, migrate up, database is dirty", storeName)
	}
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating %s: %w", storeName, err)
	}
	newVersion, _, err := getMigrateVersion(m)
	if err != nil {
		return fmt.Errorf("%s, cannot get new migration version: %w", storeName, err)
	}
	if newVersion != curVersion {
		log.Printf("[db] %s migration done, version %d -> %d\n", storeName, curVersion, newVersion)
	}
	return nil
}
