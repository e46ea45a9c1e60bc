// Package archive records allocation runs into a SQL ledger. The ledger is
// written once per run and is never read back by allocation: published CSV
// files remain the source of truth for incremental runs.
package archive

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/locker"
)

// Dialect of a Store's database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Config of an archive Store.
type Config struct {
	DSN string `long:"dsn" env:"DSN" description:"Archive database DSN. postgres:// DSNs use PostgreSQL, and others (sqlite3://path, file:path, or a bare path) use SQLite. If empty, runs are not archived"`
}

// Store is a SQL ledger of allocation runs.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open the Store of |dsn|, selecting a driver by its scheme.
func Open(dsn string) (*Store, error) {
	var s = new(Store)
	var driver, source string

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, source, s.Dialect = "postgres", dsn, Postgres
	case strings.HasPrefix(dsn, "sqlite3://"):
		driver, source, s.Dialect = "sqlite3", strings.TrimPrefix(dsn, "sqlite3://"), SQLite
	default:
		driver, source, s.Dialect = "sqlite3", dsn, SQLite
	}

	var err error
	if s.DB, err = sql.Open(driver, source); err != nil {
		return nil, errors.WithMessagef(err, "opening %s archive", driver)
	}
	if s.Dialect == SQLite {
		// SQLite permits only one writer, and each connection of an
		// in-memory database is a distinct database.
		s.DB.SetMaxOpenConns(1)
	}
	return s, nil
}

// Close the Store.
func (s *Store) Close() error { return s.DB.Close() }

// Init creates ledger tables which don't already exist.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range []string{createRunsStmt, createPlacementsStmt, createLockersStmt} {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return errors.WithMessage(err, "creating archive tables")
		}
	}
	return nil
}

// RunRecord describes an archived run.
type RunRecord struct {
	ID uuid.UUID
	// Kind of the run: "seats" or "lockers".
	Kind string
	// Mode of the run: "normal" or "add".
	Mode string
	// Seed of the run's *rand.Rand.
	Seed uint64
	// InputSHA256 is the hex digest of the run's primary input file.
	InputSHA256 string
	StartedAt   time.Time
	// Shortfall is the number of entities which could not be assigned.
	Shortfall int
}

// NewRun returns a RunRecord with a new random ID.
func NewRun(kind, mode string, seed uint64, inputSHA256 string) RunRecord {
	return RunRecord{
		ID:          uuid.New(),
		Kind:        kind,
		Mode:        mode,
		Seed:        seed,
		InputSHA256: inputSHA256,
		StartedAt:   time.Now().UTC(),
	}
}

// RecordSeats archives |run| and its seat |placements| within one transaction.
func (s *Store) RecordSeats(ctx context.Context, run RunRecord, placements []allocator.Placement) error {
	return s.record(ctx, run, len(placements), insertPlacementStmt, func(stmt *sql.Stmt) error {
		for i, p := range placements {
			if _, err := stmt.ExecContext(ctx, run.ID.String(), i, p.Name, p.IDSuffix, p.Room, p.Seat, p.FirstChoice); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordLockers archives |run| and its locker |assignments| within one transaction.
func (s *Store) RecordLockers(ctx context.Context, run RunRecord, assignments []locker.Assignment) error {
	return s.record(ctx, run, len(assignments), insertLockerStmt, func(stmt *sql.Stmt) error {
		for i, a := range assignments {
			var p = a.Placement
			if _, err := stmt.ExecContext(ctx, run.ID.String(), i, p.Name, p.IDSuffix, p.Room, p.Seat,
				a.Locker.Location, a.Locker.Number); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) record(ctx context.Context, run RunRecord, assigned int, insert string, fn func(*sql.Stmt) error) (err error) {
	var txn *sql.Tx
	if txn, err = s.DB.BeginTx(ctx, nil); err != nil {
		return errors.WithMessage(err, "beginning archive transaction")
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	if _, err = txn.ExecContext(ctx, s.rebind(insertRunStmt),
		run.ID.String(), run.Kind, run.Mode, strconv.FormatUint(run.Seed, 10),
		run.InputSHA256, run.StartedAt, assigned, run.Shortfall,
	); err != nil {
		return errors.WithMessage(err, "inserting run")
	}

	var stmt *sql.Stmt
	if stmt, err = txn.PrepareContext(ctx, s.rebind(insert)); err != nil {
		return errors.WithMessage(err, "preparing insert")
	}
	defer stmt.Close()

	if err = fn(stmt); err != nil {
		return errors.WithMessage(err, "inserting rows")
	} else if err = txn.Commit(); err != nil {
		return errors.WithMessage(err, "committing archive transaction")
	}

	log.WithFields(log.Fields{
		"run":  run.ID,
		"kind": run.Kind,
		"rows": assigned,
	}).Info("archived run")

	return nil
}

// rebind rewrites '?' placeholders of |query| into the Store's Dialect.
func (s *Store) rebind(query string) string {
	if s.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	var n int

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const createRunsStmt = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY NOT NULL,
	kind         TEXT NOT NULL,
	mode         TEXT NOT NULL,
	seed         TEXT NOT NULL,
	input_sha256 TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	assigned     INTEGER NOT NULL,
	shortfall    INTEGER NOT NULL
);`

const createPlacementsStmt = `
CREATE TABLE IF NOT EXISTS placements (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	ordinal      INTEGER NOT NULL,
	name         TEXT NOT NULL,
	id_suffix    TEXT NOT NULL,
	room         TEXT NOT NULL,
	seat         TEXT NOT NULL,
	first_choice BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);`

const createLockersStmt = `
CREATE TABLE IF NOT EXISTS lockers (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	ordinal         INTEGER NOT NULL,
	name            TEXT NOT NULL,
	id_suffix       TEXT NOT NULL,
	room            TEXT NOT NULL,
	seat            TEXT NOT NULL,
	locker_location TEXT NOT NULL,
	locker_number   INTEGER NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);`

const insertRunStmt = `
INSERT INTO runs (id, kind, mode, seed, input_sha256, started_at, assigned, shortfall)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

const insertPlacementStmt = `
INSERT INTO placements (run_id, ordinal, name, id_suffix, room, seat, first_choice)
VALUES (?, ?, ?, ?, ?, ?, ?);`

const insertLockerStmt = `
INSERT INTO lockers (run_id, ordinal, name, id_suffix, room, seat, locker_location, locker_number)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
