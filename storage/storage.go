// Package storage wraps modernc.org/sqlite as the embedded, synchronous,
// foreign-key-capable, auto-increment-capable storage engine spec.md
// §4.5 requires (ported from the teacher's database/sqlite3 wrapper,
// generalized past its single DumpDDLs/tableNames use to the prepared
// statement and transaction handling the database core needs).
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/taslite/taslite/tasl"
)

// Handle owns one sqlite connection for the lifetime of a taslite
// database handle (spec.md §5, "the storage handle... [is] owned
// exclusively by the database handle").
type Handle struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite file at path and turns on
// foreign-key enforcement, which sqlite otherwise leaves off per
// connection.
func Open(path string) (*Handle, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, tasl.NewStorageErr("open "+path, err)
	}
	db.SetMaxOpenConns(1) // one handle, one connection: §5's single-writer model
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, tasl.NewStorageErr("enable foreign keys", err)
	}
	return &Handle{db: db}, nil
}

func (h *Handle) Close() error {
	if err := h.db.Close(); err != nil {
		return tasl.NewStorageErr("close", err)
	}
	return nil
}

func (h *Handle) DB() *sql.DB { return h.db }

// Exec runs a DDL or non-row-returning statement outside any transaction
// the caller is managing.
func (h *Handle) Exec(query string, args ...any) (sql.Result, error) {
	res, err := h.db.Exec(query, args...)
	if err != nil {
		return nil, tasl.NewStorageErr(fmt.Sprintf("exec %q", query), err)
	}
	return res, nil
}

// Tx is a storage-level transaction, used by merge (atomic multi-element
// commit) and by any multi-statement write the database core issues.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns or panics with — the atomicity merge
// requires (spec.md §5: "either all elements in the call are committed,
// or none are").
func (h *Handle) WithTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqlTx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return tasl.NewStorageErr("begin transaction", err)
	}
	tx := &Tx{tx: sqlTx}
	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			sqlTx.Rollback()
			return
		}
		err = sqlTx.Commit()
		if err != nil {
			err = tasl.NewStorageErr("commit transaction", err)
		}
	}()
	err = fn(tx)
	return err
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	res, err := t.tx.Exec(query, args...)
	if err != nil {
		return nil, tasl.NewStorageErr(fmt.Sprintf("exec %q", query), err)
	}
	return res, nil
}

func (t *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, tasl.NewStorageErr(fmt.Sprintf("query %q", query), err)
	}
	return rows, nil
}

func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRow(query, args...)
}

// Stmt rebinds a statement prepared against the handle's connection to
// this transaction, the way merge reuses the per-class upsert statement
// inside its single transaction instead of re-preparing SQL text per row.
func (t *Tx) Stmt(stmt *sql.Stmt) *sql.Stmt {
	return t.tx.Stmt(stmt)
}

// ReadOnlySnapshot begins a transaction suitable for export's consistent
// read (spec.md's Open Question decision, DESIGN.md: export runs inside
// a read-only transaction so concurrent writes — disallowed by §5 but
// still guarded here — can never produce a torn snapshot).
func (h *Handle) ReadOnlySnapshot(ctx context.Context) (*Tx, error) {
	sqlTx, err := h.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, tasl.NewStorageErr("begin read-only snapshot", err)
	}
	return &Tx{tx: sqlTx}, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return tasl.NewStorageErr("commit", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return tasl.NewStorageErr("rollback", err)
	}
	return nil
}
