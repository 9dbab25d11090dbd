package database

import (
	"context"
	"errors"

	"github.com/taslite/taslite/shred"
	"github.com/taslite/taslite/storage"
	"github.com/taslite/taslite/tasl"
)

var errReadOnly = tasl.NewStorageErr("write on read-only handle", errors.New("handle was opened with readOnly=true"))

// Set shreds value and upserts it at id in class key (spec.md §4.5:
// "INSERT ... ON CONFLICT(id) DO UPDATE SET ...").
func (db *DB) Set(key string, id uint64, value *tasl.Value) error {
	if db.readOnly {
		return errReadOnly
	}
	layout, cs, err := db.lookup(key)
	if err != nil {
		return err
	}
	row, err := shred.Shred(layout.Type, value)
	if err != nil {
		return err
	}
	args := make([]any, 0, len(row)+1)
	args = append(args, int64(id))
	args = append(args, row...)
	if _, err := cs.upsert.Exec(args...); err != nil {
		return tasl.NewStorageErr("set "+key, err)
	}
	return nil
}

// Push shreds value, inserts it with an auto-assigned id, and returns
// that id.
func (db *DB) Push(key string, value *tasl.Value) (uint64, error) {
	if db.readOnly {
		return 0, errReadOnly
	}
	layout, cs, err := db.lookup(key)
	if err != nil {
		return 0, err
	}
	row, err := shred.Shred(layout.Type, value)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := cs.insert.QueryRow(row...).Scan(&id); err != nil {
		return 0, tasl.NewStorageErr("push "+key, err)
	}
	return uint64(id), nil
}

// Merge writes every element of elementsByKey in a single transaction
// with foreign-key enforcement disabled for its duration, so elements
// that reference each other across classes can resolve once every
// insert has run. It checks for violations with PRAGMA foreign_key_check
// immediately before commit and aborts the whole transaction — leaving
// nothing visible — if any are found (spec.md §4.5, §8 property 7).
func (db *DB) Merge(elementsByKey map[string][]shred.Element) error {
	if db.readOnly {
		return errReadOnly
	}
	if _, err := db.storage.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	defer db.storage.Exec("PRAGMA foreign_keys = ON")

	return db.storage.WithTx(context.Background(), func(tx *storage.Tx) error {
		for key, elements := range elementsByKey {
			layout, cs, err := db.lookup(key)
			if err != nil {
				return err
			}
			txUpsert := tx.Stmt(cs.upsert)
			for _, el := range elements {
				row, err := shred.Shred(layout.Type, el.Value)
				if err != nil {
					return err
				}
				args := make([]any, 0, len(row)+1)
				args = append(args, int64(el.ID))
				args = append(args, row...)
				if _, err := txUpsert.Exec(args...); err != nil {
					return tasl.NewStorageErr("merge "+key, err)
				}
			}
		}

		rows, err := tx.Query("PRAGMA foreign_key_check")
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			return tasl.NewStorageErr("merge", errors.New("foreign key violation"))
		}
		return rows.Err()
	})
}
