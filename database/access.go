package database

import (
	"database/sql"
	"fmt"
	"iter"

	"github.com/taslite/taslite/compiler"
	"github.com/taslite/taslite/shred"
	"github.com/taslite/taslite/tasl"
)

// Get fetches and reassembles the value with the given id in class key.
func (db *DB) Get(key string, id uint64) (*tasl.Value, error) {
	layout, cs, err := db.lookup(key)
	if err != nil {
		return nil, err
	}
	row, err := scanRow(cs.get.QueryRow(int64(id)), layout)
	if err == sql.ErrNoRows {
		return nil, tasl.NewLookupErr("no element in %s with id %d", key, id)
	}
	if err != nil {
		return nil, err
	}
	return shred.Reassemble(layout.Type, row)
}

// Has reports whether an element with id exists in class key.
func (db *DB) Has(key string, id uint64) (bool, error) {
	_, cs, err := db.lookup(key)
	if err != nil {
		return false, err
	}
	var dummy int
	err = cs.has.QueryRow(int64(id)).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, tasl.NewStorageErr("has", err)
	}
	return true, nil
}

// Count returns the number of elements in class key.
func (db *DB) Count(key string) (uint64, error) {
	_, cs, err := db.lookup(key)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := cs.count.QueryRow().Scan(&n); err != nil {
		return 0, tasl.NewStorageErr("count", err)
	}
	return uint64(n), nil
}

// Entry is one id/value pair yielded by Entries, in ascending id order.
type Entry struct {
	ID    uint64
	Value *tasl.Value
}

// Keys lazily yields every id in class key, ascending. The underlying
// cursor is released as soon as the consumer stops ranging (spec.md §5,
// "a dropped iterator must release its underlying statement cursor").
func (db *DB) Keys(key string) (iter.Seq2[uint64, error], error) {
	layout, _, err := db.lookup(key)
	if err != nil {
		return nil, err
	}
	table := escapeSQLName(layout.Table)
	return func(yield func(uint64, error) bool) {
		rows, err := db.storage.DB().Query(fmt.Sprintf(`SELECT "id" FROM %s ORDER BY "id"`, table))
		if err != nil {
			yield(0, tasl.NewStorageErr("keys", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				yield(0, tasl.NewStorageErr("keys", err))
				return
			}
			if !yield(uint64(id), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(0, tasl.NewStorageErr("keys", err))
		}
	}, nil
}

// Values lazily yields every value in class key, ascending by id.
func (db *DB) Values(key string) (iter.Seq2[*tasl.Value, error], error) {
	entries, err := db.Entries(key)
	if err != nil {
		return nil, err
	}
	return func(yield func(*tasl.Value, error) bool) {
		for e, err := range entries {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(e.Value, nil) {
				return
			}
		}
	}, nil
}

// Entries lazily yields every (id, value) pair in class key, ascending
// by id.
func (db *DB) Entries(key string) (iter.Seq2[Entry, error], error) {
	layout, _, err := db.lookup(key)
	if err != nil {
		return nil, err
	}
	table := escapeSQLName(layout.Table)
	cols := make([]string, len(layout.Columns))
	for i, c := range layout.Columns {
		cols[i] = escapeSQLName(c.Name)
	}
	query := fmt.Sprintf(`SELECT "id", %s FROM %s ORDER BY "id"`, joinNames(cols), table)
	return func(yield func(Entry, error) bool) {
		rows, err := db.storage.DB().Query(query)
		if err != nil {
			yield(Entry{}, tasl.NewStorageErr("entries", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			dest := make([]any, len(layout.Columns)+1)
			dest[0] = &id
			row := make(shred.Row, len(layout.Columns))
			for i := range layout.Columns {
				dest[i+1] = &row[i]
			}
			if err := rows.Scan(dest...); err != nil {
				yield(Entry{}, tasl.NewStorageErr("entries", err))
				return
			}
			v, err := shred.Reassemble(layout.Type, row)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(Entry{ID: uint64(id), Value: v}, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, tasl.NewStorageErr("entries", err))
		}
	}, nil
}

// scanRow scans a *sql.Row produced by a class's get statement into a
// shred.Row ready for Reassemble.
func scanRow(r *sql.Row, layout *compiler.Layout) (shred.Row, error) {
	row := make(shred.Row, len(layout.Columns))
	dest := make([]any, len(row))
	for i := range row {
		dest[i] = &row[i]
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	return row, nil
}
