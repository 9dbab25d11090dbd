package database

import (
	"context"
	"fmt"

	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/shred"
	"github.com/taslite/taslite/tasl"
)

// Import creates a fresh database at path with schema, reads a whole
// instance from src, and upserts every row with foreign-key enforcement
// disabled for the duration, so a reference may point at an element that
// appears later in the stream (spec.md §4.5/§5). Enforcement is switched
// back on afterwards; no foreign-key check is run over the imported rows.
func Import(path string, schema *tasl.Schema, src codec.ChunkSource) (*DB, error) {
	db, err := Create(path, schema)
	if err != nil {
		return nil, err
	}
	if _, err := db.storage.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		db.Close()
		return nil, err
	}

	dec := codec.NewDecoder(src)
	readErr := shred.ReadInstance(dec, schema, func(classIndex int, els []shred.Element) error {
		c, _ := schema.ClassByIndex(classIndex)
		layout := db.layouts[classIndex]
		cs := db.stmts[classIndex]
		for _, el := range els {
			row, err := shred.Shred(layout.Type, el.Value)
			if err != nil {
				return err
			}
			args := make([]any, 0, len(row)+1)
			args = append(args, int64(el.ID))
			args = append(args, row...)
			if _, err := cs.upsert.Exec(args...); err != nil {
				return tasl.NewStorageErr("import "+c.Key, err)
			}
		}
		return nil
	})

	if _, err := db.storage.Exec("PRAGMA foreign_keys = ON"); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		db.Close()
		return nil, readErr
	}
	return db, nil
}

// Export writes a whole instance to sink under one consistent read view
// (spec.md §4.5, "All under one read view").
func (db *DB) Export(sink codec.ChunkSink, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = codec.DefaultChunkSize
	}
	enc, err := codec.NewEncoder(sink, chunkSize)
	if err != nil {
		return err
	}
	tx, err := db.storage.ReadOnlySnapshot(context.Background())
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = shred.WriteInstance(enc, db.schema, func(classIndex int) ([]shred.Element, error) {
		layout := db.layouts[classIndex]
		table := escapeSQLName(layout.Table)
		cols := make([]string, len(layout.Columns))
		for i, c := range layout.Columns {
			cols[i] = escapeSQLName(c.Name)
		}
		rows, err := tx.Query(fmt.Sprintf(`SELECT "id", %s FROM %s ORDER BY "id"`, joinNames(cols), table))
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var els []shred.Element
		for rows.Next() {
			var id int64
			row := make(shred.Row, len(layout.Columns))
			dest := make([]any, len(row)+1)
			dest[0] = &id
			for i := range row {
				dest[i+1] = &row[i]
			}
			if err := rows.Scan(dest...); err != nil {
				return nil, tasl.NewStorageErr("export", err)
			}
			v, err := shred.Reassemble(layout.Type, row)
			if err != nil {
				return nil, err
			}
			els = append(els, shred.Element{ID: uint64(id), Value: v})
		}
		if err := rows.Err(); err != nil {
			return nil, tasl.NewStorageErr("export", err)
		}
		return els, nil
	})
	if err != nil {
		return err
	}
	return enc.Close()
}
