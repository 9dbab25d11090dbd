// Package database implements the Database Core of spec.md §4.5: handle
// lifecycle (create/open/close), point access (get/has/count/keys/values/
// entries), writes (set/push/merge), and the import/export framing that
// sits on top of package shred's wire codec. Never deals with DDL text
// parsing — DDL is generated deterministically from a compiled schema,
// never hand-authored or diffed.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/taslite/taslite/compiler"
	"github.com/taslite/taslite/storage"
	"github.com/taslite/taslite/tasl"
	"github.com/taslite/taslite/util"
)

// DB is an open handle: one storage connection, its compiled schema, and
// the prepared statements the teacher's sqlite3 wrapper never needed
// because it only ever dumped DDL text (spec.md §4.5, "prepared
// statements cached by class index").
type DB struct {
	storage  *storage.Handle
	schema   *tasl.Schema
	layouts  []*compiler.Layout // indexed by class index
	byKey    map[string]int     // class key -> class index
	stmts    []*classStmts      // indexed by class index
	readOnly bool
}

type classStmts struct {
	has    *sql.Stmt
	get    *sql.Stmt
	count  *sql.Stmt
	insert *sql.Stmt // RETURNING id

	upsertSQL string // text form of upsert
	upsert    *sql.Stmt
}

const schemasDDL = `CREATE TABLE "schemas" ("id" INTEGER PRIMARY KEY, "value" BLOB NOT NULL)`

// Create opens storage at path (or an in-memory database if path is
// empty), persists schema, and creates every class table. Foreign-key
// enforcement is on throughout (spec.md §4.5).
func Create(path string, schema *tasl.Schema) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	h, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	layouts, err := compiler.Compile(schema)
	if err != nil {
		h.Close()
		return nil, err
	}
	if _, err := h.Exec(schemasDDL); err != nil {
		h.Close()
		return nil, err
	}
	if _, err := h.Exec(`INSERT INTO "schemas" ("id", "value") VALUES (0, ?)`, tasl.EncodeSchema(schema)); err != nil {
		h.Close()
		return nil, err
	}
	for _, l := range orderByDependency(layouts) {
		if _, err := h.Exec(compiler.CreateTableDDL(l)); err != nil {
			h.Close()
			return nil, err
		}
	}
	db, err := newDB(h, schema, layouts, false)
	if err != nil {
		h.Close()
		return nil, err
	}
	return db, nil
}

// Open opens an existing database file, decodes its persisted schema
// blob, and rebuilds prepared statements against it. readOnly prevents
// every write operation from proceeding (spec.md §6 "readOnly (open)").
func Open(path string, readOnly bool) (*DB, error) {
	h, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	var blob []byte
	row := h.DB().QueryRow(`SELECT "value" FROM "schemas" WHERE "id" = 0`)
	if err := row.Scan(&blob); err != nil {
		h.Close()
		return nil, tasl.NewStorageErr("read persisted schema", err)
	}
	schema, err := tasl.DecodeSchema(blob)
	if err != nil {
		h.Close()
		return nil, err
	}
	layouts, err := compiler.Compile(schema)
	if err != nil {
		h.Close()
		return nil, err
	}
	db, err := newDB(h, schema, layouts, readOnly)
	if err != nil {
		h.Close()
		return nil, err
	}
	return db, nil
}

func newDB(h *storage.Handle, schema *tasl.Schema, layouts []*compiler.Layout, readOnly bool) (*DB, error) {
	db := &DB{
		storage:  h,
		schema:   schema,
		layouts:  layouts,
		byKey:    map[string]int{},
		stmts:    make([]*classStmts, len(layouts)),
		readOnly: readOnly,
	}
	for _, c := range schema.Classes() {
		db.byKey[c.Key] = c.Index
		cs, err := prepareClassStmts(h.DB(), layouts[c.Index])
		if err != nil {
			return nil, err
		}
		db.stmts[c.Index] = cs
	}
	return db, nil
}

func prepareClassStmts(sqlDB *sql.DB, l *compiler.Layout) (*classStmts, error) {
	table := escapeSQLName(l.Table)
	names := util.TransformSlice(l.Columns, func(c compiler.Column) string { return escapeSQLName(c.Name) })
	placeholders := util.TransformSlice(l.Columns, func(compiler.Column) string { return "?" })
	sets := util.TransformSlice(names, func(n string) string { return fmt.Sprintf("%s = excluded.%s", n, n) })

	hasSQL := fmt.Sprintf(`SELECT 1 FROM %s WHERE "id" = ? LIMIT 1`, table)
	getSQL := fmt.Sprintf(`SELECT %s FROM %s WHERE "id" = ?`, joinNames(names), table)
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
	insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING "id"`,
		table, joinNames(names), joinNames(placeholders))
	upsertSQL := fmt.Sprintf(
		`INSERT INTO %s ("id", %s) VALUES (?, %s) ON CONFLICT("id") DO UPDATE SET %s`,
		table, joinNames(names), joinNames(placeholders), joinNames(sets))

	cs := &classStmts{upsertSQL: upsertSQL}
	var err error
	if cs.has, err = sqlDB.Prepare(hasSQL); err != nil {
		return nil, tasl.NewStorageErr("prepare has statement", err)
	}
	if cs.get, err = sqlDB.Prepare(getSQL); err != nil {
		return nil, tasl.NewStorageErr("prepare get statement", err)
	}
	if cs.count, err = sqlDB.Prepare(countSQL); err != nil {
		return nil, tasl.NewStorageErr("prepare count statement", err)
	}
	if cs.insert, err = sqlDB.Prepare(insertSQL); err != nil {
		return nil, tasl.NewStorageErr("prepare insert statement", err)
	}
	if cs.upsert, err = sqlDB.Prepare(upsertSQL); err != nil {
		return nil, tasl.NewStorageErr("prepare upsert statement", err)
	}
	return cs, nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func escapeSQLName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Close finalizes every prepared statement and closes the connection.
func (db *DB) Close() error {
	for _, cs := range db.stmts {
		if cs == nil {
			continue
		}
		cs.has.Close()
		cs.get.Close()
		cs.count.Close()
		cs.insert.Close()
		cs.upsert.Close()
	}
	return db.storage.Close()
}

// Schema returns the handle's compiled schema.
func (db *DB) Schema() *tasl.Schema { return db.schema }

func (db *DB) lookup(key string) (*compiler.Layout, *classStmts, error) {
	idx, ok := db.byKey[key]
	if !ok {
		return nil, nil, tasl.NewLookupErr("unknown class %q", key)
	}
	return db.layouts[idx], db.stmts[idx], nil
}

// orderByDependency orders layouts so a referenced class's table is
// created before any table whose foreign key points at it, where
// possible. Schemas may contain mutually-referencing classes (e.g. two
// classes referencing each other), which have no valid topological
// order; sqlite accepts a CREATE TABLE whose FOREIGN KEY names a table
// that does not exist yet regardless of PRAGMA foreign_keys, so in that
// case table-creation order doesn't matter and we fall back to
// class-index order.
func orderByDependency(layouts []*compiler.Layout) []*compiler.Layout {
	deps := make(map[string][]string, len(layouts))
	for _, l := range layouts {
		var ds []string
		for _, c := range l.Columns {
			if c.IsRef {
				ds = append(ds, c.ForeignKey.Class)
			}
		}
		deps[l.ClassKey] = ds
	}
	sorted := topologicalSort(layouts, deps, func(l *compiler.Layout) string { return l.ClassKey })
	if len(sorted) != len(layouts) {
		return layouts
	}
	return sorted
}
