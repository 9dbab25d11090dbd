package compiler

import (
	"fmt"
	"strings"
)

// sqlTypeName returns the SQLite storage class keyword for a column. Kept
// as a small lookup rather than a method on SQLType so CreateTableDDL
// reads the way the teacher's generator.go composes column definitions
// piece by piece.
func sqlTypeName(t SQLType) string {
	switch t {
	case SQLText:
		return "TEXT"
	case SQLInteger:
		return "INTEGER"
	case SQLReal:
		return "REAL"
	case SQLBlob:
		return "BLOB"
	default:
		panic("compiler: unreachable SQL type")
	}
}

// escapeSQLName quotes an identifier the way sqlite expects, mirroring
// the teacher's escapeSQLName helpers (one per dialect) collapsed to the
// single dialect taslite targets.
func escapeSQLName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableDDL renders the CREATE TABLE statement for a compiled
// layout: the reserved `id INTEGER PRIMARY KEY AUTOINCREMENT` column,
// followed by every structural column in canonical order, followed by one
// FOREIGN KEY clause per reference column (spec.md §4.2/§6).
func CreateTableDDL(l *Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", escapeSQLName(l.Table))
	fmt.Fprintf(&b, "  %s INTEGER PRIMARY KEY AUTOINCREMENT", escapeSQLName("id"))

	for _, c := range l.Columns {
		b.WriteString(",\n  ")
		b.WriteString(escapeSQLName(c.Name))
		b.WriteByte(' ')
		b.WriteString(sqlTypeName(c.SQLType))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	for _, c := range l.Columns {
		if !c.IsRef {
			continue
		}
		b.WriteString(",\n  FOREIGN KEY (")
		b.WriteString(escapeSQLName(c.Name))
		b.WriteString(") REFERENCES ")
		b.WriteString(escapeSQLName(c.ForeignKey.Table))
		b.WriteString("(")
		b.WriteString(escapeSQLName("id"))
		b.WriteString(")")
	}

	b.WriteString("\n)")
	return b.String()
}
