package relhost

import "fmt"

// ColumnType is one of the four SQLite storage classes a column may
// declare in its schema string.
type ColumnType int

const (
	Integer ColumnType = iota
	Text
	Real
	Blob
)

// String renders the SQL type keyword used in CREATE TABLE schema strings.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Text:
		return "TEXT"
	case Real:
		return "REAL"
	case Blob:
		return "BLOB"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// Getter reads one column's value for the row at index i.
type Getter func(i int) (any, error)

// Setter writes v into one column for the row at index i. Called only on
// columns declared writable.
type Setter func(i int, v Value) error

// column is the resolved descriptor for one table column: its declared
// shape (name, type, writable) plus the host callbacks that read and,
// for writable columns, write it.
type column struct {
	name     string
	typ      ColumnType
	writable bool
	get      Getter
	set      Setter
}

func (c column) schemaFragment() string {
	return fmt.Sprintf("%s %s", c.name, c.typ)
}
