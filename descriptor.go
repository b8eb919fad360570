package relhost

import "strings"

// filterDescriptor declares an equality-pushdown lookup on one column: the
// iterator factory it drives, and the planner cost/row estimates used to
// rank it against a hash index or a full scan.
type filterDescriptor struct {
	column       string
	columnIdx    int // -1 if column is unknown; silently never matched
	estimateCost float64
	estimateRows float64
	newIterator  func(v Value) (rowIterator, error)
}

// indexDescriptor declares a hash-backed equality lookup, available only on
// the cached flavor. Its plan cost is hashIndexCost, so it outranks a
// filterDescriptor on the same constraint unless that filter's declared
// cost is lower.
type indexDescriptor struct {
	column    string
	columnIdx int
}

// rowIterator is the pushdown iteration contract every flavor's cursor
// drives once a filter or index plan is selected. Cursor termination is
// driven exclusively by advance()'s return value, never by a separate EOF
// check that could otherwise never observe termination.
type rowIterator interface {
	// advance moves to the next row, returning false when exhausted. It
	// must be called once before the first Column/Rowid access.
	advance() bool
	column(col int) (any, error)
	rowid() (int64, error)
}

// tableDescriptor is the common, flavor-agnostic shape every builder
// produces: table name, resolved columns, and the filter/index lookups the
// planner may choose between. Flavor-specific fields (getters bound to a
// live index, a cache builder, a generator factory) live alongside this in
// each builder's own descriptor type.
type tableDescriptor struct {
	name    string
	columns []column
	filters []filterDescriptor
	indexes []indexDescriptor

	// deleteHandler and insertHandler are nil unless the builder's
	// Deletable/Insertable was called; their presence, not a separate
	// bool, is what makes the indexed adapter accept the mutation.
	deleteHandler func(rowIdx int) error
	insertHandler func(values []Value) (int64, error)

	onModify    func(stmt string)
	estimateRow func() int64
}

func (d *tableDescriptor) deletable() bool  { return d.deleteHandler != nil }
func (d *tableDescriptor) insertable() bool { return d.insertHandler != nil }

func (d *tableDescriptor) columnIndex(name string) int {
	for i, c := range d.columns {
		if c.name == name {
			return i
		}
	}
	return -1
}

// schema renders the CREATE TABLE fragment the engine requires from
// Create/Connect to declare this table's shape.
func (d *tableDescriptor) schema() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.name)
	b.WriteString("(")
	for i, c := range d.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.schemaFragment())
	}
	b.WriteString(")")
	return b.String()
}

func (d *tableDescriptor) fireModify(stmt string) {
	if d.onModify != nil {
		d.onModify(stmt)
	}
}
