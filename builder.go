package relhost

// Builder declares an indexed table: host data addressed by a live row
// index in [0, Count()), read on every access.
type Builder struct {
	desc     tableDescriptor
	rowCount func() int
}

// Table starts a new indexed table declaration named name.
func Table(name string) *Builder {
	return &Builder{desc: tableDescriptor{name: name}}
}

// Count supplies the row-count procedure driving full scans. It is called
// once per full scan, when the scan starts; the planner never calls it.
func (b *Builder) Count(f func() int) *Builder {
	b.rowCount = f
	return b
}

// EstimateRows supplies the planner's full-scan row estimate. Without it
// the planner uses a fixed default estimate.
func (b *Builder) EstimateRows(f func() int64) *Builder {
	b.desc.estimateRow = f
	return b
}

// OnModify installs a hook fired before each Insert/Update/Delete handler
// runs — even if that handler goes on to fail. The engine makes one such
// call per affected row, so a statement that changes several rows fires
// the hook once per row, not once per statement. stmt is a short
// description such as "DELETE FROM t" or "UPDATE t".
func (b *Builder) OnModify(f func(stmt string)) *Builder {
	b.desc.onModify = f
	return b
}

// Deletable installs the handler DELETE dispatches to, given the row
// index to remove. A table with no handler rejects DELETE as read-only.
func (b *Builder) Deletable(handler func(rowIdx int) error) *Builder {
	b.desc.deleteHandler = handler
	return b
}

// Insertable installs the handler INSERT dispatches to, given the new
// row's column values; it returns the assigned rowid. The indexed flavor
// is the only one that can ever set this; cached and generator tables
// have no way to grow their materialized/generated row set.
func (b *Builder) Insertable(handler func(values []Value) (int64, error)) *Builder {
	b.desc.insertHandler = handler
	return b
}

func (b *Builder) addColumn(name string, typ ColumnType, get Getter, set Setter) *Builder {
	b.desc.columns = append(b.desc.columns, column{
		name:     name,
		typ:      typ,
		writable: set != nil,
		get:      get,
		set:      set,
	})
	return b
}

// ColumnInt declares a read-only INTEGER column.
func (b *Builder) ColumnInt(name string, get Getter) *Builder { return b.addColumn(name, Integer, get, nil) }

// ColumnInt64 declares a read-only INTEGER column. Alias of ColumnInt for
// callers that want to make the 64-bit width explicit at the call site.
func (b *Builder) ColumnInt64(name string, get Getter) *Builder { return b.addColumn(name, Integer, get, nil) }

// ColumnText declares a read-only TEXT column.
func (b *Builder) ColumnText(name string, get Getter) *Builder { return b.addColumn(name, Text, get, nil) }

// ColumnDouble declares a read-only REAL column.
func (b *Builder) ColumnDouble(name string, get Getter) *Builder { return b.addColumn(name, Real, get, nil) }

// ColumnBlob declares a read-only BLOB column.
func (b *Builder) ColumnBlob(name string, get Getter) *Builder { return b.addColumn(name, Blob, get, nil) }

// ColumnIntRW declares a writable INTEGER column.
func (b *Builder) ColumnIntRW(name string, get Getter, set Setter) *Builder {
	return b.addColumn(name, Integer, get, set)
}

// ColumnInt64RW declares a writable INTEGER column.
func (b *Builder) ColumnInt64RW(name string, get Getter, set Setter) *Builder {
	return b.addColumn(name, Integer, get, set)
}

// ColumnTextRW declares a writable TEXT column.
func (b *Builder) ColumnTextRW(name string, get Getter, set Setter) *Builder {
	return b.addColumn(name, Text, get, set)
}

// FilterEq declares an equality-pushdown lookup on column using a
// general-purpose row iterator, with planner cost/row-count estimates for
// ranking it against other plans. Unknown column names are a silent
// no-op: the filter is recorded but can never match a constraint, so the
// planner falls back to a full scan for it.
func (b *Builder) FilterEq(column string, cost, estRows float64, newIter func(v Value) (rowIterator, error)) *Builder {
	b.desc.filters = append(b.desc.filters, filterDescriptor{
		column:       column,
		columnIdx:    b.desc.columnIndex(column),
		estimateCost: cost,
		estimateRows: estRows,
		newIterator:  newIter,
	})
	return b
}

// FilterEqText is FilterEq specialized for a text-valued constraint RHS,
// sparing callers the Value-unwrapping boilerplate.
func (b *Builder) FilterEqText(column string, cost, estRows float64, newIter func(s string) (rowIterator, error)) *Builder {
	return b.FilterEq(column, cost, estRows, func(v Value) (rowIterator, error) {
		s, _ := v.AsText()
		return newIter(s)
	})
}

// Build finalizes the declaration into a registerable descriptor.
func (b *Builder) Build() *IndexedTableDescriptor {
	return &IndexedTableDescriptor{desc: b.desc, rows: b.rowCount}
}

// IndexedTableDescriptor is the built, immutable form of a Builder
// declaration, ready for RegisterVTable.
type IndexedTableDescriptor struct {
	desc tableDescriptor
	rows func() int
}
