package relhost

// CachedBuilder declares a cached table: Row values materialized once via
// BuildWith, shared read-only across every connection.
type CachedBuilder[Row any] struct {
	desc          tableDescriptor
	build         func() ([]Row, error)
	readers       []cachedColumn[Row]
	keyExtractors []func(Row) (any, error)
}

// CachedTable starts a new cached table declaration named name.
func CachedTable[Row any](name string) *CachedBuilder[Row] {
	return &CachedBuilder[Row]{desc: tableDescriptor{name: name}}
}

// BuildWith supplies the procedure that materializes the full row set on
// first access. Called once on first access, and once more on the first
// access after each Invalidate, regardless of how many connections read it.
func (b *CachedBuilder[Row]) BuildWith(f func() ([]Row, error)) *CachedBuilder[Row] {
	b.build = f
	return b
}

// EstimateRows overrides the planner's full-scan row estimate.
func (b *CachedBuilder[Row]) EstimateRows(f func() int64) *CachedBuilder[Row] {
	b.desc.estimateRow = f
	return b
}

func (b *CachedBuilder[Row]) addColumn(name string, typ ColumnType, get cachedColumn[Row]) *CachedBuilder[Row] {
	b.desc.columns = append(b.desc.columns, column{name: name, typ: typ})
	b.readers = append(b.readers, get)
	return b
}

// ColumnInt declares an INTEGER column read from a materialized Row.
func (b *CachedBuilder[Row]) ColumnInt(name string, get cachedColumn[Row]) *CachedBuilder[Row] {
	return b.addColumn(name, Integer, get)
}

// ColumnInt64 is an alias of ColumnInt for 64-bit-width emphasis.
func (b *CachedBuilder[Row]) ColumnInt64(name string, get cachedColumn[Row]) *CachedBuilder[Row] {
	return b.addColumn(name, Integer, get)
}

// ColumnText declares a TEXT column read from a materialized Row.
func (b *CachedBuilder[Row]) ColumnText(name string, get cachedColumn[Row]) *CachedBuilder[Row] {
	return b.addColumn(name, Text, get)
}

// ColumnDouble declares a REAL column read from a materialized Row.
func (b *CachedBuilder[Row]) ColumnDouble(name string, get cachedColumn[Row]) *CachedBuilder[Row] {
	return b.addColumn(name, Real, get)
}

// ColumnBlob declares a BLOB column read from a materialized Row.
func (b *CachedBuilder[Row]) ColumnBlob(name string, get cachedColumn[Row]) *CachedBuilder[Row] {
	return b.addColumn(name, Blob, get)
}

// FilterEq declares an equality-pushdown lookup backed by a custom row
// iterator over the materialized rows, ranked against a hash index by
// cost (a hash index costs 1.0) and always preferred over a full scan.
func (b *CachedBuilder[Row]) FilterEq(column string, cost, estRows float64, newIter func(v Value) (rowIterator, error)) *CachedBuilder[Row] {
	b.desc.filters = append(b.desc.filters, filterDescriptor{
		column:       column,
		columnIdx:    b.desc.columnIndex(column),
		estimateCost: cost,
		estimateRows: estRows,
		newIterator:  newIter,
	})
	return b
}

// IndexOn declares a hash-backed equality index on column, built once
// alongside the row cache. keyExtractor derives the hash key from a row
// directly, independent of whatever column's own display getter returns,
// so the index can be keyed on a normalized or derived value. Outranks a
// FilterEq on the same column unless that filter's declared cost is below
// 1.0. An unknown column name is a silent no-op.
func (b *CachedBuilder[Row]) IndexOn(column string, keyExtractor func(Row) (any, error)) *CachedBuilder[Row] {
	b.desc.indexes = append(b.desc.indexes, indexDescriptor{
		column:    column,
		columnIdx: b.desc.columnIndex(column),
	})
	b.keyExtractors = append(b.keyExtractors, keyExtractor)
	return b
}

// Build finalizes the declaration into a registerable descriptor.
func (b *CachedBuilder[Row]) Build() *CachedTableDescriptor[Row] {
	return &CachedTableDescriptor[Row]{
		inner: &cachedTableDescriptor[Row]{
			base:          b.desc,
			build:         b.build,
			readers:       b.readers,
			keyExtractors: b.keyExtractors,
			cache:         &rowCache[Row]{},
		},
	}
}

// CachedTableDescriptor is the built, immutable form of a CachedBuilder
// declaration, ready for RegisterCachedVTable.
type CachedTableDescriptor[Row any] struct {
	inner *cachedTableDescriptor[Row]
}

// Invalidate discards the materialized row cache and its secondary
// indexes. The next query against any table registered from this
// descriptor rebuilds the cache from scratch via BuildWith.
func (d *CachedTableDescriptor[Row]) Invalidate() {
	d.inner.cache.invalidate()
}
