package relhost

// GeneratorBuilder declares a generator table: a fresh lazy sequence of
// Row values produced per scan, advanced only as far as the engine asks.
type GeneratorBuilder[Row any] struct {
	desc    tableDescriptor
	newSeq  func() (sequence[Row], error)
	readers []generatorColumn[Row]
}

// GeneratorTable starts a new generator table declaration named name.
func GeneratorTable[Row any](name string) *GeneratorBuilder[Row] {
	return &GeneratorBuilder[Row]{desc: tableDescriptor{name: name}}
}

// Generator supplies the per-scan sequence factory, called exactly once
// per full-scan Filter, never eagerly. A filter-iterator plan does not call
// it.
func (b *GeneratorBuilder[Row]) Generator(f func() (sequence[Row], error)) *GeneratorBuilder[Row] {
	b.newSeq = f
	return b
}

// EstimateRows overrides the planner's full-scan row estimate; generator
// tables have no Count() of their own, so this is the only way to give
// the planner a non-default estimate.
func (b *GeneratorBuilder[Row]) EstimateRows(f func() int64) *GeneratorBuilder[Row] {
	b.desc.estimateRow = f
	return b
}

func (b *GeneratorBuilder[Row]) addColumn(name string, typ ColumnType, get generatorColumn[Row]) *GeneratorBuilder[Row] {
	b.desc.columns = append(b.desc.columns, column{name: name, typ: typ})
	b.readers = append(b.readers, get)
	return b
}

// ColumnInt declares an INTEGER column read from a generated Row.
func (b *GeneratorBuilder[Row]) ColumnInt(name string, get generatorColumn[Row]) *GeneratorBuilder[Row] {
	return b.addColumn(name, Integer, get)
}

// ColumnInt64 is an alias of ColumnInt for 64-bit-width emphasis.
func (b *GeneratorBuilder[Row]) ColumnInt64(name string, get generatorColumn[Row]) *GeneratorBuilder[Row] {
	return b.addColumn(name, Integer, get)
}

// ColumnText declares a TEXT column read from a generated Row.
func (b *GeneratorBuilder[Row]) ColumnText(name string, get generatorColumn[Row]) *GeneratorBuilder[Row] {
	return b.addColumn(name, Text, get)
}

// ColumnDouble declares a REAL column read from a generated Row.
func (b *GeneratorBuilder[Row]) ColumnDouble(name string, get generatorColumn[Row]) *GeneratorBuilder[Row] {
	return b.addColumn(name, Real, get)
}

// Build finalizes the declaration into a registerable descriptor.
func (b *GeneratorBuilder[Row]) Build() *GeneratorTableDescriptor[Row] {
	return &GeneratorTableDescriptor[Row]{
		inner: &generatorTableDescriptor[Row]{
			base:    b.desc,
			newSeq:  b.newSeq,
			readers: b.readers,
		},
	}
}

// GeneratorTableDescriptor is the built, immutable form of a
// GeneratorBuilder declaration, ready for RegisterGeneratorVTable.
type GeneratorTableDescriptor[Row any] struct {
	inner *generatorTableDescriptor[Row]
}
