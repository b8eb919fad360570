package relhost

import (
	"fmt"

	"modernc.org/sqlite/vtab"
)

// sequence is the per-scan lazy row source a GeneratorBuilder factory
// produces. Advance is called by the cursor only as far as the engine
// actually requests, so a LIMIT clause bounds real generator work, not
// just the rows returned. Rowid reports the host-defined identity of the
// row Advance most recently produced.
type sequence[Row any] interface {
	Advance() (Row, bool)
	Rowid() (int64, error)
}

// generatorColumn reads column col from a materialized Row.
type generatorColumn[Row any] func(row Row, col int) (any, error)

type generatorTableDescriptor[Row any] struct {
	base    tableDescriptor
	newSeq  func() (sequence[Row], error)
	readers []generatorColumn[Row]
}

type generatorModule[Row any] struct {
	desc *generatorTableDescriptor[Row]
}

func (m *generatorModule[Row]) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	if err := ctx.Declare(m.desc.base.schema()); err != nil {
		return nil, fmt.Errorf("relhost: declare %s: %w", m.desc.base.name, err)
	}
	return &generatorTable[Row]{desc: m.desc}, nil
}

func (m *generatorModule[Row]) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type generatorTable[Row any] struct {
	desc *generatorTableDescriptor[Row]
}

func (t *generatorTable[Row]) BestIndex(info *vtab.IndexInfo) error {
	t.desc.base.choosePlan(info)
	return nil
}

func (t *generatorTable[Row]) Open() (vtab.Cursor, error) {
	// The sequence is created later, in Filter, once per scan, so
	// concurrent cursors over the same generator table never share advance
	// state.
	return &generatorCursor[Row]{table: t}, nil
}

func (t *generatorTable[Row]) Disconnect() error { return nil }
func (t *generatorTable[Row]) Destroy() error    { return nil }

// Insert, Update, and Delete implement vtab.Updater; the generator flavor
// is read-only by contract.
func (t *generatorTable[Row]) Insert(cols []vtab.Value, rowid *int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

func (t *generatorTable[Row]) Update(oldRowid int64, cols []vtab.Value, newRowid *int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

func (t *generatorTable[Row]) Delete(oldRowid int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

type generatorCursor[Row any] struct {
	table *generatorTable[Row]
	seq   sequence[Row]

	// iter is set instead of seq when BestIndex chose a filter-iterator
	// plan; it bypasses the generator factory entirely (invariant: a
	// filtered scan against a generator table never builds a generator).
	iter rowIterator

	row  Row
	done bool
}

func (c *generatorCursor[Row]) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	d := c.table.desc
	if idxNum == 0 {
		seq, err := d.newSeq()
		if err != nil {
			return fmt.Errorf("relhost: %s: %w: %v", d.base.name, ErrHostFailure, err)
		}
		c.seq = seq
		return c.Next()
	}

	fi := idxNum - 1
	if fi < 0 || fi >= len(d.base.filters) {
		return fmt.Errorf("relhost: %s: invalid filter plan %d", d.base.name, idxNum)
	}
	if len(vals) == 0 {
		return fmt.Errorf("relhost: %s: filter requires one argument", d.base.name)
	}
	f := d.base.filters[fi]
	it, err := f.newIterator(NewValue(vals[0]))
	if err != nil {
		return fmt.Errorf("relhost: %s.%s: %w: %v", d.base.name, f.column, ErrHostFailure, err)
	}
	c.iter = it
	c.seq = nil
	c.done = !it.advance()
	return nil
}

func (c *generatorCursor[Row]) Next() error {
	if c.iter != nil {
		c.done = !c.iter.advance()
		return nil
	}
	row, ok := c.seq.Advance()
	c.done = !ok
	if ok {
		c.row = row
	}
	return nil
}

func (c *generatorCursor[Row]) Eof() bool { return c.done }

func (c *generatorCursor[Row]) Column(col int) (vtab.Value, error) {
	d := c.table.desc
	if col < 0 || col >= len(d.readers) {
		return nil, ErrColumnOutOfRange
	}
	if c.iter != nil {
		v, err := c.iter.column(col)
		if err != nil {
			return nil, fmt.Errorf("relhost: %s.%s: %w: %v", d.base.name, d.base.columns[col].name, ErrHostFailure, err)
		}
		return v, nil
	}
	v, err := d.readers[col](c.row, col)
	if err != nil {
		return nil, fmt.Errorf("relhost: %s.%s: %w: %v", d.base.name, d.base.columns[col].name, ErrHostFailure, err)
	}
	return v, nil
}

func (c *generatorCursor[Row]) Rowid() (int64, error) {
	if c.iter != nil {
		return c.iter.rowid()
	}
	return c.seq.Rowid()
}

func (c *generatorCursor[Row]) Close() error { return nil }
