package relhost

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"modernc.org/sqlite/vtab"
)

// cachedColumn reads row r of type Row for column col. Defined once per
// CachedBuilder column declaration and shared by every connection.
type cachedColumn[Row any] func(row Row, col int) (any, error)

// cachedTableDescriptor is the cached flavor's descriptor: like
// tableDescriptor but the getters close over a materialized Row, not a
// live index, and a single shared cache backs every connection that opens
// this table.
type cachedTableDescriptor[Row any] struct {
	base    tableDescriptor
	build   func() ([]Row, error)
	readers []cachedColumn[Row]

	// keyExtractors is parallel to base.indexes: the host-supplied
	// procedure that derives the hash key for a row, independent of
	// whatever a column's own display getter would return.
	keyExtractors []func(Row) (any, error)

	cache *rowCache[Row]
}

// rowCache is the one-shot, mutex-guarded, reference-counted materialized
// row set shared by every cursor opened against the same cached table.
// Built once, on first access, regardless of how many connections or
// cursors subsequently read it; invalidate makes the next access build it
// again.
type rowCache[Row any] struct {
	mu      sync.Mutex
	built   bool
	rows    []Row
	err     error
	hashIdx []map[any][]int // parallel to base.indexes
	refs    int
}

// invalidate discards the built rows and indexes so the next ensureBuilt
// call rebuilds from scratch. A cursor already mid-scan when invalidate is
// called may observe a shortened or rebuilt row set on its next Column
// call; callers should invalidate between statements, not concurrently
// with an open cursor over the same table.
func (c *rowCache[Row]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.rows = nil
	c.err = nil
	c.hashIdx = nil
}

func (c *rowCache[Row]) ensureBuilt(d *cachedTableDescriptor[Row]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return c.err
	}
	rows, err := d.build()
	c.rows = rows
	c.err = err
	if err == nil {
		c.hashIdx = make([]map[any][]int, len(d.base.indexes))
		for ii, idx := range d.base.indexes {
			extract := d.keyExtractors[ii]
			if idx.columnIdx < 0 || extract == nil {
				continue
			}
			m := make(map[any][]int, len(rows))
			for ri, row := range rows {
				v, err := extract(row)
				if err != nil {
					continue
				}
				m[v] = append(m[v], ri)
			}
			c.hashIdx[ii] = m
		}
		logrus.WithField("table", d.base.name).WithField("rows", len(rows)).Debug("relhost: cache built")
	}
	c.built = true
	return c.err
}

type cachedModule[Row any] struct {
	desc *cachedTableDescriptor[Row]
}

func (m *cachedModule[Row]) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	if err := ctx.Declare(m.desc.base.schema()); err != nil {
		return nil, fmt.Errorf("relhost: declare %s: %w", m.desc.base.name, err)
	}
	m.desc.cache.mu.Lock()
	m.desc.cache.refs++
	m.desc.cache.mu.Unlock()
	return &cachedTable[Row]{desc: m.desc}, nil
}

func (m *cachedModule[Row]) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type cachedTable[Row any] struct {
	desc *cachedTableDescriptor[Row]
}

func (t *cachedTable[Row]) BestIndex(info *vtab.IndexInfo) error {
	t.desc.base.choosePlan(info)
	return nil
}

func (t *cachedTable[Row]) Open() (vtab.Cursor, error) {
	return &cachedCursor[Row]{table: t}, nil
}

func (t *cachedTable[Row]) Disconnect() error {
	c := t.desc.cache
	c.mu.Lock()
	c.refs--
	c.mu.Unlock()
	return nil
}

func (t *cachedTable[Row]) Destroy() error { return nil }

// Insert, Update, and Delete implement vtab.Updater for symmetry with the
// indexed flavor's tests, but the cached flavor is read-only by contract:
// every call is rejected regardless of descriptor contents.
func (t *cachedTable[Row]) Insert(cols []vtab.Value, rowid *int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

func (t *cachedTable[Row]) Update(oldRowid int64, cols []vtab.Value, newRowid *int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

func (t *cachedTable[Row]) Delete(oldRowid int64) error {
	return fmt.Errorf("relhost: %s: %w", t.desc.base.name, ErrReadOnly)
}

type cachedCursor[Row any] struct {
	table *cachedTable[Row]

	rows []int // row indexes into cache, in scan order
	pos  int
	done bool
}

func (c *cachedCursor[Row]) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	d := c.table.desc
	if err := d.cache.ensureBuilt(d); err != nil {
		return fmt.Errorf("relhost: %s: %w: %v", d.base.name, ErrHostFailure, err)
	}

	switch {
	case idxNum == 0:
		c.rows = make([]int, len(d.cache.rows))
		for i := range c.rows {
			c.rows[i] = i
		}
	case idxNum >= indexBase:
		ii := idxNum - indexBase
		if ii < 0 || ii >= len(d.base.indexes) {
			return fmt.Errorf("relhost: %s: invalid index plan %d", d.base.name, idxNum)
		}
		if len(vals) == 0 {
			return fmt.Errorf("relhost: %s: index lookup requires one argument", d.base.name)
		}
		key, _ := hashKey(vals[0])
		c.rows = append([]int(nil), d.cache.hashIdx[ii][key]...)
	default:
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
		var rows []int
		for it.advance() {
			rid, err := it.rowid()
			if err != nil {
				return fmt.Errorf("relhost: %s.%s: %w: %v", d.base.name, f.column, ErrHostFailure, err)
			}
			rows = append(rows, int(rid))
		}
		c.rows = rows
	}
	c.pos = -1
	return c.advance()
}

func (c *cachedCursor[Row]) advance() error {
	c.pos++
	c.done = c.pos >= len(c.rows)
	return nil
}

func (c *cachedCursor[Row]) Next() error { return c.advance() }

func (c *cachedCursor[Row]) Eof() bool { return c.done }

func (c *cachedCursor[Row]) Column(col int) (vtab.Value, error) {
	d := c.table.desc
	if col < 0 || col >= len(d.readers) {
		return nil, ErrColumnOutOfRange
	}
	ri := c.rows[c.pos]
	v, err := d.readers[col](d.cache.rows[ri], col)
	if err != nil {
		return nil, fmt.Errorf("relhost: %s.%s: %w: %v", d.base.name, d.base.columns[col].name, ErrHostFailure, err)
	}
	return v, nil
}

func (c *cachedCursor[Row]) Rowid() (int64, error) {
	return int64(c.rows[c.pos]), nil
}

func (c *cachedCursor[Row]) Close() error { return nil }

// hashKey normalizes an engine value into a comparable map key. Integers
// and floats that represent the same number (e.g. 1 and 1.0) intentionally
// map to distinct keys, matching strict SQLite affinity-free equality.
func hashKey(v vtab.Value) (any, bool) {
	return v, v != nil
}
