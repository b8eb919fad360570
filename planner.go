package relhost

import "modernc.org/sqlite/vtab"

// indexBase separates filter plan ids, [1, indexBase), from hash-index plan
// ids, [indexBase, indexBase+numIndexes). Plan id 0 always means full scan.
const indexBase = 1 << 16

const (
	fullScanCost  = 100000.0
	fullScanRows  = 100000
	hashIndexCost = 1.0
	hashIndexRows = 1
)

// choosePlan implements best_index: for each usable equality constraint
// SQLite offers, a hash index (cached flavor, cost hashIndexCost) and a
// declared filter (its own cost) on that column are candidates. The
// strictly cheapest candidate wins, the first-encountered one winning an
// exact tie (hash indexes are considered before filters); with no
// candidate the plan is a full scan.
//
// Termination note: this function only selects a plan; the cursor itself
// must still drive EOF from the iterator's advance() return value, never
// from a separate EOF predicate.
func (d *tableDescriptor) choosePlan(info *vtab.IndexInfo) {
	type candidate struct {
		constraintIdx int
		planID        int64
		cost          float64
		rows          int64
		unique        bool
	}

	var best *candidate
	consider := func(c candidate) {
		if best == nil || c.cost < best.cost {
			cc := c
			best = &cc
		}
	}

	for ci, cons := range info.Constraints {
		if !cons.Usable || cons.Op != vtab.OpEQ {
			continue
		}
		if cons.Column < 0 || cons.Column >= len(d.columns) {
			continue
		}
		colName := d.columns[cons.Column].name

		for ii, idx := range d.indexes {
			if idx.column == colName {
				consider(candidate{
					constraintIdx: ci,
					planID:        int64(indexBase + ii),
					cost:          hashIndexCost,
					rows:          hashIndexRows,
				})
			}
		}
		for fi, f := range d.filters {
			if f.column == colName {
				consider(candidate{
					constraintIdx: ci,
					planID:        int64(fi + 1),
					cost:          f.estimateCost,
					rows:          int64(f.estimateRows),
				})
			}
		}
	}

	if best == nil {
		info.IdxNum = 0
		info.EstimatedCost = fullScanCost
		rows := int64(fullScanRows)
		if d.estimateRow != nil {
			rows = d.estimateRow()
		}
		info.EstimatedRows = rows
		return
	}

	info.IdxNum = best.planID
	info.EstimatedCost = best.cost
	info.EstimatedRows = best.rows
	if best.unique {
		info.IdxFlags = vtab.IndexScanUnique
	}
	info.Constraints[best.constraintIdx].Omit = true
	info.Constraints[best.constraintIdx].ArgIndex = 0
}
