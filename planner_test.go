package relhost

import (
	"testing"

	"modernc.org/sqlite/vtab"
)

func TestChoosePlanFullScanWhenNoFiltersOrIndexes(t *testing.T) {
	rowCountCalls := 0
	d := newTestDescriptor("t", column{name: "id", typ: Integer})
	d.estimateRow = func() int64 { rowCountCalls++; return 42 }

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum != 0 {
		t.Errorf("IdxNum = %d, want 0 (full scan)", info.IdxNum)
	}
	if info.EstimatedRows != 42 {
		t.Errorf("EstimatedRows = %d, want 42", info.EstimatedRows)
	}
	if rowCountCalls != 1 {
		t.Errorf("estimateRow called %d times, want exactly 1 (planner calls the estimate, never the row-count enumeration)", rowCountCalls)
	}
}

func TestChoosePlanIgnoresUnusableAndNonEQConstraints(t *testing.T) {
	d := newTestDescriptor("t", column{name: "id", typ: Integer})
	d.filters = []filterDescriptor{{column: "id", estimateCost: 1, estimateRows: 1}}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: false},
		{Column: 0, Op: vtab.OpGT, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum != 0 {
		t.Errorf("IdxNum = %d, want 0 (full scan, no usable EQ constraint)", info.IdxNum)
	}
}

func TestChoosePlanHashIndexBeatsFilter(t *testing.T) {
	d := newTestDescriptor("t", column{name: "to_ea", typ: Integer})
	d.filters = []filterDescriptor{{column: "to_ea", estimateCost: 10, estimateRows: 3}}
	d.indexes = []indexDescriptor{{column: "to_ea"}}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum < indexBase {
		t.Errorf("IdxNum = %d, want hash-index range (>= %d)", info.IdxNum, indexBase)
	}
	if info.EstimatedCost != hashIndexCost {
		t.Errorf("EstimatedCost = %v, want %v", info.EstimatedCost, hashIndexCost)
	}
	if !info.Constraints[0].Omit {
		t.Error("winning constraint must have Omit set")
	}
}

func TestChoosePlanFilterBeatsFullScan(t *testing.T) {
	d := newTestDescriptor("t", column{name: "id", typ: Integer})
	d.filters = []filterDescriptor{{column: "id", estimateCost: 10, estimateRows: 3}}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum != 1 {
		t.Errorf("IdxNum = %d, want 1 (first filter)", info.IdxNum)
	}
	if info.EstimatedCost != 10 {
		t.Errorf("EstimatedCost = %v, want 10", info.EstimatedCost)
	}
}

func TestChoosePlanTieBreakFirstEncounteredWins(t *testing.T) {
	d := newTestDescriptor("t",
		column{name: "a", typ: Integer},
		column{name: "b", typ: Integer},
	)
	d.filters = []filterDescriptor{
		{column: "a", estimateCost: 5, estimateRows: 1},
		{column: "b", estimateCost: 5, estimateRows: 1},
	}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true},
		{Column: 1, Op: vtab.OpEQ, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum != 1 {
		t.Errorf("IdxNum = %d, want 1 (filter on column a, first encountered)", info.IdxNum)
	}
}

func TestChoosePlanStrictlyLowerCostWins(t *testing.T) {
	d := newTestDescriptor("t",
		column{name: "a", typ: Integer},
		column{name: "b", typ: Integer},
	)
	d.filters = []filterDescriptor{
		{column: "a", estimateCost: 50, estimateRows: 1},
		{column: "b", estimateCost: 5, estimateRows: 1},
	}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true},
		{Column: 1, Op: vtab.OpEQ, Usable: true},
	}}
	d.choosePlan(info)

	if info.IdxNum != 2 {
		t.Errorf("IdxNum = %d, want 2 (filter on column b, strictly cheaper)", info.IdxNum)
	}
}

func TestChoosePlanFullScanCostDefaultsWithoutEstimate(t *testing.T) {
	d := newTestDescriptor("t", column{name: "id", typ: Integer})
	info := &vtab.IndexInfo{}
	d.choosePlan(info)

	if info.EstimatedRows != fullScanRows {
		t.Errorf("EstimatedRows = %d, want default %d", info.EstimatedRows, fullScanRows)
	}
	if info.EstimatedCost != fullScanCost {
		t.Errorf("EstimatedCost = %v, want default %v", info.EstimatedCost, fullScanCost)
	}
}
