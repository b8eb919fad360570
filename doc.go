// Package relhost bridges in-process host data into SQL as queryable
// virtual tables.
//
// A host application declares a relation through [Table], [CachedTable], or
// [GeneratorTable] — its name, columns, row count or enumeration procedure,
// and optional constraint-accelerated lookups — then installs it with
// [RegisterVTable] (or the cached/generator variants) and issues exactly one
// [CreateVTable] call to make the relation queryable through ordinary SQL.
//
// The embedded engine is modernc.org/sqlite, reached through its
// modernc.org/sqlite/vtab package, which exposes the SQLite virtual-table
// module protocol (xConnect, xBestIndex, xOpen/xClose, xFilter, xNext, xEof,
// xColumn, xRowid, xUpdate) as Go interfaces. relhost does not parse or
// rewrite SQL and does not manage persistence or transactions beyond what
// the bound engine provides.
//
// Three adapter flavors share the same engine-facing contract but differ in
// how they source rows:
//
//   - indexed: the getter is handed a live row index in [0, count); rows are
//     read from the host on every access. Supports UPDATE/DELETE.
//   - cached: rows are materialized once per table (behind a mutex-guarded
//     one-shot build) into a shared, reference-counted cache with optional
//     hash indexes. Read-only.
//   - generator: a fresh, per-scan lazy sequence is advanced only as far as
//     the engine requests, so LIMIT and short-circuiting bound the work
//     actually done. Read-only.
//
// All three consult the same best_index planner: an equality constraint on
// an indexed (cached flavor) or filtered column is pushed down to an O(1) or
// iterator-bound lookup; otherwise the plan falls back to a full scan.
package relhost
