// Package core provides the business logic for tabular file conversion and cleaning.
//
// This package holds all domain logic independent of any UI or transport layer.
// It can be used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around one linear, per-file pipeline:
//
//	ingest -> [deduplicate] -> [mean-impute] -> [correlate] -> project -> [chart] -> export
//
//   - Ingest: [Ingest] parses CSV or XLSX bytes, then [Classify] decides once,
//     deterministically, which columns are numeric.
//   - Transform: [Deduplicate], [ImputeMean] and [Project] mutate or narrow a [Table].
//   - Inspect: [Describe], [Correlate] and [BarChartOf] derive read-only views.
//   - Export: [Export] serializes a [Table] as CSV or XLSX under a renamed file.
//
// [Run] ties the steps together as an idempotent function of the uploaded bytes
// and the user's [Options]. It is invoked fresh on every option change; nothing is
// cached between evaluations except the original upload held by the [Store].
//
// # Service
//
// [Service] is the entry point used by the web layer. It owns the [Store] of
// uploaded files and a [RunLimiter] that caps how many whole-file evaluations
// may run in parallel.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, empty, not found, store full, count)
//   - PARSE001-PARSE003: Parse errors (malformed CSV, corrupt workbook)
//   - EXP001-EXP003: Export errors (content the target format cannot hold)
//   - COL001-COL003: Column errors (unknown, duplicate, not numeric)
//   - OPT001: Invalid option values
//   - RUN001-RUN003: Evaluation errors (busy, cancelled, timeout)
//   - RATE001: Rate limiting
package core
