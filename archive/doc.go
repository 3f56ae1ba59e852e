// Package archive implements the APACK writer and reader (§4.4, §4.5): the
// orchestration layer that sequences format records (format package)
// through the chunk pipeline (chunk package) and, for encrypted archives,
// the crypto envelope (envelope package).
//
// Writer and Reader follow the state machines of §4.7. A Writer is created
// with Create and driven through AddEntry calls, each one atomically
// transitioning Open -> EntryOpen -> EntryClosed; any error forces the
// Failed state, from which only Close is legal. A Reader is created with
// Open, which performs the entire index build (TOC-based or sequential) up
// front; per-entry I/O or validation failures are reported on that entry
// without invalidating the reader, matching §7's propagation rules.
package archive
