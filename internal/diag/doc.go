// Package diag defines the diagnostic model shared by the lexer and parser.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced while
//     lexing and parsing.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// Package diag does not format for terminals; rendering lives in
// internal/diagfmt. FormatShort is the one plain-text form kept here because
// tests and the cache compare it verbatim.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form. Groups:
//     LEX1xxx for lexical problems, SYN2xxx for grammar problems, RES9xxx for
//     resource budgets. SynResourceExceeded is the only fatal code.
//   - Message – short, actionable text.
//   - Primary span – where the problem is.
//   - Notes – secondary spans, e.g. "unclosed delimiter opened here".
//   - Fixes – optional text edits; the parser only suggests them.
//
// # Emitting diagnostics
//
// Producers write through a Reporter. The parser wraps its reporter in a
// DedupReporter and builds richer reports with ReportBuilder (ReportError /
// ReportWarning, WithNote, WithFix, Emit). BagReporter stores into a Bag.
//
// A Bag only grows. Items returns entries in arrival order, All returns a
// copy ordered by span start. The limit passed to NewBag caps non-fatal
// entries; a fatal diagnostic is always accepted.
package diag
