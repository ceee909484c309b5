// Package trace records what the front end is doing while it runs: which
// files are being lexed and parsed, how long each pass takes, and where the
// parser had to resynchronise.
//
// Events are emitted through a Tracer. The Nop tracer costs nothing and is
// used whenever tracing is off; StreamTracer writes every event as it
// happens, RingTracer keeps the last N events in memory for a dump after a
// hang or crash, MultiTracer fans out to several of them.
//
// # Levels and scopes
//
// Every event has a Scope (driver, pass, module, node). The Level picks the
// finest scope that is still recorded:
//
//	phase   driver and pass boundaries
//	detail  plus one span per parsed file
//	debug   plus node-level points (items, resync, speculation)
//
// # Usage
//
//	t, err := trace.New(trace.Config{Level: trace.LevelDetail, Mode: trace.ModeStream, OutputPath: "-"})
//	ctx = trace.WithTracer(ctx, t)
//
//	span := trace.Begin(t, trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
