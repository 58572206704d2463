// Package ratelimit provides tiered fixed-window request counting for the
// authgate request gate.
//
// # Window semantics
//
// Counters are fixed-window: the window is anchored at the first hit for a
// key, every hit within window_duration increments the count, and a hit is
// denied once the count exceeds the tier limit. When the window elapses the
// next hit starts a fresh window. Anchoring at the first hit permits brief
// bursts across window boundaries; that looseness is inherent to
// fixed-window counting and accepted for the abuse-prevention goal here.
//
// # Backends
//
// [CounterStore] abstracts the counter backend. [MemoryStore] is the
// in-process implementation: sharded maps with per-shard locking so
// concurrent hits on one key never lose updates, and a janitor goroutine
// that evicts windows idle for a full window duration to bound memory. A
// distributed backend (for limiter state shared across processes) can
// implement CounterStore, but none ships with this package.
package ratelimit
