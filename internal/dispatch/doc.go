package dispatch

// Package dispatch runs the external enumeration tools behind a fixed pool
// of workers, one long-lived goroutine per tool kind.
//
// Overview
// The Manager owns probing, submission and collection. Start probes every
// adapter once and spawns a worker for each tool which answered. Submit
// enqueues one job and hands back a scan id, it never waits for the tool to
// run. Collect hands out finished results in completion order, which for a
// single worker per tool equals submission order.
//
// Data flow:
//
//	caller                  Manager                 worker{tool}
//	  |                        |                        |
//	  | Submit(tool, query) -->| in <- ScanJob -------->| Adapter.Run (blocking)
//	  |<------ scan_id --------|                        |
//	  | Collect(tool, t) ----->| <-out                  |
//	  |<---- ToolRunResult ----|<------- result --------|
//
// Shutdown closes every worker's stop channel and joins each worker for a
// bounded time. A worker blocked inside a long tool invocation is abandoned,
// it exits on its own once the invocation returns.
//
// Invariants:
//   - One worker goroutine per available tool, never more.
//   - Every job picked up by a worker yields exactly one result. Jobs still
//     queued when stop arrives are dropped, not run.
//   - Per tool, execution order is submission order. Tools never wait on
//     each other.
//   - Tool failures travel inside ToolRunResult. Errors returned by Submit
//     and Collect concern only the manager itself.
//   - Availability is probed once per Manager instance and never re-checked.
//
// internal/dispatch/manager_test.go shows the intended call sequences.
