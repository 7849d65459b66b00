package service

// Package service implements the periodic watch mode and the delivery of
// finished reports.
//
// Overview
// A Pipeline glues one scan to its delivery: the scan produces a report, the
// report goes to every configured sink and, when history is enabled, into the
// local sqlite database. The one-shot scan command and the watch loop share
// the same Pipeline.
//
// The Watcher owns a gocron scheduler and a trigger channel. Every firing of
// the schedule requests one round, a round scans the watched addresses
// sequentially. Manual triggers collapse into an already pending round.
//
// Data flow:
//
//   gocron               Watcher                Pipeline
//     |                     |                       |
//     | fire -> Trigger() ->|                       |
//     |                     | round() ------------->| Run(email)
//     |                     |                       | Scan -> Export -> Save
//     |                     |<--- report/error -----|
//
// Invariants:
//   - One round at a time, the trigger channel has capacity one.
//   - A failing address never stops a round, failures are logged.
//   - Sinks are independent, a broken webhook does not block the local
//     report directory.
//
// internal/service/watcher_test.go is the best source about how the pieces
// are wired together.
