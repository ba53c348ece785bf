// Package observer defines logging and metrics hooks for sandbox execution.
package observer

import "context"

// MetricsRecorder records sandbox metrics: one ObserveCompile call per
// submission compile attempt, one ObserveRun call per judged test case
// (verdict is the runner.Status string, e.g. "OK", "WA", "TLE").
type MetricsRecorder interface {
	ObserveCompile(ctx context.Context, languageID string, ok bool, timeMs int64, memoryKB int64)
	ObserveRun(ctx context.Context, languageID string, verdict string, timeMs int64, memoryKB int64, outputKB int64)
}

// Nop is a MetricsRecorder that discards every observation, used when a
// judge.Worker is built without a metrics backend wired in.
type Nop struct{}

func (Nop) ObserveCompile(context.Context, string, bool, int64, int64)      {}
func (Nop) ObserveRun(context.Context, string, string, int64, int64, int64) {}
