package xlconv

import "time"

// PerformanceMonitor receives optional performance callbacks from the
// pipeline. Implementations may steer batch sizing; the pipeline works
// identically with the no-op default.
type PerformanceMonitor interface {
	// ShouldUseStreaming advises whether the caller should stream the
	// source instead of buffering it. The core only reports the size.
	ShouldUseStreaming(sizeBytes int64) bool
	// OptimalBatchSize may override the configured sheet batch width.
	OptimalBatchSize(defaultSize int) int
	// RecordMetrics is called once per processed sheet.
	RecordMetrics(sheet string, rowCount int, elapsed time.Duration)
}

// NopMonitor is the default PerformanceMonitor; it keeps the
// configured defaults and records nothing.
type NopMonitor struct{}

func (NopMonitor) ShouldUseStreaming(int64) bool { return false }

func (NopMonitor) OptimalBatchSize(defaultSize int) int { return defaultSize }

func (NopMonitor) RecordMetrics(string, int, time.Duration) {}
