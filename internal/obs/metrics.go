package obs

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"
)

// Metrics collects lightweight counters and latency stats for a decode run.
type Metrics struct {
	linesRead    uint64
	linesSkipped uint64
	decoded      uint64
	failed       uint64
	stored       uint64

	mu       sync.Mutex
	msgTypes map[string]uint64

	decodeLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	LinesRead     uint64
	LinesSkipped  uint64
	Decoded       uint64
	Failed        uint64
	Stored        uint64
	MsgTypes      map[string]uint64
	DecodeLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{msgTypes: make(map[string]uint64)}
}

// IncLineRead records a line pulled from the input.
func (m *Metrics) IncLineRead() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.linesRead, 1)
}

// IncLineSkipped records a line dropped before decoding.
func (m *Metrics) IncLineSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.linesSkipped, 1)
}

// ObserveDecoded counts a decoded message by MsgType and tracks its latency.
func (m *Metrics) ObserveDecoded(msgType string, d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decoded, 1)
	m.decodeLatency.Observe(d)

	m.mu.Lock()
	if m.msgTypes == nil {
		m.msgTypes = make(map[string]uint64)
	}
	m.msgTypes[msgType]++
	m.mu.Unlock()
}

// IncFailed records a line that could not be decoded.
func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.failed, 1)
}

// AddStored records messages persisted by a sink.
func (m *Metrics) AddStored(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.stored, uint64(n))
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	msgTypes := make(map[string]uint64, len(m.msgTypes))
	for k, v := range m.msgTypes {
		msgTypes[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		LinesRead:     atomic.LoadUint64(&m.linesRead),
		LinesSkipped:  atomic.LoadUint64(&m.linesSkipped),
		Decoded:       atomic.LoadUint64(&m.decoded),
		Failed:        atomic.LoadUint64(&m.failed),
		Stored:        atomic.LoadUint64(&m.stored),
		MsgTypes:      msgTypes,
		DecodeLatency: m.decodeLatency.Snapshot(),
	}
}

// Log writes the snapshot through the process logger.
func (s Snapshot) Log() {
	logs.Infof("lines read=%d skipped=%d decoded=%d failed=%d stored=%d",
		s.LinesRead, s.LinesSkipped, s.Decoded, s.Failed, s.Stored)
	if s.DecodeLatency.Count != 0 {
		logs.Infof("decode latency min=%s max=%s avg=%s",
			s.DecodeLatency.Min, s.DecodeLatency.Max, s.DecodeLatency.Avg)
	}

	types := make([]string, 0, len(s.MsgTypes))
	for t := range s.MsgTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		logs.Infof("MsgType %s: %d", t, s.MsgTypes[t])
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
