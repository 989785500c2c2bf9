package machine

import (
	"sync"
	"time"
)

// Scheduler runs f once after d. It stands in for the "drawing" pause so the
// controller can be driven without real time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// RealScheduler uses time.AfterFunc.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// ManualScheduler queues callbacks until Advance is called.
type ManualScheduler struct {
	mu      sync.Mutex
	queued  []func()
	elapsed time.Duration
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, f)
	if d > m.elapsed {
		m.elapsed = d
	}
}

// Advance fires every queued callback in the order they were scheduled and
// returns how many ran.
func (m *ManualScheduler) Advance() int {
	m.mu.Lock()
	fs := m.queued
	m.queued = nil
	m.mu.Unlock()
	for _, f := range fs {
		f()
	}
	return len(fs)
}

// Pending is the number of callbacks waiting.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// Longest is the largest delay requested so far.
func (m *ManualScheduler) Longest() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}
