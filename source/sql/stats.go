package sql

import (
	"fmt"
	"sync/atomic"
	"time"
)

// QueryStats counts the queries a Source ran.
type QueryStats struct {
	queries  atomic.Int64
	execs    atomic.Int64
	duration atomic.Int64 // nanoseconds
	slow     atomic.Int64
	errors   atomic.Int64
}

func (s *QueryStats) record(exec bool, d, slow time.Duration, err error) {
	if exec {
		s.execs.Add(1)
	} else {
		s.queries.Add(1)
	}
	s.duration.Add(int64(d))
	if slow > 0 && d >= slow {
		s.slow.Add(1)
	}
	if err != nil {
		s.errors.Add(1)
	}
}

// Snapshot returns the current counts.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:  s.queries.Load(),
		Execs:    s.execs.Load(),
		Duration: time.Duration(s.duration.Load()),
		Slow:     s.slow.Load(),
		Errors:   s.errors.Load(),
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Queries  int64
	Execs    int64
	Duration time.Duration
	Slow     int64
	Errors   int64
}

// Avg returns the mean statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	n := s.Queries + s.Execs
	if n == 0 {
		return 0
	}
	return s.Duration / time.Duration(n)
}

// String returns a one-line summary.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.Queries, s.Execs, s.Duration, s.Avg(), s.Slow, s.Errors)
}
