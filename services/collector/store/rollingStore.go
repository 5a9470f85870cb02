package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// ringSeries is a fixed-capacity FIFO of samples. When full, pushing a new sample evicts the oldest.
type ringSeries struct {
	samples []common.PointSample
	head    int
	count   int
}

func newRingSeries(capacity int) *ringSeries {
	return &ringSeries{
		samples: make([]common.PointSample, capacity),
	}
}

func (r *ringSeries) push(sample common.PointSample) {
	capacity := len(r.samples)
	r.samples[(r.head+r.count)%capacity] = sample
	if r.count == capacity {
		r.head = (r.head + 1) % capacity
		return
	}
	r.count++
}

// snapshot returns the samples in insertion order, oldest first, as a fresh copy
func (r *ringSeries) snapshot() []common.PointSample {
	out := make([]common.PointSample, r.count)
	capacity := len(r.samples)
	for i := 0; i < r.count; i++ {
		out[i] = r.samples[(r.head+i)%capacity]
	}
	return out
}

// rollingStore keeps one bounded series per label. It is written by exactly one goroutine
// (the collector engine) and read concurrently by the API, hence the RWMutex.
type rollingStore struct {
	mut      sync.RWMutex
	capacity int
	series   map[string]*ringSeries
}

// NewRollingStore creates an empty in-memory rolling store
func NewRollingStore(capacity int) (*rollingStore, error) {
	if capacity <= 0 {
		return nil, errors.New("rolling store capacity must be greater than 0")
	}

	return &rollingStore{
		capacity: capacity,
		series:   make(map[string]*ringSeries),
	}, nil
}

// Ingest appends a whole batch under one lock so readers never observe a partially applied cycle.
// Duplicate (label, timestamp) pairs are stored as distinct entries: deduplication is not this
// component's job.
func (s *rollingStore) Ingest(records []common.PointRecord) {
	if len(records) == 0 {
		return
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	for _, record := range records {
		series, found := s.series[record.Label]
		if !found {
			series = newRingSeries(s.capacity)
			s.series[record.Label] = series
		}
		series.push(common.PointSample{
			At:    record.At,
			Value: record.Value,
		})
	}
}

// Series returns a snapshot of one label's history, oldest sample first
func (s *rollingStore) Series(label string) ([]common.PointSample, bool) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	series, found := s.series[label]
	if !found {
		return nil, false
	}

	return series.snapshot(), true
}

// AllSeries returns a snapshot of every known series
func (s *rollingStore) AllSeries() map[string][]common.PointSample {
	s.mut.RLock()
	defer s.mut.RUnlock()

	out := make(map[string][]common.PointSample, len(s.series))
	for label, series := range s.series {
		out[label] = series.snapshot()
	}

	return out
}

// Labels returns the sorted list of labels seen so far
func (s *rollingStore) Labels() []string {
	s.mut.RLock()
	defer s.mut.RUnlock()

	labels := make([]string, 0, len(s.series))
	for label := range s.series {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return labels
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *rollingStore) IsInterfaceNil() bool {
	return s == nil
}
