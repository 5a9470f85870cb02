package api

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// SeriesProvider defines the read-only snapshot queries served to the presentation layer
type SeriesProvider interface {
	// Series returns one label's rolling history, oldest sample first
	Series(label string) ([]common.PointSample, bool)

	// AllSeries returns every known series in one snapshot
	AllSeries() map[string][]common.PointSample

	// Labels returns the sorted list of labels seen so far, for a legend/selector
	Labels() []string

	IsInterfaceNil() bool
}

// StatusProvider reports the health of the polling pipeline
type StatusProvider interface {
	Status() common.CollectorStatus

	IsInterfaceNil() bool
}

// FilterSetStorage persists named filter sets
type FilterSetStorage interface {
	Save(ctx context.Context, set common.FilterSet) error
	Get(ctx context.Context, name string) (*common.FilterSet, error)
	List(ctx context.Context) ([]common.FilterSet, error)
	Delete(ctx context.Context, name string) error
	Close() error

	IsInterfaceNil() bool
}
