package testsCommon

import (
	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// StoreStub -
type StoreStub struct {
	IngestHandler    func(records []common.PointRecord)
	SeriesHandler    func(label string) ([]common.PointSample, bool)
	AllSeriesHandler func() map[string][]common.PointSample
	LabelsHandler    func() []string
}

// Ingest -
func (stub *StoreStub) Ingest(records []common.PointRecord) {
	if stub.IngestHandler != nil {
		stub.IngestHandler(records)
	}
}

// Series -
func (stub *StoreStub) Series(label string) ([]common.PointSample, bool) {
	if stub.SeriesHandler != nil {
		return stub.SeriesHandler(label)
	}

	return nil, false
}

// AllSeries -
func (stub *StoreStub) AllSeries() map[string][]common.PointSample {
	if stub.AllSeriesHandler != nil {
		return stub.AllSeriesHandler()
	}

	return make(map[string][]common.PointSample)
}

// Labels -
func (stub *StoreStub) Labels() []string {
	if stub.LabelsHandler != nil {
		return stub.LabelsHandler()
	}

	return make([]string, 0)
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
