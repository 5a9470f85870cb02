package testsCommon

import (
	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// LabelFilterStub -
type LabelFilterStub struct {
	ApplyHandler func(records []common.PointRecord) []common.PointRecord
}

// Apply -
func (stub *LabelFilterStub) Apply(records []common.PointRecord) []common.PointRecord {
	if stub.ApplyHandler != nil {
		return stub.ApplyHandler(records)
	}

	return records
}

// IsInterfaceNil -
func (stub *LabelFilterStub) IsInterfaceNil() bool {
	return stub == nil
}
