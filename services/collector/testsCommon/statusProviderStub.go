package testsCommon

import (
	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// StatusProviderStub -
type StatusProviderStub struct {
	StatusHandler func() common.CollectorStatus
}

// Status -
func (stub *StatusProviderStub) Status() common.CollectorStatus {
	if stub.StatusHandler != nil {
		return stub.StatusHandler()
	}

	return common.CollectorStatus{}
}

// IsInterfaceNil -
func (stub *StatusProviderStub) IsInterfaceNil() bool {
	return stub == nil
}
