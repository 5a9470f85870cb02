package testsCommon

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// SinkStub -
type SinkStub struct {
	WriteHandler func(ctx context.Context, records []common.PointRecord) error
}

// Write -
func (stub *SinkStub) Write(ctx context.Context, records []common.PointRecord) error {
	if stub.WriteHandler != nil {
		return stub.WriteHandler(ctx, records)
	}

	return nil
}

// IsInterfaceNil -
func (stub *SinkStub) IsInterfaceNil() bool {
	return stub == nil
}
