package testsCommon

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// FetcherStub -
type FetcherStub struct {
	FetchHandler func(ctx context.Context) ([]common.PointRecord, error)
}

// Fetch -
func (stub *FetcherStub) Fetch(ctx context.Context) ([]common.PointRecord, error) {
	if stub.FetchHandler != nil {
		return stub.FetchHandler(ctx)
	}

	return make([]common.PointRecord, 0), nil
}

// IsInterfaceNil -
func (stub *FetcherStub) IsInterfaceNil() bool {
	return stub == nil
}
