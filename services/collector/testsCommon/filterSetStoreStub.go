package testsCommon

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// FilterSetStoreStub -
type FilterSetStoreStub struct {
	SaveHandler   func(ctx context.Context, set common.FilterSet) error
	GetHandler    func(ctx context.Context, name string) (*common.FilterSet, error)
	ListHandler   func(ctx context.Context) ([]common.FilterSet, error)
	DeleteHandler func(ctx context.Context, name string) error
	CloseHandler  func() error
}

// Save -
func (stub *FilterSetStoreStub) Save(ctx context.Context, set common.FilterSet) error {
	if stub.SaveHandler != nil {
		return stub.SaveHandler(ctx, set)
	}

	return nil
}

// Get -
func (stub *FilterSetStoreStub) Get(ctx context.Context, name string) (*common.FilterSet, error) {
	if stub.GetHandler != nil {
		return stub.GetHandler(ctx, name)
	}

	return &common.FilterSet{}, nil
}

// List -
func (stub *FilterSetStoreStub) List(ctx context.Context) ([]common.FilterSet, error) {
	if stub.ListHandler != nil {
		return stub.ListHandler(ctx)
	}

	return make([]common.FilterSet, 0), nil
}

// Delete -
func (stub *FilterSetStoreStub) Delete(ctx context.Context, name string) error {
	if stub.DeleteHandler != nil {
		return stub.DeleteHandler(ctx, name)
	}

	return nil
}

// Close -
func (stub *FilterSetStoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *FilterSetStoreStub) IsInterfaceNil() bool {
	return stub == nil
}
