package factory

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// Engine defines the collector's operations
type Engine interface {
	Process(ctx context.Context)
	Status() common.CollectorStatus
	IsInterfaceNil() bool
}

// Server defines the HTTP API operations
type Server interface {
	Start()
	Address() string
	Close() error
	IsInterfaceNil() bool
}
