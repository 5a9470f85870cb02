package engine

import (
	"context"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
)

// Fetcher defines the interface for retrieving the current point readings from the BMS
type Fetcher interface {
	// Fetch performs one authenticated GET and normalizes the payload into point records.
	// Malformed individual points are skipped inside the call; connectivity and auth
	// failures abort the whole call.
	Fetch(ctx context.Context) ([]common.PointRecord, error)

	IsInterfaceNil() bool
}

// Store defines the interface for the in-memory rolling history
type Store interface {
	// Ingest appends a whole batch atomically with respect to concurrent readers
	Ingest(records []common.PointRecord)

	IsInterfaceNil() bool
}

// Sink defines the interface for the optional permanent-retention writer
type Sink interface {
	// Write appends the batch to the time-series database. Failures are terminal for the
	// batch: there is no buffering or retry.
	Write(ctx context.Context, records []common.PointRecord) error

	IsInterfaceNil() bool
}

// LabelFilter decides which point labels the collector tracks
type LabelFilter interface {
	Apply(records []common.PointRecord) []common.PointRecord

	IsInterfaceNil() bool
}
