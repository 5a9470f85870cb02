package common

import "time"

// Collector pipeline states, as reported on the status endpoint
const (
	StateNoData = "no-data"
	StateLive   = "live"
	StateStale  = "stale"
)

// PointRecord is one observation of one BMS point at one instant
type PointRecord struct {
	ID             string    `json:"objectId"`
	InstallationID string    `json:"installationId"`
	Label          string    `json:"label"`
	Value          float64   `json:"value"`
	At             time.Time `json:"at"`
}

// PointSample is a single (timestamp, value) pair inside a rolling series
type PointSample struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// SeriesSnapshot is the read-only view of one rolling series returned to the presentation layer
type SeriesSnapshot struct {
	Label   string        `json:"label"`
	Samples []PointSample `json:"samples"`
}

// CollectorStatus describes the health of the polling pipeline so a viewer can tell a quiet
// sensor from a broken one
type CollectorStatus struct {
	InstallationID        string    `json:"installationId"`
	State                 string    `json:"state"`
	Cycles                uint64    `json:"cycles"`
	FailedCycles          uint64    `json:"failedCycles"`
	PointsIngested        uint64    `json:"pointsIngested"`
	LastSuccessTime       time.Time `json:"lastSuccessTime"`
	LastError             string    `json:"lastError,omitempty"`
	PollIntervalInSeconds uint32    `json:"pollIntervalInSeconds"`
}

// FilterRule is one wildcard pattern inside a filter stage
type FilterRule struct {
	Pattern string `json:"pattern"`
	Invert  bool   `json:"invert"`
	Enabled bool   `json:"enabled"`
}

// FilterStage groups the rules applied together in one filtering pass
type FilterStage struct {
	Name  string       `json:"name"`
	Rules []FilterRule `json:"rules"`
}

// FilterSet is a named, persistable collection of blocker stages and a target stage
type FilterSet struct {
	Name      string        `json:"name"`
	Blockers  []FilterStage `json:"blockers"`
	Targets   FilterStage   `json:"targets"`
	UpdatedAt int64         `json:"updatedAt"`
}
