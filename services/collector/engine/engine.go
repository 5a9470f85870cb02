package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	"github.com/birdlab-tech/building-analytics/services/collector/config"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

// a pipeline is considered stale once the last successful cycle is older than this many poll intervals
const staleAfterIntervals = 2

// collectorEngine runs one fetch-and-distribute cycle per tick: fetch from the BMS, filter,
// ingest into the rolling store and, if configured, forward the same batch to the persistent
// sink. The two sinks are independent: a database outage never affects the live view.
type collectorEngine struct {
	config  config.Config
	fetcher Fetcher
	store   Store
	sink    Sink
	filter  LabelFilter

	mutStatus      sync.RWMutex
	cycles         uint64
	failedCycles   uint64
	pointsIngested uint64
	lastSuccess    time.Time
	lastError      error
}

// NewCollectorEngine creates a new engine instance. The sink is optional: pass nil to run
// the live view without permanent retention.
func NewCollectorEngine(cfg config.Config, fetcher Fetcher, store Store, sink Sink, filter LabelFilter) (*collectorEngine, error) {
	if check.IfNil(fetcher) {
		return nil, errors.New("nil fetcher")
	}
	if check.IfNil(store) {
		return nil, errors.New("nil store")
	}
	if check.IfNil(filter) {
		return nil, errors.New("nil label filter")
	}

	return &collectorEngine{
		config:  cfg,
		fetcher: fetcher,
		store:   store,
		sink:    sink,
		filter:  filter,
	}, nil
}

// Process runs one poll cycle. A failed fetch leaves the rolling store untouched and the
// timer keeps its normal cadence: a connectivity blip must never stop future polling.
func (e *collectorEngine) Process(ctx context.Context) {
	log.Debug("waking up to poll the BMS", "url", e.config.BMS.URL)

	fetchCtx, cancelFetch := context.WithTimeout(ctx, time.Duration(e.config.BMS.RequestTimeoutInSeconds)*time.Second)
	defer cancelFetch()

	records, err := e.fetcher.Fetch(fetchCtx)
	if err != nil {
		log.Warn("poll cycle failed, keeping previous data", "error", err)
		e.recordFailure(err)
		return
	}

	tracked := e.filter.Apply(records)
	e.store.Ingest(tracked)
	e.recordSuccess(len(tracked))

	log.Debug("finished poll cycle", "fetched", len(records), "tracked", len(tracked))

	if check.IfNil(e.sink) {
		return
	}

	writeCtx, cancelWrite := context.WithTimeout(ctx, time.Duration(e.config.Influx.WriteTimeoutInSeconds)*time.Second)
	defer cancelWrite()

	err = e.sink.Write(writeCtx, tracked)
	if err != nil {
		log.Warn("failed to persist batch, data points are discarded", "error", err)
	}
}

func (e *collectorEngine) recordSuccess(points int) {
	e.mutStatus.Lock()
	defer e.mutStatus.Unlock()

	e.cycles++
	e.pointsIngested += uint64(points)
	e.lastSuccess = time.Now()
	e.lastError = nil
}

func (e *collectorEngine) recordFailure(err error) {
	e.mutStatus.Lock()
	defer e.mutStatus.Unlock()

	e.cycles++
	e.failedCycles++
	e.lastError = err
}

// Status reports the pipeline health so the presentation layer can tell a quiet sensor
// ("live" but flat) from a broken pipeline ("stale") or a cold start ("no-data")
func (e *collectorEngine) Status() common.CollectorStatus {
	e.mutStatus.RLock()
	defer e.mutStatus.RUnlock()

	status := common.CollectorStatus{
		InstallationID:        e.config.InstallationID,
		Cycles:                e.cycles,
		FailedCycles:          e.failedCycles,
		PointsIngested:        e.pointsIngested,
		LastSuccessTime:       e.lastSuccess,
		PollIntervalInSeconds: e.config.PollIntervalInSeconds,
	}
	if e.lastError != nil {
		status.LastError = e.lastError.Error()
	}

	staleCutoff := time.Duration(staleAfterIntervals*e.config.PollIntervalInSeconds) * time.Second
	switch {
	case e.lastSuccess.IsZero():
		status.State = common.StateNoData
	case time.Since(e.lastSuccess) > staleCutoff:
		status.State = common.StateStale
	default:
		status.State = common.StateLive
	}

	return status
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *collectorEngine) IsInterfaceNil() bool {
	return e == nil
}
