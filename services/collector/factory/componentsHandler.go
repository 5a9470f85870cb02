package factory

import (
	"context"
	"sync"
	"time"

	sharedCommon "github.com/birdlab-tech/building-analytics/common"
	"github.com/birdlab-tech/building-analytics/services/collector/api"
	"github.com/birdlab-tech/building-analytics/services/collector/client"
	"github.com/birdlab-tech/building-analytics/services/collector/config"
	"github.com/birdlab-tech/building-analytics/services/collector/engine"
	"github.com/birdlab-tech/building-analytics/services/collector/filters"
	"github.com/birdlab-tech/building-analytics/services/collector/sink"
	"github.com/birdlab-tech/building-analytics/services/collector/store"
)

// ArgsComponentsHandler bundles the secrets read from the environment with the TOML configuration
type ArgsComponentsHandler struct {
	BMSToken      string
	ServiceKeyApi string
	InfluxToken   string
	Config        config.Config
}

type closableSink interface {
	engine.Sink
	Close()
}

type componentsHandler struct {
	fetcher      engine.Fetcher
	store        api.SeriesProvider
	sink         closableSink
	engine       Engine
	server       Server
	pollInterval time.Duration
	mutCancel    sync.Mutex
	cancel       func()
	wg           sync.WaitGroup
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(args ArgsComponentsHandler) (*componentsHandler, error) {
	cfg := args.Config

	bmsClient := client.NewBMSClient(
		cfg.BMS.URL,
		args.BMSToken,
		cfg.InstallationID,
		time.Duration(cfg.BMS.RequestTimeoutInSeconds)*time.Second,
	)

	rollingStore, err := store.NewRollingStore(int(cfg.HistoryCapacity))
	if err != nil {
		return nil, err
	}

	labelFilter := filters.NewLabelFilter(cfg.Filters)

	var influxSink closableSink
	var engineSink engine.Sink
	if cfg.Influx.Enabled {
		influxSink = sink.NewInfluxSink(cfg.Influx, args.InfluxToken)
		engineSink = influxSink
	}

	eng, err := engine.NewCollectorEngine(cfg, bmsClient, rollingStore, engineSink, labelFilter)
	if err != nil {
		return nil, err
	}

	filterSetStore, err := filters.NewSQLiteStore(cfg.Filters.DatabasePath)
	if err != nil {
		return nil, err
	}

	serverArgs := api.ArgsWebServer{
		ServiceKeyApi:  args.ServiceKeyApi,
		ListenAddress:  cfg.API.ListenAddress,
		SeriesProvider: rollingStore,
		StatusProvider: eng,
		FilterSets:     filterSetStore,
		GeneralHandler: api.CORSMiddleware,
	}
	server, err := api.NewServer(serverArgs)
	if err != nil {
		_ = filterSetStore.Close()
		return nil, err
	}

	return &componentsHandler{
		fetcher:      bmsClient,
		store:        rollingStore,
		sink:         influxSink,
		engine:       eng,
		server:       server,
		pollInterval: time.Duration(cfg.PollIntervalInSeconds) * time.Second,
	}, nil
}

// GetFetcher returns the BMS client component
func (ch *componentsHandler) GetFetcher() engine.Fetcher {
	return ch.fetcher
}

// GetStore returns the rolling store component
func (ch *componentsHandler) GetStore() api.SeriesProvider {
	return ch.store
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// GetServer returns the HTTP API component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	sharedCommon.PollLoopStarter(ctx, &ch.wg, ch.engine.Process, ch.pollInterval)
	ch.server.Start()
}

// Close closes the inner components, waiting for an in-flight poll cycle to finish
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel == nil {
		return
	}

	ch.cancel()
	ch.cancel = nil
	ch.wg.Wait()

	_ = ch.server.Close()
	if ch.sink != nil {
		ch.sink.Close()
	}
}
