package factory

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/birdlab-tech/building-analytics/services/collector/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArgs(t *testing.T) ArgsComponentsHandler {
	return ArgsComponentsHandler{
		BMSToken:      "bms-token",
		ServiceKeyApi: "service-key",
		Config: config.Config{
			InstallationID:        "sackville_hq",
			PollIntervalInSeconds: 1,
			HistoryCapacity:       100,
			BMS: config.BMSConfig{
				URL:                     "https://127.0.0.1:59999/rest",
				RequestTimeoutInSeconds: 1,
			},
			API: config.APIConfig{
				ListenAddress: "127.0.0.1:0",
			},
			Filters: config.FiltersConfig{
				DatabasePath: filepath.Join(t.TempDir(), "filters.db"),
			},
		},
	}
}

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	t.Run("should work without a sink", func(t *testing.T) {
		handler, err := NewComponentsHandler(testArgs(t))

		require.NotNil(t, handler)
		require.Nil(t, err)

		handler.Close()
	})
	t.Run("should work with the influx sink enabled", func(t *testing.T) {
		args := testArgs(t)
		args.InfluxToken = "influx-token"
		args.Config.Influx = config.InfluxConfig{
			Enabled:               true,
			URL:                   "http://127.0.0.1:59998",
			Org:                   "birdlab",
			Bucket:                "bms_data",
			WriteTimeoutInSeconds: 1,
		}

		handler, err := NewComponentsHandler(args)

		require.NotNil(t, handler)
		require.Nil(t, err)

		handler.Close()
	})
	t.Run("invalid capacity should error", func(t *testing.T) {
		args := testArgs(t)
		args.Config.HistoryCapacity = 0

		handler, err := NewComponentsHandler(args)

		require.Nil(t, handler)
		require.Error(t, err)
	})
}

func TestComponentsHandlerMethods(t *testing.T) {
	t.Parallel()

	handler, _ := NewComponentsHandler(testArgs(t))

	handler.Start()

	fetcher := handler.GetFetcher()
	assert.Equal(t, "*client.bmsClient", fmt.Sprintf("%T", fetcher))

	rollingStore := handler.GetStore()
	assert.Equal(t, "*store.rollingStore", fmt.Sprintf("%T", rollingStore))

	eng := handler.GetEngine()
	assert.Equal(t, "*engine.collectorEngine", fmt.Sprintf("%T", eng))

	server := handler.GetServer()
	assert.Equal(t, "*api.server", fmt.Sprintf("%T", server))

	handler.Close()
}

func TestComponentsHandler_StartIsIdempotent(t *testing.T) {
	t.Parallel()

	handler, _ := NewComponentsHandler(testArgs(t))

	handler.Start()
	handler.Start()

	handler.Close()
	handler.Close()
}
