package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/birdlab-tech/building-analytics/services/collector/config"
	"github.com/birdlab-tech/building-analytics/services/collector/factory"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/require"
)

var log = logger.GetOrCreate("e2e-test")

const bmsTimestampLayout = "Mon Jan _2 15:04:05 2006 MST"

func collectorConfig(bmsURL string, dbPath string, historyCapacity uint32) config.Config {
	return config.Config{
		InstallationID:        "e2e-building",
		PollIntervalInSeconds: 1,
		HistoryCapacity:       historyCapacity,
		BMS: config.BMSConfig{
			URL:                     bmsURL,
			RequestTimeoutInSeconds: 5,
		},
		API: config.APIConfig{
			ListenAddress: "127.0.0.1:0",
		},
		Filters: config.FiltersConfig{
			DatabasePath: dbPath,
		},
	}
}

func TestE2EFlow(t *testing.T) {
	log.Info("======== 1. Start a mock BMS endpoint with a self-signed certificate")
	numRequests := uint64(0)
	mockBMS := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-bms-token", r.Header.Get("Authorization"))
		atomic.AddUint64(&numRequests, 1)

		now := time.Now().UTC().Format(bmsTimestampLayout)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(`{"points": [
			{"/rest/L11OS11D1_ChW Sec Pump1 Speed": {"value": "72.09", "last_update_time": "%s"}},
			{"/rest/Outside Temperature": {"value": "11.4", "last_update_time": "%s"}},
			{"/rest/Broken Sensor": {"value": "fault", "last_update_time": "%s"}}
		]}`, now, now, now)))
	}))
	defer mockBMS.Close()

	log.Info("======== 2. Prepare SQLite path for the filter set storage")
	dbPath := filepath.Join(t.TempDir(), "e2e_filtersets.db")

	log.Info("======== 3. Start the collector via componentsHandler")
	collectorHandler, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		BMSToken:      "test-bms-token",
		ServiceKeyApi: "test-service-key",
		Config:        collectorConfig(mockBMS.URL, dbPath, 100),
	})
	require.NoError(t, err)

	collectorHandler.Start()
	defer collectorHandler.Close()

	_, port, err := net.SplitHostPort(collectorHandler.GetServer().Address())
	require.NoError(t, err)
	apiURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	log.Info("======== 4. Wait for at least 2 poll cycles")
	// the collector polls every 1s, with an immediate first cycle
	time.Sleep(2500 * time.Millisecond)
	require.GreaterOrEqual(t, atomic.LoadUint64(&numRequests), uint64(2))

	log.Info("======== 5. Test the collector API using HTTP calls")
	log.Info("======== 5.a. Fetch the status")
	respStatus, err := http.Get(apiURL + "/api/status")
	require.NoError(t, err)
	defer func() {
		_ = respStatus.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respStatus.StatusCode)

	var statusData struct {
		InstallationID string `json:"installationId"`
		State          string `json:"state"`
		Cycles         uint64 `json:"cycles"`
		FailedCycles   uint64 `json:"failedCycles"`
		PointsIngested uint64 `json:"pointsIngested"`
		LastError      string `json:"lastError"`
	}
	err = json.NewDecoder(respStatus.Body).Decode(&statusData)
	require.NoError(t, err)
	require.Equal(t, "e2e-building", statusData.InstallationID)
	require.Equal(t, "live", statusData.State)
	require.GreaterOrEqual(t, statusData.Cycles, uint64(2))
	require.Zero(t, statusData.FailedCycles)
	require.Empty(t, statusData.LastError)

	log.Info("======== 5.b. Fetch the labels, the vendor prefix should be normalized")
	respLabels, err := http.Get(apiURL + "/api/labels")
	require.NoError(t, err)
	defer func() {
		_ = respLabels.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respLabels.StatusCode)

	var labelsData struct {
		Labels []string `json:"labels"`
	}
	err = json.NewDecoder(respLabels.Body).Decode(&labelsData)
	require.NoError(t, err)
	require.Equal(t, []string{"L11_O11_D1_ChW Sec Pump1 Speed", "Outside Temperature"}, labelsData.Labels)

	log.Info("======== 5.c. Fetch one series")
	respSeries, err := http.Get(apiURL + "/api/series/" + url.PathEscape("Outside Temperature"))
	require.NoError(t, err)
	defer func() {
		_ = respSeries.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respSeries.StatusCode)

	var seriesData struct {
		Label   string `json:"label"`
		Samples []struct {
			At    time.Time `json:"at"`
			Value float64   `json:"value"`
		} `json:"samples"`
	}
	err = json.NewDecoder(respSeries.Body).Decode(&seriesData)
	require.NoError(t, err)
	require.Equal(t, "Outside Temperature", seriesData.Label)
	require.NotEmpty(t, seriesData.Samples)
	require.Equal(t, 11.4, seriesData.Samples[0].Value)

	log.Info("======== 5.d. An unknown label returns 404")
	respUnknown, err := http.Get(apiURL + "/api/series/missing")
	require.NoError(t, err)
	defer func() {
		_ = respUnknown.Body.Close()
	}()
	require.Equal(t, http.StatusNotFound, respUnknown.StatusCode)

	log.Info("======== 5.e. Fetch the full snapshot")
	respSnapshot, err := http.Get(apiURL + "/api/snapshot")
	require.NoError(t, err)
	defer func() {
		_ = respSnapshot.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respSnapshot.StatusCode)

	var snapshotData struct {
		Series []struct {
			Label string `json:"label"`
		} `json:"series"`
	}
	err = json.NewDecoder(respSnapshot.Body).Decode(&snapshotData)
	require.NoError(t, err)
	require.Len(t, snapshotData.Series, 2)

	log.Info("======== 6. Filter set management")
	log.Info("======== 6.a. Saving without the service key is rejected")
	setBody := []byte(`{"name": "pumps", "targets": {"name": "targets", "rules": [{"pattern": "*pump*", "enabled": true}]}}`)
	respUnauthorized, err := http.Post(apiURL+"/api/filtersets", "application/json", bytes.NewBuffer(setBody))
	require.NoError(t, err)
	defer func() {
		_ = respUnauthorized.Body.Close()
	}()
	require.Equal(t, http.StatusUnauthorized, respUnauthorized.StatusCode)

	log.Info("======== 6.b. Saving with the service key works")
	reqSave, err := http.NewRequest(http.MethodPost, apiURL+"/api/filtersets", bytes.NewBuffer(setBody))
	require.NoError(t, err)
	reqSave.Header.Set("Content-Type", "application/json")
	reqSave.Header.Set("X-Api-Key", "test-service-key")

	httpClient := &http.Client{}
	respSave, err := httpClient.Do(reqSave)
	require.NoError(t, err)
	defer func() {
		_ = respSave.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respSave.StatusCode)

	log.Info("======== 6.c. The saved set can be read back without a key")
	respGet, err := http.Get(apiURL + "/api/filtersets/pumps")
	require.NoError(t, err)
	defer func() {
		_ = respGet.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respGet.StatusCode)

	var setData struct {
		Name    string `json:"name"`
		Targets struct {
			Rules []struct {
				Pattern string `json:"pattern"`
				Enabled bool   `json:"enabled"`
			} `json:"rules"`
		} `json:"targets"`
	}
	err = json.NewDecoder(respGet.Body).Decode(&setData)
	require.NoError(t, err)
	require.Equal(t, "pumps", setData.Name)
	require.Len(t, setData.Targets.Rules, 1)
	require.Equal(t, "*pump*", setData.Targets.Rules[0].Pattern)

	log.Info("======== 6.d. Delete the set with the service key")
	reqDelete, err := http.NewRequest(http.MethodDelete, apiURL+"/api/filtersets/pumps", nil)
	require.NoError(t, err)
	reqDelete.Header.Set("X-Api-Key", "test-service-key")

	respDelete, err := httpClient.Do(reqDelete)
	require.NoError(t, err)
	defer func() {
		_ = respDelete.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respDelete.StatusCode)

	respGone, err := http.Get(apiURL + "/api/filtersets/pumps")
	require.NoError(t, err)
	defer func() {
		_ = respGone.Body.Close()
	}()
	require.Equal(t, http.StatusNotFound, respGone.StatusCode)
}

func TestE2EFlowWithHistoryEviction(t *testing.T) {
	log.Info("======== 1. Start a mock BMS endpoint returning a new reading on every poll")
	globalCounter := uint64(0)
	mockBMS := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter := atomic.AddUint64(&globalCounter, 1)

		// flat payload shape, keyed directly by point path
		now := time.Now().UTC().Format(bmsTimestampLayout)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(
			`{"/rest/Boiler Flow Temp": {"value": "%d", "last_update_time": "%s"}}`,
			counter, now)))
	}))
	defer mockBMS.Close()

	log.Info("======== 2. Start the collector with a history capacity of 2")
	dbPath := filepath.Join(t.TempDir(), "e2e_filtersets.db")
	collectorHandler, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		BMSToken:      "test-bms-token",
		ServiceKeyApi: "test-service-key",
		Config:        collectorConfig(mockBMS.URL, dbPath, 2),
	})
	require.NoError(t, err)

	collectorHandler.Start()
	defer collectorHandler.Close()

	_, port, err := net.SplitHostPort(collectorHandler.GetServer().Address())
	require.NoError(t, err)
	apiURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	log.Info("======== 3. Wait for at least 4 poll cycles, only the last 2 readings should remain")
	time.Sleep(3500 * time.Millisecond)

	log.Info("======== 4. Fetch the series and verify the eviction")
	respSeries, err := http.Get(apiURL + "/api/series/" + url.PathEscape("Boiler Flow Temp"))
	require.NoError(t, err)
	defer func() {
		_ = respSeries.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respSeries.StatusCode)

	var seriesData struct {
		Label   string `json:"label"`
		Samples []struct {
			At    time.Time `json:"at"`
			Value float64   `json:"value"`
		} `json:"samples"`
	}
	err = json.NewDecoder(respSeries.Body).Decode(&seriesData)
	require.NoError(t, err)

	numPolls := atomic.LoadUint64(&globalCounter)
	require.GreaterOrEqual(t, numPolls, uint64(4))
	require.Len(t, seriesData.Samples, 2)

	// oldest evicted first, the two newest readings survive in arrival order
	require.Equal(t, seriesData.Samples[0].Value+1, seriesData.Samples[1].Value)
	require.LessOrEqual(t, seriesData.Samples[0].At.Unix(), seriesData.Samples[1].At.Unix())
	require.GreaterOrEqual(t, seriesData.Samples[1].Value, float64(4))
}
