package sink

import (
	"context"
	"fmt"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	"github.com/birdlab-tech/building-analytics/services/collector/config"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("sink")

const measurementName = "bms_point"

// influxSink appends point record batches to an InfluxDB v2 bucket with unbounded retention.
// There is no local buffering or retry queue: a batch that cannot be written is lost, and the
// live rolling store is unaffected either way.
type influxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
}

// NewInfluxSink creates the InfluxDB writer. Connectivity is not probed here: an unreachable
// database at startup must not prevent the live view from collecting.
func NewInfluxSink(cfg config.InfluxConfig, token string) *influxSink {
	client := influxdb2.NewClient(cfg.URL, token)

	return &influxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
	}
}

// Write appends the whole batch, tagged by installation and point categorization
func (s *influxSink) Write(ctx context.Context, records []common.PointRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(records))
	for _, record := range records {
		tags := categorizePoint(record.Label)
		point := write.NewPoint(
			measurementName,
			map[string]string{
				"label":            record.Label,
				"installation_id":  record.InstallationID,
				"system":           tags.system,
				"measurement_type": tags.measurementType,
				"line":             tags.line,
				"outstation":       tags.outstation,
			},
			map[string]interface{}{
				"value": record.Value,
			},
			record.At,
		)
		points = append(points, point)
	}

	err := s.writeAPI.WritePoint(ctx, points...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	log.Debug("wrote batch to time-series database", "bucket", s.bucket, "points", len(points))

	return nil
}

// Close releases the underlying InfluxDB client
func (s *influxSink) Close() {
	s.client.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *influxSink) IsInterfaceNil() bool {
	return s == nil
}
