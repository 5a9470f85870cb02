package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	"github.com/google/uuid"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("client")

// BMS controllers report timestamps like "Wed Jan  7 14:45:53 2026 UTC"
const bmsTimestampLayout = "Mon Jan _2 15:04:05 2006 MST"

const restPathPrefix = "/rest/"

// vendor naming convention: L<line>OS<outstation><point type><point number>
var labelPrefixPattern = regexp.MustCompile(`^L(\d+)OS(\d+)([A-Z])(\d+)$`)

type bmsClient struct {
	url            string
	bearerToken    string
	installationID string
	client         *http.Client
}

// NewBMSClient creates a client for the building management system REST endpoint. Certificate
// verification is disabled on purpose: BMS controllers on the internal network present
// self-signed certificates.
func NewBMSClient(url string, bearerToken string, installationID string, timeout time.Duration) *bmsClient {
	return &bmsClient{
		url:            url,
		bearerToken:    bearerToken,
		installationID: installationID,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Fetch performs one authenticated GET against the BMS endpoint and normalizes the payload into
// point records. Individual points with an unparseable value or timestamp are skipped and counted,
// never failing the whole batch. Retry policy belongs to the caller.
func (c *bmsClient) Fetch(ctx context.Context) ([]common.PointRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status code %d", ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status code %d", ErrConnectivity, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	return c.parseResponse(body), nil
}

// parseResponse accepts both payload shapes seen on BMS firmwares: a "points" array of
// single-entry objects, and a flat object keyed directly by point path.
func (c *bmsClient) parseResponse(body []byte) []common.PointRecord {
	records := make([]common.PointRecord, 0)
	skipped := 0

	appendEntry := func(path, details gjson.Result) {
		record, ok := c.parsePoint(path.String(), details)
		if !ok {
			skipped++
			return
		}
		records = append(records, record)
	}

	root := gjson.ParseBytes(body)
	points := root.Get("points")
	if points.IsArray() {
		points.ForEach(func(_, entry gjson.Result) bool {
			entry.ForEach(func(path, details gjson.Result) bool {
				appendEntry(path, details)
				return true
			})
			return true
		})
	} else {
		root.ForEach(func(path, details gjson.Result) bool {
			appendEntry(path, details)
			return true
		})
	}

	if skipped > 0 {
		log.Warn("skipped malformed points in batch", "skipped", skipped, "parsed", len(records))
	}

	return records
}

func (c *bmsClient) parsePoint(path string, details gjson.Result) (common.PointRecord, bool) {
	label := NormalizeLabel(strings.TrimPrefix(path, restPathPrefix))

	rawValue := details.Get("value")
	if !rawValue.Exists() {
		log.Debug("point without a value", "label", label)
		return common.PointRecord{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(rawValue.String()), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		log.Debug("point with a non-numeric value", "label", label, "value", rawValue.String())
		return common.PointRecord{}, false
	}

	// a missing timestamp drops the record: substituting "now" would fabricate data
	rawTime := strings.TrimSpace(details.Get("last_update_time").String())
	if len(rawTime) == 0 {
		log.Debug("point without a timestamp", "label", label)
		return common.PointRecord{}, false
	}
	at, err := time.Parse(bmsTimestampLayout, rawTime)
	if err != nil {
		log.Debug("point with an unparseable timestamp", "label", label, "timestamp", rawTime)
		return common.PointRecord{}, false
	}

	return common.PointRecord{
		ID:             uuid.NewString(),
		InstallationID: c.installationID,
		Label:          label,
		Value:          value,
		At:             at,
	}, true
}

// NormalizeLabel rewrites the vendor point prefix into the convention used across the
// historical exports: L11OS11D1_ChW Sec Pump1 Speed -> L11_O11_D1_ChW Sec Pump1 Speed.
// Labels that do not match the convention are kept as-is.
func NormalizeLabel(label string) string {
	parts := strings.SplitN(label, "_", 2)
	if len(parts) != 2 {
		return label
	}

	matches := labelPrefixPattern.FindStringSubmatch(parts[0])
	if matches == nil {
		return label
	}

	line, outstation, pointType, pointNum := matches[1], matches[2], matches[3], matches[4]
	return fmt.Sprintf("L%s_O%s_%s%s_%s", line, outstation, pointType, pointNum, parts[1])
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *bmsClient) IsInterfaceNil() bool {
	return c == nil
}
