// Package mirror reads finalized transactions back from the public mirror node.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
	"github.com/dmaiga/solidavenir/pkg/types"
)

const maxBodyBytes = 1 << 20

// Client performs a single best-effort GET per lookup.
// It never retries and never turns a failed read into an error for the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// NewClient creates a mirror client rooted at baseURL, e.g. https://testnet.mirrornode.hedera.com
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger, metrics *monitoring.MetricsCollector) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		metrics:    metrics,
	}
}

// TransactionKey renders the mirror form of a transaction id: payer-seconds-nanos
func TransactionKey(key interfaces.TransactionKey) string {
	validStart := key.ValidStart.UTC()
	return fmt.Sprintf("%s-%d-%09d", key.PayerAccountID, validStart.Unix(), validStart.Nanosecond())
}

// TransactionURL returns the mirror URL for key
func (c *Client) TransactionURL(key interfaces.TransactionKey) string {
	return fmt.Sprintf("%s/api/v1/transactions/%s", c.baseURL, TransactionKey(key))
}

// LookupTransaction fetches the mirror record of key
func (c *Client) LookupTransaction(ctx context.Context, key interfaces.TransactionKey) *types.MirrorResult {
	url := c.TransactionURL(key)
	result := c.lookup(ctx, url)

	if c.metrics != nil {
		c.metrics.RecordMirrorLookup(string(result.Outcome))
	}
	c.logger.MirrorLookup(ctx, url, string(result.Outcome), result.Err)

	return result
}

func (c *Client) lookup(ctx context.Context, url string) *types.MirrorResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &types.MirrorResult{Outcome: types.MirrorNotFound, URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failed(url, fmt.Errorf("mirror node returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failed(url, err)
	}
	if !json.Valid(body) {
		return failed(url, fmt.Errorf("mirror node returned invalid JSON"))
	}

	summary := gjson.GetManyBytes(body, "transactions.0.name", "transactions.0.result")
	c.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"url":    url,
		"name":   summary[0].String(),
		"result": summary[1].String(),
	}).Debug("Mirror transaction record")

	return &types.MirrorResult{Outcome: types.MirrorFound, URL: url, Data: json.RawMessage(body)}
}

// Decode unmarshals the payload of a found lookup
func Decode(result *types.MirrorResult) (*TransactionsResponse, error) {
	if !result.Found() {
		return nil, fmt.Errorf("mirror lookup %s has no payload", result.Outcome)
	}
	var out TransactionsResponse
	if err := json.Unmarshal(result.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func failed(url string, err error) *types.MirrorResult {
	return &types.MirrorResult{
		Outcome: types.MirrorFailed,
		URL:     url,
		Err:     types.NewMirrorError("mirror lookup failed", err),
	}
}
