package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcdexio/dsc-engine/common/logging"
)

// defaultTransport bounds connection setup so a dead provider fails fast.
var defaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout: 500 * time.Millisecond,
	}).DialContext,
	TLSHandshakeTimeout: 1000 * time.Millisecond,
	MaxIdleConns:        100,
	IdleConnTimeout:     30 * time.Second,
}

// HTTP polls a JSON price endpoint of the form {"price": "2006.41"} and
// scales the decimal price to the 8-decimal feed convention.
type HTTP struct {
	client *http.Client
	url    string
	logger logging.Logger
}

// NewHTTP returns a feed backed by url.
func NewHTTP(url string, logger logging.Logger) (*HTTP, error) {
	if url == "" {
		return nil, fmt.Errorf("feed: url is empty")
	}
	return &HTTP{
		client: &http.Client{Transport: defaultTransport, Timeout: 10 * time.Second},
		url:    url,
		logger: logger,
	}, nil
}

type priceResponse struct {
	Price decimal.Decimal `json:"price"`
}

// LatestAnswer fetches and scales the current price.
func (f *HTTP) LatestAnswer(ctx context.Context) (*big.Int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if f.logger != nil {
			f.logger.Error("price request %s failed err=%s", f.url, err)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: unexpected status %d from %s", resp.StatusCode, f.url)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var payload priceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("feed: decode price payload: %w", err)
	}
	return payload.Price.Shift(8).Truncate(0).BigInt(), nil
}
