// Package stockapi fetches daily stock quotes from the public data.go.kr
// market price service.
package stockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/model"
)

const defaultBaseURL = "https://apis.data.go.kr/1160100/service/GetStockSecuritiesInfoService/getStockPriceInfo"

// Config holds the settings for the price API client.
type Config struct {
	ServiceKey string
	BaseURL    string
	Timeout    time.Duration
}

// Client queries the daily price endpoint for one stock on one basis date.
type Client struct {
	httpClient *http.Client
	serviceKey string
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a price API client. The service key is mandatory; the
// upstream rejects unauthenticated calls.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("%w: stock API service key is required", common.ErrMissingConfig)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		serviceKey: cfg.ServiceKey,
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

// priceResponse mirrors the upstream JSON envelope.
type priceResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items struct {
				Item []priceItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type priceItem struct {
	BasDt  string `json:"basDt"`
	ItmsNm string `json:"itmsNm"`
	Mkp    string `json:"mkp"`
	FltRt  string `json:"fltRt"`
	Vs     string `json:"vs"`
}

// FetchQuote asks the upstream for the stock's quote on the given basis
// date. A successful response with no rows returns (nil, nil); the date was
// simply not a trading day.
func (c *Client) FetchQuote(ctx context.Context, stockName string, date time.Time) (*model.StockQuote, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("resultType", "json")
	params.Set("basDt", date.UTC().Format("20060102"))
	params.Set("itmsNm", stockName)

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: price request failed: %v", common.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read price response: %v", common.ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: price API returned status %d", common.ErrExternalService, resp.StatusCode)
	}

	var parsed priceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse price response: %v", common.ErrMalformedResponse, err)
	}

	header := parsed.Response.Header
	if header.ResultCode != "" && header.ResultCode != "00" {
		return nil, fmt.Errorf("%w: price API error %s: %s",
			common.ErrExternalService, header.ResultCode, header.ResultMsg)
	}

	items := parsed.Response.Body.Items.Item
	if len(items) == 0 {
		return nil, nil
	}

	return quoteFromItem(items[0]), nil
}

// quoteFromItem maps one upstream row to a quote. Numeric fields arrive as
// strings and unparseable values become zero rather than failures.
func quoteFromItem(item priceItem) *model.StockQuote {
	date, err := time.ParseInLocation("20060102", strings.TrimSpace(item.BasDt), time.UTC)
	if err != nil {
		date = time.Time{}
	}

	return &model.StockQuote{
		Date:            date,
		Name:            item.ItmsNm,
		Current:         parseNumeric(item.Mkp),
		FluctuationRate: parseNumeric(item.FltRt),
		VsAmount:        parseNumeric(item.Vs),
	}
}

func parseNumeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
