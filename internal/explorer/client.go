package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stakeScope/internal/indexer"
	"stakeScope/internal/model"
)

// DefaultURL is the Etherscan v2 multichain endpoint.
const DefaultURL = "https://api.etherscan.io/v2/api"

const (
	statusOK        = "1"
	noRecordsPrefix = "no records found"
	maxBodyBytes    = 32 << 20
)

// Config holds the query parameters that stay fixed across pages.
type Config struct {
	BaseURL  string
	APIKey   string
	ChainID  uint64
	Contract string
	Topic0   string
	Timeout  time.Duration
}

// Client pages through explorer getLogs results for one contract and topic0.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Response is the explorer JSON envelope.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("explorer url parse %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("explorer url must be http(s), got %q", cfg.BaseURL)
	}
	if cfg.Contract == "" {
		return nil, fmt.Errorf("contract address is required")
	}
	if cfg.Topic0 == "" {
		return nil, fmt.Errorf("topic0 is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

func (c *Client) pageParams(page, pageSize int) url.Values {
	return url.Values{
		"chainid":   []string{strconv.FormatUint(c.cfg.ChainID, 10)},
		"module":    []string{"logs"},
		"action":    []string{"getLogs"},
		"address":   []string{c.cfg.Contract},
		"topic0":    []string{c.cfg.Topic0},
		"fromBlock": []string{"0"},
		"toBlock":   []string{"latest"},
		"page":      []string{strconv.Itoa(page)},
		"offset":    []string{strconv.Itoa(pageSize)},
		"apikey":    []string{c.cfg.APIKey},
	}
}

// GetLogs requests a single page and returns the decoded envelope with the raw body.
func (c *Client) GetLogs(ctx context.Context, page, pageSize int) (*Response, []byte, error) {
	endpoint := c.cfg.BaseURL + "?" + c.pageParams(page, pageSize).Encode()
	c.logger.Debug("explorer request", zap.Int("page", page), zap.Int("offset", pageSize), zap.String("contract", c.cfg.Contract))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, body, fmt.Errorf("explorer http status %d: %s", resp.StatusCode, truncate(body, 512))
	}

	parsed := &Response{}
	if err := json.Unmarshal(body, parsed); err != nil {
		return nil, body, fmt.Errorf("parse response: %w", err)
	}
	return parsed, body, nil
}

// FetchPage implements indexer.PageSource.
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) (indexer.Page, error) {
	resp, raw, err := c.GetLogs(ctx, page, pageSize)
	if err != nil {
		return indexer.Page{Raw: raw}, err
	}

	out := indexer.Page{
		Status:  resp.Status,
		Message: resp.Message,
		Raw:     raw,
	}

	if resp.Status != statusOK {
		// Etherscan reports an exhausted range as status 0 rather than an empty array.
		if strings.HasPrefix(strings.ToLower(resp.Message), noRecordsPrefix) {
			out.NoRecords = true
		}
		return out, nil
	}

	var records []model.LogRecord
	if len(resp.Result) > 0 && string(resp.Result) != "null" {
		if err := json.Unmarshal(resp.Result, &records); err != nil {
			return out, fmt.Errorf("decode result: %w", err)
		}
	}
	out.Records = records
	return out, nil
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
