// Package launch calls the game launch API that the probe runner checks.
package launch

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// StatusError is returned when the API answers with a 4xx or 5xx status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP錯誤：狀態碼 %d", e.StatusCode)
}

// Config describes one launch API environment
type Config struct {
	Endpoint        string
	DepositEndpoint string
	Key             string
	AccountPrefix   string
	IP              string
	AppURL          string
	ExitURL         string
	Language        string
	Platform        int
	Direct          bool
	// Timestamp is sent verbatim when set, otherwise the current unix time is used
	Timestamp string
	Timeout   time.Duration
}

// Client signs and sends launch API requests
type Client struct {
	cfg    Config
	http   *http.Client
	clock  clock.Clock
	logger *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock sets the clock used for request timestamps
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a launch API client
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// launchRequest field order is part of the signature
type launchRequest struct {
	Account      string `json:"account"`
	Agent        string `json:"agent"`
	GameID       int    `json:"gameId"`
	IP           string `json:"ip"`
	Timestamp    string `json:"timestamp"`
	AppURL       string `json:"appUrl"`
	ExitURL      string `json:"exitUrl"`
	LanguageType string `json:"languageType"`
	Platform     int    `json:"platform"`
	IsDirect     bool   `json:"isDirect"`
}

type depositRequest struct {
	Account   string `json:"account"`
	Agent     string `json:"agent"`
	OrderID   string `json:"orderId"`
	Money     int64  `json:"money"`
	Timestamp string `json:"timestamp"`
}

// Account returns the player account used for agent and gameID
func (c *Client) Account(agent, gameID int) string {
	return c.cfg.AccountPrefix + strconv.Itoa(agent) + strconv.Itoa(gameID)
}

// GameURL requests a launch URL for agent and gameID
func (c *Client) GameURL(ctx context.Context, agent, gameID int) (string, error) {
	req := launchRequest{
		Account:      c.Account(agent, gameID),
		Agent:        strconv.Itoa(agent),
		GameID:       gameID,
		IP:           c.cfg.IP,
		Timestamp:    c.timestamp(),
		AppURL:       c.cfg.AppURL,
		ExitURL:      c.cfg.ExitURL,
		LanguageType: c.cfg.Language,
		Platform:     c.cfg.Platform,
		IsDirect:     c.cfg.Direct,
	}

	status, body, err := c.post(ctx, c.cfg.Endpoint, req)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("JSON解析錯誤: invalid response body")
	}
	if code := gjson.GetBytes(body, "code"); code.Type != gjson.Number || code.Int() != 0 {
		return "", fmt.Errorf("API錯誤回應: %s", bytes.TrimSpace(body))
	}
	url := gjson.GetBytes(body, "data.url").String()
	if url == "" {
		return "", fmt.Errorf("API回應中沒有取得 URL，HTTP狀態碼：%d", status)
	}
	return url, nil
}

// Deposit credits money to account through the wallet API and returns the order id
func (c *Client) Deposit(ctx context.Context, account string, agent int, money int64) (string, error) {
	if c.cfg.DepositEndpoint == "" {
		return "", fmt.Errorf("deposit endpoint is not configured")
	}
	req := depositRequest{
		Account:   account,
		Agent:     strconv.Itoa(agent),
		OrderID:   uuid.NewString(),
		Money:     money,
		Timestamp: strconv.FormatInt(c.clock.Now().Unix(), 10),
	}
	_, body, err := c.post(ctx, c.cfg.DepositEndpoint, req)
	if err != nil {
		return "", err
	}
	c.logger.Debug("deposit response",
		zap.String("account", account),
		zap.String("order_id", req.OrderID),
		zap.ByteString("body", bytes.TrimSpace(body)))
	return req.OrderID, nil
}

func (c *Client) timestamp() string {
	if c.cfg.Timestamp != "" {
		return c.cfg.Timestamp
	}
	return strconv.FormatInt(c.clock.Now().Unix(), 10)
}

// Sign returns the hex MD5 of payload followed by key
func Sign(payload []byte, key string) string {
	sum := md5.Sum(append(append([]byte{}, payload...), key...))
	return hex.EncodeToString(sum[:])
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c *Client) post(ctx context.Context, endpoint string, v any) (int, []byte, error) {
	payload, err := encode(v)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("API請求錯誤: %w", err)
	}
	req.Header.Set("Authorization", Sign(payload, c.cfg.Key))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API請求錯誤: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		c.logger.Debug("launch API error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return resp.StatusCode, body, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp.StatusCode, body, nil
}
