package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/payment/domain"
)

type Config struct {
	// Endpoint is the checkout URL; the payment option is appended as the
	// last path segment.
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client posts payment requests to the processor's checkout API as JSON.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type submitResponse struct {
	RedirectURL string `json:"redirect_url"`
}

func (c *Client) Submit(ctx context.Context, option orderdomain.PaymentOption, req domain.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode payment request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + string(option)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("post payment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gateway responded %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if out.RedirectURL == "" {
		return "", fmt.Errorf("gateway response has no redirect url")
	}
	return out.RedirectURL, nil
}
