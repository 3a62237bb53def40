// Package gateway содержит клиент REST API платёжного шлюза с поддержкой подписок.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	maxErrorBodyBytes = 4 << 10
	idempotencyHeader = "Idempotency-Key"
)

// HTTPError — ответ шлюза с кодом 5xx или неожиданным статусом.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Body)
}

// Client реализует domain.PaymentGateway поверх HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logger     *log.Entry
}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithHTTPClient подменяет http.Client (тесты, прокси).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient.Timeout = timeout
		}
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *log.Entry) ClientOption {
	return func(client *Client) {
		if logger != nil {
			client.logger = logger
		}
	}
}

// NewClient создаёт клиент шлюза. secretKey передаётся как логин Basic-авторизации.
func NewClient(baseURL, secretKey string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid gateway base url %q", baseURL)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		logger:     log.New().WithField("component", "gateway-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateSubscription отправляет POST /subscriptions. Ответ 4xx шлюза считается отказом:
// тело возвращается со статусом failed, чтобы классификатор отклонил его.
func (c *Client) CreateSubscription(ctx context.Context, req domain.SubscriptionRequest) (map[string]any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal subscription request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/subscriptions", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(idempotencyHeader, idempotencyKey(req.Code))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", domain.ErrInvalidGatewayResponse, err)
		}
		return result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return c.rejection(req.Code, resp), nil
	default:
		return nil, readHTTPError(resp)
	}
}

// CancelSubscription отправляет DELETE /subscriptions/{id}.
func (c *Client) CancelSubscription(ctx context.Context, subscription domain.Subscription) error {
	if subscription.ID == "" {
		return errors.New("subscription id is empty")
	}

	httpReq, err := c.newRequest(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(subscription.ID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) rejection(orderCode string, resp *http.Response) map[string]any {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	result := make(map[string]any)
	if err := json.Unmarshal(raw, &result); err != nil {
		result["message"] = string(raw)
	}
	result["status"] = string(domain.SubscriptionStatusFailed)
	result["http_status"] = resp.StatusCode

	c.logger.WithFields(log.Fields{
		"order_code":  orderCode,
		"http_status": resp.StatusCode,
	}).Warn("gateway rejected subscription request")
	return result
}

func readHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
}

// idempotencyKey стабилен для одного заказа, повторная отправка не создаст вторую подписку.
func idempotencyKey(orderCode string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("subscription:"+orderCode)).String()
}

var _ domain.PaymentGateway = (*Client)(nil)
