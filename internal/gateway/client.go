// Package gateway предоставляет клиент для проверки транзакций во внешнем платёжном шлюзе.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/coursemart/internal/currency"
)

var (
	// ErrNotConfigured возвращается, если адрес шлюза не задан.
	ErrNotConfigured = errors.New("payment gateway client not configured")
	// ErrTransactionNotFound возвращается, если шлюз не знает транзакцию.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDeclined возвращается, если транзакция не завершилась успешно.
	ErrDeclined = errors.New("transaction was not successful")
)

const statusSuccess = "success"

// Client инкапсулирует HTTP-взаимодействие с платёжным шлюзом.
type Client struct {
	baseURL    string
	secret     string
	httpClient *retryablehttp.Client
}

// Verification описывает подтверждённую шлюзом транзакцию.
type Verification struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
	Currency  currency.Code
	PaidAt    time.Time
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string    `json:"status"`
		Reference string    `json:"reference"`
		Amount    int64     `json:"amount"`
		Currency  string    `json:"currency"`
		PaidAt    time.Time `json:"paid_at"`
	} `json:"data"`
}

// NewClient создаёт клиент шлюза по указанному адресу с секретным ключом для авторизации.
// Ответы 429 и 5xx повторяются с учётом заголовка Retry-After.
func NewClient(baseURL, secret string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil

	return &Client{
		baseURL:    base,
		secret:     secret,
		httpClient: rc,
	}
}

// Verify запрашивает у шлюза статус транзакции reference. Неуспешная транзакция
// возвращается вместе с ErrDeclined.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, reference)
	default:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !body.Status {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, body.Message)
	}

	code, err := currency.ParseCode(body.Data.Currency)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	v := &Verification{
		Reference: body.Data.Reference,
		Status:    body.Data.Status,
		// Шлюз возвращает сумму в минимальных единицах валюты.
		Amount:   decimal.New(body.Data.Amount, -2),
		Currency: code,
		PaidAt:   body.Data.PaidAt,
	}

	if v.Status != statusSuccess {
		return v, fmt.Errorf("%w: %s", ErrDeclined, v.Status)
	}
	return v, nil
}
