package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRetryAfterDuration = 60

type tokenKey struct{}

// WithToken кладет токен пользователя в контекст; клиент пробрасывает его
// в заголовок Authorization каждого запроса.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext - токен, положенный WithToken, или пустая строка.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client - REST-клиент платформы карт.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New создает клиент бэкенда карт.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type list[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// ListCards возвращает все карты пользователя.
func (c *Client) ListCards(ctx context.Context) ([]models.Card, error) {
	var res list[models.Card]
	if err := c.do(ctx, http.MethodGet, "/cards", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return res.Items, nil
}

// CreateCard выпускает карту с ключом идемпотентности.
func (c *Client) CreateCard(ctx context.Context, card models.NewCard, idempotencyKey string) (models.Card, error) {
	var res models.Card
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := c.do(ctx, http.MethodPost, "/cards", headers, card, &res); err != nil {
		return models.Card{}, fmt.Errorf("create card: %w", err)
	}
	return res, nil
}

func (c *Client) UpdateLimit(ctx context.Context, cardID string, limit decimal.Decimal) (models.Card, error) {
	var res models.Card
	body := map[string]decimal.Decimal{"spendingLimit": limit}
	if err := c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID)+"/limits", nil, body, &res); err != nil {
		return models.Card{}, fmt.Errorf("update limit of card %s: %w", cardID, err)
	}
	return res, nil
}

func (c *Client) FreezeCard(ctx context.Context, cardID string) error {
	if err := c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/freeze", nil, nil, nil); err != nil {
		return fmt.Errorf("freeze card %s: %w", cardID, err)
	}
	return nil
}

func (c *Client) UnfreezeCard(ctx context.Context, cardID string) error {
	if err := c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/unfreeze", nil, nil, nil); err != nil {
		return fmt.Errorf("unfreeze card %s: %w", cardID, err)
	}
	return nil
}

func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	if err := c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(cardID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete card %s: %w", cardID, err)
	}
	return nil
}

// GetBalance возвращает текущий счет.
func (c *Client) GetBalance(ctx context.Context) (models.Account, error) {
	var res models.Account
	if err := c.do(ctx, http.MethodGet, "/users/balance", nil, nil, &res); err != nil {
		return models.Account{}, fmt.Errorf("get balance: %w", err)
	}
	return res, nil
}

func (c *Client) GetBalanceHistory(ctx context.Context) ([]models.BalanceHistoryEntry, error) {
	var res list[models.BalanceHistoryEntry]
	if err := c.do(ctx, http.MethodGet, "/users/balance/history", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("get balance history: %w", err)
	}
	return res.Items, nil
}

func (c *Client) ListCardTransactions(ctx context.Context) ([]models.CardTx, error) {
	var res list[models.CardTx]
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list card transactions: %w", err)
	}
	return res.Items, nil
}

func (c *Client) ListDeposits(ctx context.Context) ([]models.DepositTx, error) {
	var res list[models.DepositTx]
	if err := c.do(ctx, http.MethodGet, "/crypto/deposits", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	return res.Items, nil
}

// CalculateFee запрашивает комиссию за действие на сумму amount.
func (c *Client) CalculateFee(ctx context.Context, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error) {
	var res struct {
		CalculatedFee decimal.Decimal `json:"calculatedFee"`
	}
	body := struct {
		Action models.FeeAction `json:"action"`
		Amount decimal.Decimal  `json:"amount"`
	}{action, amount}

	if err := c.do(ctx, http.MethodPost, "/tiers/calculate-fees", nil, body, &res); err != nil {
		return decimal.Zero, fmt.Errorf("calculate %s fee: %w", action, err)
	}
	return res.CalculatedFee, nil
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	startTime := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer res.Body.Close()

	logger.Log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(startTime)),
	)

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return fmt.Errorf("%w: failed to read from response body: %w", ErrNetwork, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return parseAPIError(res, buf.Bytes())
	}

	if out == nil || buf.Len() == 0 || res.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

func parseAPIError(res *http.Response, body []byte) error {
	apiErr := &APIError{
		Status:  res.StatusCode,
		Message: http.StatusText(res.StatusCode),
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
	}

	if res.StatusCode == http.StatusTooManyRequests {
		retryAfter, err := strconv.Atoi(res.Header.Get("Retry-After"))
		if err != nil || retryAfter < 0 {
			retryAfter = defaultRetryAfterDuration
		}
		apiErr.RetryAfter = time.Duration(retryAfter) * time.Second
	}

	return apiErr
}
