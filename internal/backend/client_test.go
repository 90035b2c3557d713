package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return New(ts.URL, time.Second)
}

func TestClientListCards(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cards", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `{"data":{"items":[
			{"id":"c1","status":"active","spendingLimit":200,"spentAmount":50,"remainingBalance":150,"maskedPan":"4111********1234"}
		],"count":1}}`)
	})

	cards, err := client.ListCards(WithToken(context.Background(), "user-token"))
	require.NoError(t, err)
	require.Len(t, cards, 1)

	assert.Equal(t, "c1", cards[0].ID)
	assert.Equal(t, models.CardActive, cards[0].Status)
	assert.True(t, cards[0].SpendingLimit.Equal(decimal.NewFromInt(200)))
	assert.True(t, cards[0].RemainingBalance.Equal(decimal.NewFromInt(150)))
}

func TestClientCreateCardSendsIdempotencyKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.NewCard
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prog-1", body.ProgramID)
		assert.True(t, body.FundingAmount.Equal(decimal.NewFromInt(100)))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"new","status":"active","spendingLimit":100}}`)
	})

	card, err := client.CreateCard(context.Background(), models.NewCard{
		ProgramID:     "prog-1",
		FundingAmount: decimal.NewFromInt(100),
	}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "new", card.ID)
}

func TestClientCalculateFee(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tiers/calculate-fees", r.URL.Path)

		var body struct {
			Action string          `json:"action"`
			Amount decimal.Decimal `json:"amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card_creation", body.Action)

		_, _ = io.WriteString(w, `{"data":{"calculatedFee":50}}`)
	})

	fee, err := client.CalculateFee(context.Background(), models.ActionCardCreation, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(50)))
}

func TestClientErrors(t *testing.T) {
	testCases := []struct {
		testName   string
		status     int
		body       string
		retryAfter string
		target     error
		code       string
		message    string
		wait       time.Duration
	}{
		{
			testName: "insufficient balance code wins over status",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":"INSUFFICIENT_BALANCE","message":"not enough funds"}}`,
			target:   ErrInsufficientBalance,
			code:     CodeInsufficientBalance,
			message:  "not enough funds",
		},
		{
			testName: "plain validation rejection",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":"INVALID_LIMIT","message":"bad limit"}}`,
			target:   ErrRejected,
			code:     "INVALID_LIMIT",
			message:  "bad limit",
		},
		{
			testName: "unauthorized",
			status:   http.StatusUnauthorized,
			target:   ErrUnauthorized,
			message:  "Unauthorized",
		},
		{
			testName: "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":{"code":"FORBIDDEN","message":"nope"}}`,
			target:   ErrPermission,
			code:     "FORBIDDEN",
			message:  "nope",
		},
		{
			testName: "missing entity",
			status:   http.StatusNotFound,
			body:     `{"error":{"code":"CARD_NOT_FOUND","message":"card not found"}}`,
			target:   ErrNotFound,
			code:     "CARD_NOT_FOUND",
			message:  "card not found",
		},
		{
			testName:   "rate limited with header",
			status:     http.StatusTooManyRequests,
			retryAfter: "7",
			target:     ErrRateLimited,
			message:    "Too Many Requests",
			wait:       7 * time.Second,
		},
		{
			testName:   "rate limited without usable header",
			status:     http.StatusTooManyRequests,
			retryAfter: "soon",
			target:     ErrRateLimited,
			message:    "Too Many Requests",
			wait:       defaultRetryAfterDuration * time.Second,
		},
		{
			testName: "server error",
			status:   http.StatusBadGateway,
			body:     "<html>bad gateway</html>",
			target:   ErrUnavailable,
			message:  "Bad Gateway",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.GetBalance(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, tc.wait, RetryAfter(err))
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := ts.URL
	ts.Close()

	_, err := New(endpoint, time.Second).ListDeposits(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClientCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListCardTransactions(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}
