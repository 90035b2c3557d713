package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
	mock_models "github.com/Renal37/cardledger/internal/models/mocks"
	"github.com/Renal37/cardledger/internal/services"
	"github.com/Renal37/cardledger/internal/table"
	"github.com/Renal37/cardledger/internal/utils"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

var testUser = models.User{ID: "user-1", Token: validToken}

type routerMocks struct {
	jwt      *mock_models.MockJWTService
	balance  *mock_models.MockBalanceService
	fees     *mock_models.MockFeeService
	cards    *mock_models.MockCardService
	feed     *mock_models.MockFeedService
	deposits *mock_models.MockDepositWatcher
}

func newTestServer(t *testing.T) (*httptest.Server, routerMocks) {
	ctrl := gomock.NewController(t)

	mocks := routerMocks{
		jwt:      mock_models.NewMockJWTService(ctrl),
		balance:  mock_models.NewMockBalanceService(ctrl),
		fees:     mock_models.NewMockFeeService(ctrl),
		cards:    mock_models.NewMockCardService(ctrl),
		feed:     mock_models.NewMockFeedService(ctrl),
		deposits: mock_models.NewMockDepositWatcher(ctrl),
	}
	mocks.jwt.EXPECT().ValidateToken(validToken).Return(testUser.ID, nil).AnyTimes()
	mocks.jwt.EXPECT().ValidateToken(gomock.Not(validToken)).Return("", services.ErrTokenIsInvalid).AnyTimes()

	testServer := httptest.NewServer(New(Config{}, middlewares.Services{
		JWT:      mocks.jwt,
		Balance:  mocks.balance,
		Fees:     mocks.fees,
		Cards:    mocks.cards,
		Feed:     mocks.feed,
		Deposits: mocks.deposits,
	}).get())
	t.Cleanup(testServer.Close)

	return testServer, mocks
}

type errorEnvelope struct {
	Error middlewares.ErrorBody `json:"error"`
}

func decodeError(t *testing.T, body string) middlewares.ErrorBody {
	t.Helper()

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	return envelope.Error
}

func TestAuth(t *testing.T) {
	testServer, _ := newTestServer(t)

	testCases := []struct {
		testName     string
		token        string
		expectedCode int
	}{
		{testName: "Should reject request without token", token: "", expectedCode: http.StatusUnauthorized},
		{testName: "Should reject request with invalid token", token: "forged", expectedCode: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			res, body := utils.TestRequest(t, testServer, http.MethodGet, "/api/balance", tc.token, nil)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Code)
		})
	}
}

func TestTiersArePublic(t *testing.T) {
	testServer, mocks := newTestServer(t)

	mocks.fees.EXPECT().Tiers().Return(services.DefaultTierSchedule().List())

	res, body := utils.TestRequest(t, testServer, http.MethodGet, "/api/tiers", "", nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
	var tiers []models.TierFees
	require.NoError(t, json.Unmarshal([]byte(body), &tiers))
	assert.Len(t, tiers, 4)
	assert.Equal(t, models.TierUnverified, tiers[0].Tier)
}

func TestGetBalanceRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	testCases := []struct {
		testName     string
		test         func()
		expectedCode int
		expectedErr  string
	}{
		{
			testName: "Should return balance with available for increase",
			test: func() {
				mocks.balance.EXPECT().GetBalance(gomock.Any()).DoAndReturn(func(ctx context.Context) (models.BalanceView, error) {
					assert.Equal(t, validToken, backend.TokenFromContext(ctx))
					return models.BalanceView{
						Account: models.Account{
							VirtualBalance:   decimal.NewFromInt(1500),
							AvailableBalance: decimal.NewFromInt(1000),
						},
						AvailableForIncrease: decimal.NewFromInt(1000),
					}, nil
				})
			},
			expectedCode: http.StatusOK,
		},
		{
			testName: "Should map rate limit to 429",
			test: func() {
				mocks.balance.EXPECT().GetBalance(gomock.Any()).Return(models.BalanceView{}, &backend.APIError{
					Status:     http.StatusTooManyRequests,
					RetryAfter: 30 * time.Second,
				})
			},
			expectedCode: http.StatusTooManyRequests,
			expectedErr:  "RATE_LIMITED",
		},
		{
			testName: "Should map backend outage to 503",
			test: func() {
				mocks.balance.EXPECT().GetBalance(gomock.Any()).Return(models.BalanceView{}, &backend.APIError{Status: http.StatusBadGateway})
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  "SERVICE_UNAVAILABLE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			tc.test()

			res, body := utils.TestRequest(t, testServer, http.MethodGet, "/api/balance", validToken, nil)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedErr != "" {
				assert.Equal(t, tc.expectedErr, decodeError(t, body).Code)
				return
			}

			var balance models.BalanceView
			require.NoError(t, json.Unmarshal([]byte(body), &balance))
			assert.True(t, balance.AvailableForIncrease.Equal(decimal.NewFromInt(1000)))
		})
	}
}

func TestRetryAfterHeader(t *testing.T) {
	testServer, mocks := newTestServer(t)

	mocks.balance.EXPECT().GetBalance(gomock.Any()).Return(models.BalanceView{}, &backend.APIError{
		Status:     http.StatusTooManyRequests,
		RetryAfter: 30 * time.Second,
	})

	res, _ := utils.TestRequest(t, testServer, http.MethodGet, "/api/balance", validToken, nil)

	assert.Equal(t, "30", res.Header.Get("Retry-After"))
}

func TestQuoteFeeRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	testCases := []struct {
		testName     string
		body         any
		test         func()
		expectedCode int
		expectedErr  string
	}{
		{
			testName:     "Should reject unsupported content",
			expectedCode: http.StatusUnsupportedMediaType,
			expectedErr:  "UNSUPPORTED_MEDIA_TYPE",
		},
		{
			testName:     "Should reject unknown action",
			body:         map[string]any{"action": "withdraw", "amount": "10"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "VALIDATION_ERROR",
		},
		{
			testName:     "Should reject missing amount",
			body:         map[string]any{"action": "deposit"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "VALIDATION_ERROR",
		},
		{
			testName: "Should return quote",
			body:     map[string]any{"action": "card_creation", "amount": "500"},
			test: func() {
				mocks.fees.EXPECT().
					Quote(gomock.Any(), testUser, models.ActionCardCreation, decimal.NewFromInt(500)).
					Return(models.Quote{Action: models.ActionCardCreation, Amount: decimal.NewFromInt(500), Fee: decimal.NewFromInt(50), Sequence: 3}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			testName: "Should answer 409 when superseded",
			body:     map[string]any{"action": "deposit", "amount": "100"},
			test: func() {
				mocks.fees.EXPECT().
					Quote(gomock.Any(), testUser, models.ActionDeposit, decimal.NewFromInt(100)).
					Return(models.Quote{}, services.ErrQuoteSuperseded)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "QUOTE_SUPERSEDED",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test()
			}

			res, body := utils.TestRequest(t, testServer, http.MethodPost, "/api/fees/quote", validToken, tc.body)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedErr != "" {
				assert.Equal(t, tc.expectedErr, decodeError(t, body).Code)
				return
			}

			var quote models.Quote
			require.NoError(t, json.Unmarshal([]byte(body), &quote))
			assert.True(t, quote.Fee.Equal(decimal.NewFromInt(50)))
			assert.Equal(t, uint64(3), quote.Sequence)
		})
	}
}

func TestGetCardsRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	testCases := []struct {
		testName     string
		url          string
		test         func()
		expectedCode int
	}{
		{
			testName: "Should pass table parameters to the service",
			url:      "/api/cards?search=travel&sort=spendingLimit&order=desc&page=2&pageSize=5",
			test: func() {
				mocks.cards.EXPECT().CardsPage(gomock.Any(), models.CardQuery{
					Search:   "travel",
					Sort:     "spendingLimit",
					Desc:     true,
					Page:     2,
					PageSize: 5,
				}).Return(table.Page[models.Card]{Items: []models.Card{}, TotalPages: 1, CurrentPage: 1}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			testName:     "Should reject invalid order",
			url:          "/api/cards?order=sideways",
			expectedCode: http.StatusBadRequest,
		},
		{
			testName:     "Should reject invalid page",
			url:          "/api/cards?page=zero",
			expectedCode: http.StatusBadRequest,
		},
		{
			testName: "Should reject unknown sort field",
			url:      "/api/cards?sort=bank.name",
			test: func() {
				mocks.cards.EXPECT().CardsPage(gomock.Any(), gomock.Any()).
					Return(table.Page[models.Card]{}, fmt.Errorf("%w: bank.name", table.ErrUnknownField))
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test()
			}

			res, _ := utils.TestRequest(t, testServer, http.MethodGet, tc.url, validToken, nil)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
		})
	}
}

func TestCreateCardRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	validCard := map[string]any{
		"programId":     "prog-1",
		"fundingAmount": "500",
		"holderName":    "Jane Doe",
		"holderEmail":   "jane@example.com",
	}

	testCases := []struct {
		testName     string
		body         any
		test         func()
		expectedCode int
		expectedErr  string
		expectedMsg  string
	}{
		{
			testName:     "Should reject invalid email",
			body:         map[string]any{"programId": "prog-1", "fundingAmount": "500", "holderName": "Jane", "holderEmail": "jane"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "VALIDATION_ERROR",
		},
		{
			testName: "Should report insufficient balance including fee",
			body:     validCard,
			test: func() {
				mocks.cards.EXPECT().CreateCard(gomock.Any(), testUser, gomock.Any()).Return(models.CardActionResult{}, &services.ValidationError{
					Field:  "fundingAmount",
					Reason: services.ReasonInsufficientFunds,
					Amount: decimal.NewFromInt(550),
					Limit:  decimal.NewFromInt(500),
				})
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  "VALIDATION_ERROR",
			expectedMsg:  "insufficient available balance: required $550.00, available $500.00",
		},
		{
			testName: "Should reject while fee quote is pending",
			body:     validCard,
			test: func() {
				mocks.cards.EXPECT().CreateCard(gomock.Any(), testUser, gomock.Any()).Return(models.CardActionResult{}, services.ErrQuotePending)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "QUOTE_PENDING",
		},
		{
			testName: "Should create card",
			body:     validCard,
			test: func() {
				mocks.cards.EXPECT().CreateCard(gomock.Any(), testUser, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ models.User, card models.NewCard) (models.CardActionResult, error) {
						assert.True(t, card.FundingAmount.Equal(decimal.NewFromInt(500)))
						return models.CardActionResult{Card: &models.Card{ID: "card-9", Status: models.CardActive}}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test()
			}

			res, body := utils.TestRequest(t, testServer, http.MethodPost, "/api/cards", validToken, tc.body)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedErr != "" {
				errBody := decodeError(t, body)
				assert.Equal(t, tc.expectedErr, errBody.Code)
				if tc.expectedMsg != "" {
					assert.Equal(t, tc.expectedMsg, errBody.Message)
				}
			}
		})
	}
}

func TestCardCommandRoutes(t *testing.T) {
	testServer, mocks := newTestServer(t)

	testCases := []struct {
		testName     string
		method       string
		url          string
		body         any
		test         func()
		expectedCode int
		expectedErr  string
	}{
		{
			testName: "Should reject limit above available balance",
			method:   http.MethodPut,
			url:      "/api/cards/card-1/limits",
			body:     map[string]any{"spendingLimit": "1300"},
			test: func() {
				mocks.cards.EXPECT().UpdateLimit(gomock.Any(), testUser, "card-1", decimal.NewFromInt(1300)).Return(models.CardActionResult{}, &services.ValidationError{
					Field:  "spendingLimit",
					Reason: services.ReasonExceedsAvailable,
					Amount: decimal.NewFromInt(100),
					Limit:  decimal.NewFromInt(1200),
				})
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  "VALIDATION_ERROR",
		},
		{
			testName:     "Should require spending limit",
			method:       http.MethodPut,
			url:          "/api/cards/card-1/limits",
			body:         map[string]any{},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "VALIDATION_ERROR",
		},
		{
			testName: "Should freeze card",
			method:   http.MethodPost,
			url:      "/api/cards/card-1/freeze",
			test: func() {
				mocks.cards.EXPECT().Freeze(gomock.Any(), testUser, "card-1").Return(models.CardActionResult{}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			testName: "Should reject concurrent action",
			method:   http.MethodPost,
			url:      "/api/cards/card-1/unfreeze",
			test: func() {
				mocks.cards.EXPECT().Unfreeze(gomock.Any(), testUser, "card-1").Return(models.CardActionResult{}, services.ErrOperationInProgress)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "OPERATION_IN_PROGRESS",
		},
		{
			testName: "Should surface backend rejection of delete",
			method:   http.MethodDelete,
			url:      "/api/cards/card-1",
			test: func() {
				mocks.cards.EXPECT().Delete(gomock.Any(), testUser, "card-1").Return(models.CardActionResult{}, &backend.APIError{
					Status:  http.StatusBadRequest,
					Code:    "CARD_HAS_BALANCE",
					Message: "Card still has funds",
				})
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "REJECTED",
		},
		{
			testName: "Should return 404 for unknown card",
			method:   http.MethodGet,
			url:      "/api/cards/missing/actions",
			test: func() {
				mocks.cards.EXPECT().ListCardActions(gomock.Any(), testUser, "missing").Return(nil, services.ErrCardNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  "NOT_FOUND",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			if tc.test != nil {
				tc.test()
			}

			res, body := utils.TestRequest(t, testServer, tc.method, tc.url, validToken, tc.body)

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedErr != "" {
				assert.Equal(t, tc.expectedErr, decodeError(t, body).Code)
			}
		})
	}
}

func TestGetTransactionsRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	t.Run("Should reject unknown type", func(t *testing.T) {
		res, _ := utils.TestRequest(t, testServer, http.MethodGet, "/api/transactions?type=refund", validToken, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("Should pass filters to the feed", func(t *testing.T) {
		mocks.feed.EXPECT().
			Page(gomock.Any(), models.FeedFilter{Type: models.FeedCard, Status: "completed", Search: "coffee"}, 1, 10).
			Return(table.Page[models.FeedItem]{Items: []models.FeedItem{{ID: "card:tx-1", Type: models.FeedCard}}, TotalData: 1, TotalPages: 1, CurrentPage: 1}, nil)

		res, body := utils.TestRequest(t, testServer, http.MethodGet, "/api/transactions?type=card&status=completed&search=coffee", validToken, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)
		var page table.Page[models.FeedItem]
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		assert.Equal(t, 1, page.TotalData)
		assert.Equal(t, "card:tx-1", page.Items[0].ID)
	})
}

type fakeWatch struct {
	updates chan models.DepositTx
	done    chan struct{}
	err     error
	stopped atomic.Bool
}

func (f *fakeWatch) Updates() <-chan models.DepositTx { return f.updates }
func (f *fakeWatch) Done() <-chan struct{} { return f.done }
func (f *fakeWatch) Err() error { return f.err }
func (f *fakeWatch) Stop() { f.stopped.Store(true) }

func TestWatchDepositRoute(t *testing.T) {
	testServer, mocks := newTestServer(t)

	watch := &fakeWatch{
		updates: make(chan models.DepositTx, 1),
		done:    make(chan struct{}),
	}
	watch.updates <- models.DepositTx{OrderReference: "DEP-1", Status: "completed", Confirmations: 3}
	close(watch.done)

	mocks.deposits.EXPECT().Watch(gomock.Any(), "DEP-1").Return(watch)

	res, body := utils.TestRequest(t, testServer, http.MethodGet, "/api/deposits/DEP-1/events", validToken, nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	assert.True(t, strings.Contains(body, "event: status\n"))
	assert.True(t, strings.Contains(body, `"orderReference":"DEP-1"`))
	assert.True(t, strings.HasSuffix(body, "event: end\ndata: {}\n\n"))
	assert.True(t, watch.stopped.Load())
}
