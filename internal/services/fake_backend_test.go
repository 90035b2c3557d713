package services

import (
	"context"
	"sync"

	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
)

// fakeBackend - платформа карт в памяти. Ошибки и хуки задаются полями.
type fakeBackend struct {
	mu sync.Mutex

	cards    []models.Card
	account  models.Account
	deposits []models.DepositTx
	cardTxs  []models.CardTx
	history  []models.BalanceHistoryEntry

	readErr     error
	mutationErr error

	calls           []string
	idempotencyKeys []string

	onMutation   func(action, cardID string)
	calculateFee func(ctx context.Context, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error)
	listDeposits func(ctx context.Context) ([]models.DepositTx, error)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *fakeBackend) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, c := range f.calls {
		if c == call {
			count++
		}
	}
	return count
}

func (f *fakeBackend) mutate(action, cardID string) error {
	f.record(action)
	if f.onMutation != nil {
		f.onMutation(action, cardID)
	}
	return f.mutationErr
}

func (f *fakeBackend) ListCards(context.Context) ([]models.Card, error) {
	f.record("ListCards")
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.Card(nil), f.cards...), f.readErr
}

func (f *fakeBackend) CreateCard(_ context.Context, card models.NewCard, idempotencyKey string) (models.Card, error) {
	f.mu.Lock()
	f.idempotencyKeys = append(f.idempotencyKeys, idempotencyKey)
	f.mu.Unlock()

	if err := f.mutate("CreateCard", ""); err != nil {
		return models.Card{}, err
	}

	created := models.Card{
		ID:            "card-new",
		Status:        models.CardActive,
		FundingAmount: card.FundingAmount,
		SpendingLimit: card.FundingAmount,
	}
	f.mu.Lock()
	f.cards = append(f.cards, created)
	f.mu.Unlock()

	return created, nil
}

func (f *fakeBackend) UpdateLimit(_ context.Context, cardID string, limit decimal.Decimal) (models.Card, error) {
	if err := f.mutate("UpdateLimit", cardID); err != nil {
		return models.Card{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cards {
		if f.cards[i].ID == cardID {
			f.cards[i].SpendingLimit = limit
			return f.cards[i], nil
		}
	}
	return models.Card{}, nil
}

func (f *fakeBackend) FreezeCard(_ context.Context, cardID string) error {
	return f.mutate("FreezeCard", cardID)
}

func (f *fakeBackend) UnfreezeCard(_ context.Context, cardID string) error {
	return f.mutate("UnfreezeCard", cardID)
}

func (f *fakeBackend) DeleteCard(_ context.Context, cardID string) error {
	return f.mutate("DeleteCard", cardID)
}

func (f *fakeBackend) GetBalance(context.Context) (models.Account, error) {
	f.record("GetBalance")
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.account, f.readErr
}

func (f *fakeBackend) GetBalanceHistory(context.Context) ([]models.BalanceHistoryEntry, error) {
	f.record("GetBalanceHistory")
	return f.history, f.readErr
}

func (f *fakeBackend) ListCardTransactions(context.Context) ([]models.CardTx, error) {
	f.record("ListCardTransactions")
	return f.cardTxs, f.readErr
}

func (f *fakeBackend) ListDeposits(ctx context.Context) ([]models.DepositTx, error) {
	f.record("ListDeposits")
	if f.listDeposits != nil {
		return f.listDeposits(ctx)
	}
	return f.deposits, f.readErr
}

func (f *fakeBackend) CalculateFee(ctx context.Context, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error) {
	f.record("CalculateFee")
	if f.calculateFee != nil {
		return f.calculateFee(ctx, action, amount)
	}
	return decimal.NewFromInt(50), nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []models.CardAction
}

func (j *fakeJournal) RecordCardAction(_ context.Context, action models.CardAction) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, action)
	return nil
}

func (j *fakeJournal) FindCardActions(_ context.Context, userID, cardID string) ([]models.CardAction, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var result []models.CardAction
	for _, entry := range j.entries {
		if entry.UserID == userID && entry.CardID == cardID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeQuotes struct {
	quote   *models.Quote
	pending bool
}

func (q fakeQuotes) Settled(string) (models.Quote, bool) {
	if q.quote == nil || q.pending {
		return models.Quote{}, false
	}
	return *q.quote, true
}

func (q fakeQuotes) Pending(string) bool {
	return q.pending
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
