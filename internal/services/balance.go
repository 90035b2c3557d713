package services

import (
	"context"
	"fmt"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger - снимок балансов, полученный с бэкенда. Используется только для
// проверок и подсказок пользователю; локальные изменения никогда не сохраняются.
type Ledger struct {
	account models.Account
}

func NewLedger(account models.Account) Ledger {
	return Ledger{account: account}
}

// Account возвращает текущее состояние счета.
func (l Ledger) Account() models.Account {
	return l.account
}

// CanAfford - можно ли потратить amount из доступного баланса.
func (l Ledger) CanAfford(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(l.account.AvailableBalance)
}

// AvailableForIncrease - на сколько прямо сейчас можно поднять лимит любой карты.
// Берется из availableBalance бэкенда, а не из суммы лимитов карт.
func (l Ledger) AvailableForIncrease() decimal.Decimal {
	if l.account.AvailableBalance.IsNegative() {
		return decimal.Zero
	}
	return l.account.AvailableBalance
}

// Predict возвращает ожидаемое состояние после списания delta (отрицательное значение
// означает возврат средств). Результат нужен только для текста ошибок.
func (l Ledger) Predict(delta decimal.Decimal) models.Account {
	predicted := l.account
	predicted.AvailableBalance = predicted.AvailableBalance.Sub(delta)
	return predicted
}

// LockedInCards - сумма лимитов карт, которые еще держат деньги.
func LockedInCards(cards []models.Card) decimal.Decimal {
	locked := decimal.Zero
	for _, card := range cards {
		if card.Status == models.CardActive || card.Status == models.CardFrozen {
			locked = locked.Add(card.SpendingLimit)
		}
	}
	return locked
}

// BalanceService всегда перечитывает баланс с бэкенда.
type BalanceService struct {
	backend balanceBackend
}

type balanceBackend interface {
	GetBalance(ctx context.Context) (models.Account, error)
}

// NewBalanceService создает сервис баланса.
func NewBalanceService(backend balanceBackend) *BalanceService {
	return &BalanceService{backend: backend}
}

// Current читает счет из бэкенда.
func (b *BalanceService) Current(ctx context.Context) (Ledger, error) {
	account, err := b.backend.GetBalance(ctx)
	if err != nil {
		return Ledger{}, err
	}

	if account.AvailableBalance.GreaterThan(account.VirtualBalance) {
		logger.Log.Warn("available balance exceeds virtual balance",
			zap.String("available", account.AvailableBalance.String()),
			zap.String("virtual", account.VirtualBalance.String()),
		)
	}

	return NewLedger(account), nil
}

// GetBalance - то же самое, но в виде ответа API.
func (b *BalanceService) GetBalance(ctx context.Context) (models.BalanceView, error) {
	ledger, err := b.Current(ctx)
	if err != nil {
		return models.BalanceView{}, fmt.Errorf("failed to get balance: %w", err)
	}

	return models.BalanceView{
		Account:              ledger.Account(),
		AvailableForIncrease: ledger.AvailableForIncrease(),
	}, nil
}

// checkDiscrepancy пишет в лог расхождение между availableBalance бэкенда
// и локальной формулой virtual - Σ лимитов. На решения не влияет.
func checkDiscrepancy(ledger Ledger, cards []models.Card) {
	account := ledger.Account()
	local := account.VirtualBalance.Sub(LockedInCards(cards))
	if !local.Equal(account.AvailableBalance) {
		logger.Log.Debug("available balance differs from local card sum",
			zap.String("server", account.AvailableBalance.String()),
			zap.String("local", local.String()),
		)
	}
}
