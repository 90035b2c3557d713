package models

import (
	"context"

	"github.com/Renal37/cardledger/internal/table"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mocks/mock_jwt.go . JWTService
type JWTService interface {
	ValidateToken(token string) (string, error)
}

//go:generate mockgen -destination=mocks/mock_balance.go . BalanceService
type BalanceService interface {
	GetBalance(ctx context.Context) (BalanceView, error)
}

//go:generate mockgen -destination=mocks/mock_fee.go . FeeService
type FeeService interface {
	Quote(ctx context.Context, user User, action FeeAction, amount decimal.Decimal) (Quote, error)

	Tiers() []TierFees
}

//go:generate mockgen -destination=mocks/mock_card.go . CardService
type CardService interface {
	CardsPage(ctx context.Context, query CardQuery) (table.Page[Card], error)

	CreateCard(ctx context.Context, user User, card NewCard) (CardActionResult, error)

	UpdateLimit(ctx context.Context, user User, cardID string, newLimit decimal.Decimal) (CardActionResult, error)

	Freeze(ctx context.Context, user User, cardID string) (CardActionResult, error)

	Unfreeze(ctx context.Context, user User, cardID string) (CardActionResult, error)

	Delete(ctx context.Context, user User, cardID string) (CardActionResult, error)

	ListCardActions(ctx context.Context, user User, cardID string) ([]CardAction, error)
}

//go:generate mockgen -destination=mocks/mock_feed.go . FeedService
type FeedService interface {
	Page(ctx context.Context, filter FeedFilter, page, pageSize int) (table.Page[FeedItem], error)
}

// DepositWatch - запущенное наблюдение за статусом депозита.
type DepositWatch interface {
	Updates() <-chan DepositTx

	Done() <-chan struct{}

	Err() error

	Stop()
}

//go:generate mockgen -destination=mocks/mock_deposit.go . DepositWatcher
type DepositWatcher interface {
	Watch(ctx context.Context, orderReference string) DepositWatch
}
