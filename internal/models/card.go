package models

import (
	"time"

	"github.com/Renal37/cardledger/internal/utils"
	"github.com/shopspring/decimal"
)

type CardStatus string

const (
	CardActive    CardStatus = "active"
	CardFrozen    CardStatus = "frozen"
	CardExpired   CardStatus = "expired"
	CardDeleted   CardStatus = "deleted"
	CardSuspended CardStatus = "suspended"
)

// Terminal возвращает true для статусов, из которых карта уже не выходит.
func (s CardStatus) Terminal() bool {
	return s == CardDeleted || s == CardExpired
}

type Card struct {
	ID               string            `json:"id"`
	Status           CardStatus        `json:"status"`
	FundingAmount    decimal.Decimal   `json:"fundingAmount"`
	SpendingLimit    decimal.Decimal   `json:"spendingLimit"`
	SpentAmount      decimal.Decimal   `json:"spentAmount"`
	RemainingBalance decimal.Decimal   `json:"remainingBalance"`
	MaskedPan        string            `json:"maskedPan,omitempty"`
	Nickname         string            `json:"nickname,omitempty"`
	Last4            string            `json:"last4,omitempty"`
	ProgramID        string            `json:"programId,omitempty"`
	Currency         string            `json:"currency,omitempty"`
	CreatedAt        utils.RFC3339Date `json:"createdAt"`
}

// NewCard - параметры выпуска карты, уходят в POST /cards.
type NewCard struct {
	ProgramID     string          `json:"programId" validate:"required"`
	FundingAmount decimal.Decimal `json:"fundingAmount"`
	HolderName    string          `json:"holderName" validate:"required,max=64"`
	HolderEmail   string          `json:"holderEmail" validate:"required,email"`
	Nickname      string          `json:"nickname,omitempty" validate:"max=32"`
}

// LimitUpdate - тело PUT /api/cards/{id}/limits.
type LimitUpdate struct {
	SpendingLimit *decimal.Decimal `json:"spendingLimit" validate:"required"`
}

// CardActionResult возвращается после любой команды над картой:
// свежие данные с бэкенда, а не локально посчитанные.
type CardActionResult struct {
	Card     *Card    `json:"card,omitempty"`
	Cards    []Card   `json:"cards"`
	Balance  Account  `json:"balance"`
	Warnings []string `json:"warnings,omitempty"`
}

// CardAction - запись журнала действий над картами.
type CardAction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CardID    string    `json:"cardId"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	ErrorCode string    `json:"errorCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CardQuery - параметры таблицы карт.
type CardQuery struct {
	Search   string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
}
