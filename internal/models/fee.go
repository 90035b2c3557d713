package models

import "github.com/shopspring/decimal"

type FeeAction string

const (
	ActionDeposit      FeeAction = "deposit"
	ActionCardCreation FeeAction = "card_creation"
)

// FeeRequest - тело POST /api/fees/quote.
type FeeRequest struct {
	Action FeeAction        `json:"action" validate:"required,oneof=deposit card_creation"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// Quote - ответ бэкенда на расчет комиссии, привязанный к сумме и номеру запроса.
type Quote struct {
	Action   FeeAction       `json:"action"`
	Amount   decimal.Decimal `json:"amount"`
	Fee      decimal.Decimal `json:"fee"`
	Sequence uint64          `json:"sequence"`
}

type Tier string

const (
	TierUnverified Tier = "unverified"
	TierVerified   Tier = "verified"
	TierPremium    Tier = "premium"
	TierElite      Tier = "elite"
)

// TierFees - тарифы уровня: процент с депозита и фиксированная плата за выпуск карты.
type TierFees struct {
	Tier             Tier            `json:"tier"`
	DepositPercent   decimal.Decimal `json:"depositPercent"`
	CardCreationFlat decimal.Decimal `json:"cardCreationFee"`
}
