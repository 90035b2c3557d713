package models

import (
	"github.com/Renal37/cardledger/internal/utils"
	"github.com/shopspring/decimal"
)

// Три источника операций приходят с бэкенда в разном виде и хранятся
// отдельными типами. Агрегатор только читает их.

type DepositTx struct {
	OrderReference  string            `json:"orderReference"`
	CryptoCurrency  string            `json:"cryptoCurrency"`
	CryptoAmount    decimal.Decimal   `json:"cryptoAmount"`
	Confirmations   int               `json:"confirmations"`
	TransactionHash *string           `json:"transactionHash,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          string            `json:"status"`
	RequestedAt     utils.RFC3339Date `json:"requestedAt"`
}

// CardRef - вложенный объект карты, который бэкенд иногда кладет в операцию.
type CardRef struct {
	Last4     string `json:"last4,omitempty"`
	MaskedPan string `json:"maskedPan,omitempty"`
}

type CardTx struct {
	ID               string            `json:"id"`
	CardID           string            `json:"cardId"`
	MerchantName     string            `json:"merchantName"`
	MerchantCategory string            `json:"merchantCategory"`
	Description      string            `json:"description,omitempty"`
	Amount           decimal.Decimal   `json:"amount"`
	Status           string            `json:"status"`
	Last4            string            `json:"last4,omitempty"`
	Card             *CardRef          `json:"card,omitempty"`
	CreatedAt        utils.RFC3339Date `json:"createdAt"`
}

type FeeKind string

const (
	FeeDeposit      FeeKind = "deposit"
	FeeCardCreation FeeKind = "card_creation"
	FeeCardMonthly  FeeKind = "card_monthly"
	FeeOther        FeeKind = "other"
)

// FeeTx строится из записей GET /users/balance/history с типом fee.
// KindFromBackend == false означает, что вид комиссии угадан по описанию.
type FeeTx struct {
	ID              string            `json:"id"`
	FeeKind         FeeKind           `json:"feeKind"`
	KindFromBackend bool              `json:"-"`
	Amount          decimal.Decimal   `json:"amount"`
	ReferenceID     string            `json:"referenceId"`
	Description     string            `json:"description,omitempty"`
	CreatedAt       utils.RFC3339Date `json:"createdAt"`
}

// BalanceHistoryEntry - сырая запись журнала баланса на бэкенде.
type BalanceHistoryEntry struct {
	ID          string            `json:"id"`
	EntryType   string            `json:"type"`
	FeeKind     *FeeKind          `json:"feeKind,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	ReferenceID string            `json:"referenceId"`
	CreatedAt   utils.RFC3339Date `json:"createdAt"`
}
