package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FeedType string

const (
	FeedDeposit FeedType = "deposit"
	FeedCard    FeedType = "card"
	FeedFee     FeedType = "fee"
)

// FeedItem - общая форма строки ленты операций.
type FeedItem struct {
	ID          string          `json:"id"`
	Type        FeedType        `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
	TimestampMs int64           `json:"timestampMs"`

	Deposit *DepositDetails `json:"deposit,omitempty"`
	Card    *CardDetails    `json:"card,omitempty"`
	Fee     *FeeDetails     `json:"fee,omitempty"`
}

type DepositDetails struct {
	OrderReference  string          `json:"orderReference"`
	CryptoCurrency  string          `json:"cryptoCurrency"`
	CryptoAmount    decimal.Decimal `json:"cryptoAmount"`
	Confirmations   int             `json:"confirmations"`
	TransactionHash string          `json:"transactionHash,omitempty"`
	Network         string          `json:"network,omitempty"`
	ExplorerURL     string          `json:"explorerUrl,omitempty"`
	Withdrawal      bool            `json:"withdrawal"`
}

type CardDetails struct {
	CardID           string `json:"cardId"`
	Last4            string `json:"last4"`
	Nickname         string `json:"nickname,omitempty"`
	MerchantName     string `json:"merchantName"`
	MerchantCategory string `json:"merchantCategory"`
}

type FeeDetails struct {
	FeeKind     FeeKind `json:"feeKind"`
	ReferenceID string  `json:"referenceId"`
	Inferred    bool    `json:"inferred"`
}

// FeedFilter - параметры фильтрации ленты. Пустые поля не фильтруют.
type FeedFilter struct {
	Type   FeedType
	Status string
	Search string
}
