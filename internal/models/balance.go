package models

import "github.com/shopspring/decimal"

// Account описывает балансы пользователя в том виде, в каком их отдает бэкенд.
// VirtualBalance - все средства, AvailableBalance - доступные к расходованию
// (не заблокированные в картах), PendingBalance - неподтвержденные депозиты.
type Account struct {
	VirtualBalance   decimal.Decimal `json:"virtualBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	PendingBalance   decimal.Decimal `json:"pendingBalance"`
	Currency         string          `json:"currency"`
}

// BalanceView - ответ GET /api/balance.
type BalanceView struct {
	Account
	AvailableForIncrease decimal.Decimal `json:"availableForIncrease"`
}
