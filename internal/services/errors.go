package services

import (
	"errors"
	"fmt"

	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrOperationInProgress = errors.New("operation in progress for this card")
	ErrCardNotFound        = errors.New("card not found")
	ErrDepositNotFound     = errors.New("deposit not found")
)

type Reason string

const (
	ReasonNotPositive       Reason = "not_positive"
	ReasonNegative          Reason = "negative"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonBelowSpent        Reason = "below_spent"
	ReasonExceedsAvailable  Reason = "exceeds_available"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonCardState         Reason = "card_state"
)

// ValidationError - локальная ошибка проверки. Возникает до любого запроса к бэкенду.
// Amount и Limit зависят от Reason:
//   - below_spent: Amount - потраченная сумма;
//   - exceeds_available: Amount - превышение, Limit - максимально допустимый лимит;
//   - insufficient_funds: Amount - требуемая сумма, Limit - доступный баланс.
type ValidationError struct {
	Field  string
	Reason Reason
	Amount decimal.Decimal
	Limit  decimal.Decimal
	Status models.CardStatus
	Action string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNotPositive:
		return fmt.Sprintf("%s must be greater than zero", e.Field)
	case ReasonNegative:
		return fmt.Sprintf("%s cannot be negative", e.Field)
	case ReasonUnknownAction:
		return fmt.Sprintf("unsupported %s", e.Field)
	case ReasonBelowSpent:
		return fmt.Sprintf("limit cannot be below spent amount %s", formatMoney(e.Amount))
	case ReasonExceedsAvailable:
		return fmt.Sprintf("limit exceeds available balance by %s (max allowed limit %s)",
			formatMoney(e.Amount), formatMoney(e.Limit))
	case ReasonInsufficientFunds:
		return fmt.Sprintf("insufficient available balance: required %s, available %s",
			formatMoney(e.Amount), formatMoney(e.Limit))
	case ReasonCardState:
		return fmt.Sprintf("cannot %s a card with status %s", e.Action, e.Status)
	default:
		return fmt.Sprintf("invalid %s", e.Field)
	}
}

func formatMoney(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
