package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/Renal37/cardledger/internal/table"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Команды над картой. Значения попадают в журнал действий.
const (
	ActionCreate      = "create"
	ActionUpdateLimit = "update_limit"
	ActionFreeze      = "freeze"
	ActionUnfreeze    = "unfreeze"
	ActionDelete      = "delete"
)

const pendingTxStatus = "pending"

// LimitCheck - результат успешной проверки нового лимита.
type LimitCheck struct {
	Delta           decimal.Decimal
	MaxAllowedLimit decimal.Decimal
}

// ValidateLimitChange проверяет изменение лимита карты:
// уменьшать можно не ниже потраченного, увеличивать - не больше, чем позволяет
// доступный баланс. maxAllowedLimit = текущий лимит + availableForIncrease.
func ValidateLimitChange(card models.Card, newLimit, availableForIncrease decimal.Decimal) (LimitCheck, error) {
	if err := ValidateTransition(card, ActionUpdateLimit); err != nil {
		return LimitCheck{}, err
	}
	if newLimit.IsNegative() {
		return LimitCheck{}, &ValidationError{Field: "spendingLimit", Reason: ReasonNegative}
	}

	check := LimitCheck{
		Delta:           newLimit.Sub(card.SpendingLimit),
		MaxAllowedLimit: card.SpendingLimit.Add(availableForIncrease),
	}

	if newLimit.LessThan(card.SpentAmount) {
		return check, &ValidationError{
			Field:  "spendingLimit",
			Reason: ReasonBelowSpent,
			Amount: card.SpentAmount,
		}
	}

	if check.Delta.IsPositive() && check.Delta.GreaterThan(availableForIncrease) {
		return check, &ValidationError{
			Field:  "spendingLimit",
			Reason: ReasonExceedsAvailable,
			Amount: newLimit.Sub(check.MaxAllowedLimit),
			Limit:  check.MaxAllowedLimit,
		}
	}

	return check, nil
}

// ValidateCreation проверяет, что сумма пополнения вместе с комиссией выпуска
// укладывается в доступный баланс. quote должна быть посчитана ровно для fundingAmount.
func ValidateCreation(ledger Ledger, fundingAmount decimal.Decimal, quote models.Quote) error {
	if !fundingAmount.IsPositive() {
		return &ValidationError{Field: "fundingAmount", Reason: ReasonNotPositive}
	}
	if quote.Action != models.ActionCardCreation || !quote.Amount.Equal(fundingAmount) {
		return ErrQuoteStale
	}

	required := fundingAmount.Add(quote.Fee)
	if !ledger.CanAfford(required) {
		return &ValidationError{
			Field:  "fundingAmount",
			Reason: ReasonInsufficientFunds,
			Amount: required,
			Limit:  ledger.Account().AvailableBalance,
		}
	}

	return nil
}

// ValidateTransition проверяет команду по автомату состояний карты:
// active <-> frozen -> deleted, active -> expired. Удаленные и истекшие карты
// не замораживаются, не размораживаются и не меняют лимит; заблокированная
// банком (suspended) карта допускает только удаление.
func ValidateTransition(card models.Card, action string) error {
	allowed := true

	switch action {
	case ActionFreeze:
		allowed = card.Status == models.CardActive
	case ActionUnfreeze:
		allowed = card.Status == models.CardFrozen
	case ActionUpdateLimit:
		allowed = card.Status == models.CardActive || card.Status == models.CardFrozen
	case ActionDelete:
		allowed = card.Status != models.CardDeleted
	}

	if !allowed {
		return &ValidationError{
			Field:  "status",
			Reason: ReasonCardState,
			Status: card.Status,
			Action: actionVerb(action),
		}
	}

	return nil
}

func actionVerb(action string) string {
	switch action {
	case ActionUpdateLimit:
		return "update the limit of"
	default:
		return action
	}
}

// DeletionAdvisory - предварительная проверка удаления. Окончательное решение
// принимает бэкенд, поэтому результат - только предупреждения.
func DeletionAdvisory(card models.Card, pendingTransactions int) []string {
	var warnings []string

	if !card.RemainingBalance.IsZero() {
		warnings = append(warnings, fmt.Sprintf("card still holds %s", formatMoney(card.RemainingBalance)))
	}
	if pendingTransactions > 0 {
		warnings = append(warnings, fmt.Sprintf("card has %d pending transaction(s)", pendingTransactions))
	}

	return warnings
}

type cardBackend interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	CreateCard(ctx context.Context, card models.NewCard, idempotencyKey string) (models.Card, error)
	UpdateLimit(ctx context.Context, cardID string, limit decimal.Decimal) (models.Card, error)
	FreezeCard(ctx context.Context, cardID string) error
	UnfreezeCard(ctx context.Context, cardID string) error
	DeleteCard(ctx context.Context, cardID string) error
	GetBalance(ctx context.Context) (models.Account, error)
	ListCardTransactions(ctx context.Context) ([]models.CardTx, error)
}

type settledQuotes interface {
	Settled(stream string) (models.Quote, bool)
	Pending(stream string) bool
}

// ActionJournal - журнал команд над картами. nil отключает журнал.
type ActionJournal interface {
	RecordCardAction(ctx context.Context, action models.CardAction) error
	FindCardActions(ctx context.Context, userID, cardID string) ([]models.CardAction, error)
}

// inFlight - множество карт, над которыми сейчас выполняется команда.
// Вторая команда на ту же карту не ждет, а сразу получает отказ.
type inFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (f *inFlight) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *inFlight) release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.ids, id)
}

// CardService выполняет команды над картами. Каждая команда: захват карты ->
// свежие данные с бэкенда -> проверка -> запрос -> повторное чтение состояния -> журнал.
type CardService struct {
	backend cardBackend
	quotes  settledQuotes
	journal ActionJournal
	guard   *inFlight
	newID   func() string
}

// NewCardService создает сервис карт. journal может быть nil.
func NewCardService(backend cardBackend, quotes settledQuotes, journal ActionJournal) *CardService {
	return &CardService{
		backend: backend,
		quotes:  quotes,
		journal: journal,
		guard:   &inFlight{ids: make(map[string]struct{})},
		newID:   uuid.NewString,
	}
}

// ListCards возвращает карты с остатком лимита за текущий месяц.
func (c *CardService) ListCards(ctx context.Context) ([]models.Card, error) {
	cards, err := c.backend.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// CardsPage отдает карты через таблицу: поиск, сортировка, страница.
func (c *CardService) CardsPage(ctx context.Context, query models.CardQuery) (table.Page[models.Card], error) {
	cards, err := c.ListCards(ctx)
	if err != nil {
		return table.Page[models.Card]{}, err
	}

	view := table.New(cards, query.PageSize, func(card models.Card) string { return card.ID })
	view.Register("remaining", func(card models.Card) any { return card.RemainingBalance })
	view.Register("created", func(card models.Card) any { return card.CreatedAt.Time })

	view.Search(query.Search)
	if query.Sort != "" {
		if err := view.Sort(query.Sort, query.Desc); err != nil {
			return table.Page[models.Card]{}, err
		}
	}
	view.Paginate(query.Page)

	return view.Page(), nil
}

// CreateCard выпускает карту. Один ключ идемпотентности на вызов.
func (c *CardService) CreateCard(ctx context.Context, user models.User, card models.NewCard) (models.CardActionResult, error) {
	// Новая карта еще без id, поэтому выпуск сериализуется по пользователю.
	return c.run(ctx, user, "new:"+user.ID, ActionCreate, func(actionID string) (string, []string, error) {
		stream := QuoteStream(user.ID, models.ActionCardCreation)
		if c.quotes.Pending(stream) {
			return "", nil, ErrQuotePending
		}
		quote, ok := c.quotes.Settled(stream)
		if !ok {
			return "", nil, ErrQuoteStale
		}

		ledger, err := NewBalanceService(c.backend).Current(ctx)
		if err != nil {
			return "", nil, err
		}
		if err := ValidateCreation(ledger, card.FundingAmount, quote); err != nil {
			return "", nil, err
		}

		created, err := c.backend.CreateCard(ctx, card, actionID)
		if err != nil {
			return "", nil, err
		}
		return created.ID, nil, nil
	})
}

// UpdateLimit меняет месячный лимит карты.
func (c *CardService) UpdateLimit(ctx context.Context, user models.User, cardID string, newLimit decimal.Decimal) (models.CardActionResult, error) {
	return c.run(ctx, user, cardID, ActionUpdateLimit, func(string) (string, []string, error) {
		cards, ledger, err := c.snapshot(ctx)
		if err != nil {
			return "", nil, err
		}
		checkDiscrepancy(ledger, cards)

		card, err := findCard(cards, cardID)
		if err != nil {
			return "", nil, err
		}
		if _, err := ValidateLimitChange(card, newLimit, ledger.AvailableForIncrease()); err != nil {
			return "", nil, err
		}

		if _, err := c.backend.UpdateLimit(ctx, cardID, newLimit); err != nil {
			return "", nil, err
		}
		return cardID, nil, nil
	})
}

// Freeze замораживает активную карту.
func (c *CardService) Freeze(ctx context.Context, user models.User, cardID string) (models.CardActionResult, error) {
	return c.toggle(ctx, user, cardID, ActionFreeze, c.backend.FreezeCard)
}

// Unfreeze размораживает замороженную карту.
func (c *CardService) Unfreeze(ctx context.Context, user models.User, cardID string) (models.CardActionResult, error) {
	return c.toggle(ctx, user, cardID, ActionUnfreeze, c.backend.UnfreezeCard)
}

func (c *CardService) toggle(ctx context.Context, user models.User, cardID, action string, call func(context.Context, string) error) (models.CardActionResult, error) {
	return c.run(ctx, user, cardID, action, func(string) (string, []string, error) {
		card, err := c.loadCard(ctx, cardID)
		if err != nil {
			return "", nil, err
		}
		if err := ValidateTransition(card, action); err != nil {
			return "", nil, err
		}
		if err := call(ctx, cardID); err != nil {
			return "", nil, err
		}
		return cardID, nil, nil
	})
}

// Delete всегда отправляет запрос в бэкенд: локальная проверка только добавляет
// предупреждения, а отказ бэкенда возвращается как есть.
func (c *CardService) Delete(ctx context.Context, user models.User, cardID string) (models.CardActionResult, error) {
	return c.run(ctx, user, cardID, ActionDelete, func(string) (string, []string, error) {
		card, err := c.loadCard(ctx, cardID)
		if err != nil {
			return "", nil, err
		}
		if err := ValidateTransition(card, ActionDelete); err != nil {
			return "", nil, err
		}

		pending := 0
		transactions, err := c.backend.ListCardTransactions(ctx)
		if err != nil {
			logger.Log.Warn("failed to load transactions for deletion pre-check", zap.String("cardID", cardID), zap.Error(err))
		}
		for _, tx := range transactions {
			if tx.CardID == cardID && strings.EqualFold(tx.Status, pendingTxStatus) {
				pending++
			}
		}

		warnings := DeletionAdvisory(card, pending)
		if len(warnings) > 0 {
			logger.Log.Info("deleting card despite pre-check warnings",
				zap.String("cardID", cardID),
				zap.Strings("warnings", warnings),
			)
		}

		if err := c.backend.DeleteCard(ctx, cardID); err != nil {
			return "", warnings, err
		}
		return cardID, warnings, nil
	})
}

// ListCardActions возвращает журнал действий по карте, новые сверху.
func (c *CardService) ListCardActions(ctx context.Context, user models.User, cardID string) ([]models.CardAction, error) {
	if c.journal == nil {
		return []models.CardAction{}, nil
	}

	actions, err := c.journal.FindCardActions(ctx, user.ID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card actions: %w", err)
	}
	return actions, nil
}

type command func(actionID string) (cardID string, warnings []string, err error)

func (c *CardService) run(ctx context.Context, user models.User, guardKey, action string, cmd command) (models.CardActionResult, error) {
	if !c.guard.acquire(guardKey) {
		return models.CardActionResult{}, ErrOperationInProgress
	}
	defer c.guard.release(guardKey)

	actionID := c.newID()
	cardID, warnings, err := cmd(actionID)

	journalCardID := cardID
	if journalCardID == "" {
		journalCardID = guardKey
	}
	c.record(ctx, user, journalCardID, action, actionID, err)

	if err != nil {
		logger.Log.Info("card action failed",
			zap.String("action", action),
			zap.String("card", journalCardID),
			zap.Error(err),
		)
		return models.CardActionResult{}, err
	}

	cards, ledger, err := c.snapshot(ctx)
	if err != nil {
		return models.CardActionResult{}, fmt.Errorf("action %s succeeded but refresh failed: %w", action, err)
	}

	result := models.CardActionResult{
		Cards:    cards,
		Balance:  ledger.Account(),
		Warnings: warnings,
	}
	if card, err := findCard(cards, cardID); err == nil {
		result.Card = &card
	}

	return result, nil
}

// snapshot перечитывает карты и баланс параллельно.
func (c *CardService) snapshot(ctx context.Context) ([]models.Card, Ledger, error) {
	var (
		cards  []models.Card
		ledger Ledger
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = c.backend.ListCards(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ledger, err = NewBalanceService(c.backend).Current(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, Ledger{}, err
	}
	return cards, ledger, nil
}

func (c *CardService) loadCard(ctx context.Context, cardID string) (models.Card, error) {
	cards, err := c.backend.ListCards(ctx)
	if err != nil {
		return models.Card{}, err
	}
	return findCard(cards, cardID)
}

func (c *CardService) record(ctx context.Context, user models.User, cardID, action, actionID string, err error) {
	if c.journal == nil {
		return
	}

	entry := models.CardAction{
		ID:      actionID,
		UserID:  user.ID,
		CardID:  cardID,
		Action:  action,
		Outcome: "succeeded",
	}
	if err != nil {
		entry.Outcome = "failed"
		entry.ErrorCode = ErrorCode(err)
	}

	// Команда уже ушла в бэкенд, поэтому журнал пишется и после отключения клиента.
	if jerr := c.journal.RecordCardAction(context.WithoutCancel(ctx), entry); jerr != nil {
		logger.Log.Error("failed to record card action", zap.String("actionID", actionID), zap.Error(jerr))
	}
}

func findCard(cards []models.Card, cardID string) (models.Card, error) {
	for _, card := range cards {
		if card.ID == cardID {
			return card, nil
		}
	}
	return models.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
}

// IsRefreshNeeded - ошибка означает, что данные на клиенте устарели.
func IsRefreshNeeded(err error) bool {
	return errors.Is(err, ErrCardNotFound) || errors.Is(err, backend.ErrNotFound)
}
