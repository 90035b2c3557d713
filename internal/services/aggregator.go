package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Renal37/cardledger/internal/models"
)

const (
	withdrawalPrefix = "WD-"
	unknownLast4     = "****"
	feedDateLayout   = "Jan 2, 2006 15:04"
)

// CardLookup - проекция карт, нужная ленте: id -> отображаемые поля.
type CardLookup map[string]models.Card

// NewCardLookup строится по текущему набору карт. Удаленные карты в него
// не входят, поэтому их операции пропадают из ленты.
func NewCardLookup(cards []models.Card) CardLookup {
	lookup := make(CardLookup, len(cards))
	for _, card := range cards {
		if card.Status == models.CardDeleted {
			continue
		}
		lookup[card.ID] = card
	}
	return lookup
}

// FeedSources - сырые данные трех источников.
type FeedSources struct {
	Deposits []models.DepositTx
	CardTxs  []models.CardTx
	Fees     []models.FeeTx
}

// Aggregate приводит три источника к общему виду, склеивает (депозиты, карты, комиссии)
// и стабильно сортирует по времени от новых к старым. Исходные срезы не меняются.
func Aggregate(sources FeedSources, lookup CardLookup) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(sources.Deposits)+len(sources.CardTxs)+len(sources.Fees))

	for _, deposit := range sources.Deposits {
		items = append(items, normalizeDeposit(deposit))
	}
	for i, tx := range sources.CardTxs {
		card, ok := lookup[tx.CardID]
		if !ok {
			continue
		}
		items = append(items, normalizeCardTx(tx, card, i))
	}
	for i, fee := range sources.Fees {
		items = append(items, normalizeFee(fee, i))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TimestampMs > items[j].TimestampMs
	})

	return items
}

func normalizeDeposit(deposit models.DepositTx) models.FeedItem {
	withdrawal := strings.HasPrefix(deposit.OrderReference, withdrawalPrefix)

	amount := deposit.Amount.Abs()
	title := "Deposit " + strings.ToUpper(deposit.CryptoCurrency)
	if withdrawal {
		amount = amount.Neg()
		title = "Withdrawal " + strings.ToUpper(deposit.CryptoCurrency)
	}

	details := &models.DepositDetails{
		OrderReference: deposit.OrderReference,
		CryptoCurrency: deposit.CryptoCurrency,
		CryptoAmount:   deposit.CryptoAmount,
		Confirmations:  deposit.Confirmations,
		Withdrawal:     withdrawal,
	}
	if network, ok := LookupNetwork(deposit.CryptoCurrency); ok {
		details.Network = network.Name
	}
	if deposit.TransactionHash != nil {
		details.TransactionHash = *deposit.TransactionHash
		details.ExplorerURL = ExplorerURL(deposit.CryptoCurrency, *deposit.TransactionHash)
	}

	return models.FeedItem{
		ID:          "deposit:" + deposit.OrderReference,
		Type:        models.FeedDeposit,
		Title:       title,
		Description: deposit.OrderReference,
		Amount:      amount,
		Status:      deposit.Status,
		Timestamp:   deposit.RequestedAt.Time,
		TimestampMs: deposit.RequestedAt.Ms(),
		Deposit:     details,
	}
}

// feedID - ключ строки ленты. Если бэкенд не прислал id, ключ собирается из
// того, что у записи есть, и ее позиции в источнике, чтобы строки не совпадали.
func feedID(prefix, id, owner string, createdMs int64, index int) string {
	if id != "" {
		return prefix + ":" + id
	}
	return fmt.Sprintf("%s:%s:%d:%d", prefix, owner, createdMs, index)
}

func normalizeCardTx(tx models.CardTx, card models.Card, index int) models.FeedItem {
	title := tx.MerchantName
	if title == "" {
		title = "Card transaction"
	}

	return models.FeedItem{
		ID:          feedID("card", tx.ID, tx.CardID, tx.CreatedAt.Ms(), index),
		Type:        models.FeedCard,
		Title:       title,
		Description: tx.Description,
		Amount:      tx.Amount,
		Status:      tx.Status,
		Timestamp:   tx.CreatedAt.Time,
		TimestampMs: tx.CreatedAt.Ms(),
		Card: &models.CardDetails{
			CardID:           tx.CardID,
			Last4:            resolveLast4(tx, card),
			Nickname:         card.Nickname,
			MerchantName:     tx.MerchantName,
			MerchantCategory: tx.MerchantCategory,
		},
	}
}

// resolveLast4 перебирает источники последних цифр по порядку: операция,
// вложенная карта, карта из справочника, маскированный номер, никнейм.
func resolveLast4(tx models.CardTx, card models.Card) string {
	candidates := []string{tx.Last4}
	if tx.Card != nil {
		candidates = append(candidates, tx.Card.Last4)
	}
	candidates = append(candidates, card.Last4, last4FromPan(card.MaskedPan))
	if tx.Card != nil {
		candidates = append(candidates, last4FromPan(tx.Card.MaskedPan))
	}
	candidates = append(candidates, card.Nickname)

	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}
	return unknownLast4
}

func last4FromPan(pan string) string {
	digits := make([]rune, 0, 4)
	runes := []rune(strings.TrimSpace(pan))
	for i := len(runes) - 1; i >= 0 && len(digits) < 4; i-- {
		if !unicode.IsDigit(runes[i]) {
			break
		}
		digits = append(digits, runes[i])
	}
	if len(digits) < 4 {
		return ""
	}
	return string([]rune{digits[3], digits[2], digits[1], digits[0]})
}

var feeTitles = map[models.FeeKind]string{
	models.FeeDeposit:      "Deposit fee",
	models.FeeCardCreation: "Card creation fee",
	models.FeeCardMonthly:  "Monthly card fee",
	models.FeeOther:        "Fee",
}

func normalizeFee(fee models.FeeTx, index int) models.FeedItem {
	return models.FeedItem{
		ID:          feedID("fee", fee.ID, string(fee.FeeKind), fee.CreatedAt.Ms(), index),
		Type:        models.FeedFee,
		Title:       feeTitles[fee.FeeKind],
		Description: fee.Description,
		Amount:      fee.Amount.Abs().Neg(),
		Status:      "completed",
		Timestamp:   fee.CreatedAt.Time,
		TimestampMs: fee.CreatedAt.Ms(),
		Fee: &models.FeeDetails{
			FeeKind:     fee.FeeKind,
			ReferenceID: fee.ReferenceID,
			Inferred:    !fee.KindFromBackend,
		},
	}
}

const feeEntryType = "fee"

// FeesFromHistory выбирает комиссии из журнала баланса. Если бэкенд не прислал
// feeKind, вид угадывается по описанию.
func FeesFromHistory(entries []models.BalanceHistoryEntry) []models.FeeTx {
	fees := make([]models.FeeTx, 0)
	for _, entry := range entries {
		if entry.EntryType != feeEntryType {
			continue
		}

		fee := models.FeeTx{
			ID:          entry.ID,
			Amount:      entry.Amount,
			ReferenceID: entry.ReferenceID,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		}
		if entry.FeeKind != nil && *entry.FeeKind != "" {
			fee.FeeKind = *entry.FeeKind
			fee.KindFromBackend = true
		} else {
			fee.FeeKind = InferFeeKind(entry.Description)
		}
		fees = append(fees, fee)
	}
	return fees
}

// InferFeeKind - запасной вариант для старых записей без feeKind.
func InferFeeKind(description string) models.FeeKind {
	text := strings.ToLower(description)
	switch {
	case strings.Contains(text, "monthly"):
		return models.FeeCardMonthly
	case strings.Contains(text, "card"):
		return models.FeeCardCreation
	case strings.Contains(text, "deposit"):
		return models.FeeDeposit
	default:
		return models.FeeOther
	}
}

// Filter применяет фильтры по очереди: тип, статус, поиск. Возвращает новый срез.
func Filter(items []models.FeedItem, filter models.FeedFilter) []models.FeedItem {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	filtered := make([]models.FeedItem, 0, len(items))
	for _, item := range items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Status != "" && !strings.EqualFold(item.Status, filter.Status) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func matchesSearch(item models.FeedItem, term string) bool {
	fields := []string{
		item.Title,
		item.Description,
		item.Amount.StringFixed(2),
	}
	if item.Card != nil {
		fields = append(fields, item.Card.MerchantName)
	}
	if !item.Timestamp.IsZero() {
		fields = append(fields, item.Timestamp.Format(feedDateLayout))
	}

	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
