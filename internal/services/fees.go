package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultFeeDebounce = 500 * time.Millisecond

var (
	ErrQuoteSuperseded = errors.New("fee quote superseded by a newer request")
	ErrQuoteStale      = errors.New("fee quote is stale")
	ErrQuotePending    = errors.New("fee quote is still in flight")
	ErrUnknownTier     = errors.New("unknown tier")
)

type feeBackend interface {
	CalculateFee(ctx context.Context, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error)
}

// QuoteCache хранит уже посчитанные бэкендом комиссии.
type QuoteCache interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool)
	Set(ctx context.Context, key string, fee decimal.Decimal)
}

type quoteStream struct {
	seq     uint64
	pending bool
	settled *models.Quote
}

// FeeResolver запрашивает комиссии у бэкенда. Запросы одного потока (пользователь + действие),
// пришедшие в пределах окна debounce, схлопываются до последнего, а ответ, который пришел
// после более нового запроса, отбрасывается по номеру последовательности.
type FeeResolver struct {
	backend  feeBackend
	cache    QuoteCache
	debounce time.Duration

	mu      sync.Mutex
	nextSeq uint64
	streams map[string]*quoteStream
}

// NewFeeResolver создает резолвер котировок. debounce <= 0 отключает задержку.
func NewFeeResolver(backend feeBackend, cache QuoteCache, debounce time.Duration) *FeeResolver {
	return &FeeResolver{
		backend:  backend,
		cache:    cache,
		debounce: debounce,
		streams:  make(map[string]*quoteStream),
	}
}

// QuoteStream - ключ потока запросов комиссии.
func QuoteStream(userID string, action models.FeeAction) string {
	return userID + ":" + string(action)
}

// Quote отдает котировку комиссии для потока stream. Устаревшие ответы отбрасываются.
func (f *FeeResolver) Quote(ctx context.Context, stream string, action models.FeeAction, amount decimal.Decimal) (models.Quote, error) {
	if action != models.ActionDeposit && action != models.ActionCardCreation {
		return models.Quote{}, &ValidationError{Field: "action", Reason: ReasonUnknownAction}
	}
	if !amount.IsPositive() {
		return models.Quote{}, &ValidationError{Field: "amount", Reason: ReasonNotPositive}
	}

	seq := f.begin(stream)

	timer := time.NewTimer(f.debounce)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		f.abandon(stream, seq)
		return models.Quote{}, ctx.Err()
	case <-timer.C:
	}

	if !f.isLatest(stream, seq) {
		return models.Quote{}, ErrQuoteSuperseded
	}

	fee, err := f.fetch(ctx, stream, action, amount)
	if err != nil {
		f.abandon(stream, seq)
		return models.Quote{}, err
	}

	quote := models.Quote{
		Action:   action,
		Amount:   amount,
		Fee:      fee,
		Sequence: seq,
	}

	if !f.settle(stream, seq, quote) {
		logger.Log.Debug("discarded stale fee quote",
			zap.String("stream", stream),
			zap.Uint64("sequence", seq),
		)
		return models.Quote{}, ErrQuoteStale
	}

	return quote, nil
}

// Settled возвращает последнюю посчитанную комиссию потока, если после нее
// не было новых запросов.
func (f *FeeResolver) Settled(stream string) (models.Quote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.streams[stream]
	if !ok || s.pending || s.settled == nil {
		return models.Quote{}, false
	}
	return *s.settled, true
}

// Pending сообщает, ждет ли поток ответа.
func (f *FeeResolver) Pending(stream string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.streams[stream]
	return ok && s.pending
}

func (f *FeeResolver) fetch(ctx context.Context, stream string, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error) {
	key := stream + ":" + amount.String()

	if f.cache != nil {
		if fee, ok := f.cache.Get(ctx, key); ok {
			return fee, nil
		}
	}

	fee, err := f.backend.CalculateFee(ctx, action, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to quote fee: %w", err)
	}

	if f.cache != nil {
		f.cache.Set(ctx, key, fee)
	}

	return fee, nil
}

func (f *FeeResolver) begin(stream string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextSeq++
	s, ok := f.streams[stream]
	if !ok {
		s = &quoteStream{}
		f.streams[stream] = s
	}
	s.seq = f.nextSeq
	s.pending = true
	s.settled = nil

	return s.seq
}

func (f *FeeResolver) isLatest(stream string, seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.streams[stream].seq == seq
}

func (f *FeeResolver) settle(stream string, seq uint64, quote models.Quote) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.streams[stream]
	if s.seq != seq {
		return false
	}
	s.pending = false
	s.settled = &quote
	return true
}

func (f *FeeResolver) abandon(stream string, seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.streams[stream]
	if s.seq == seq {
		s.pending = false
	}
}

// TierSchedule - тарифная сетка уровней аккаунта.
type TierSchedule map[models.Tier]models.TierFees

// DefaultTierSchedule возвращает сетку тарифов по умолчанию.
func DefaultTierSchedule() TierSchedule {
	return TierSchedule{
		models.TierUnverified: {Tier: models.TierUnverified, DepositPercent: decimal.NewFromInt(3), CardCreationFlat: decimal.NewFromInt(50)},
		models.TierVerified:   {Tier: models.TierVerified, DepositPercent: decimal.NewFromInt(2), CardCreationFlat: decimal.NewFromInt(25)},
		models.TierPremium:    {Tier: models.TierPremium, DepositPercent: decimal.NewFromInt(1), CardCreationFlat: decimal.NewFromInt(10)},
		models.TierElite:      {Tier: models.TierElite, DepositPercent: decimal.RequireFromString("0.5"), CardCreationFlat: decimal.Zero},
	}
}

// Estimate считает комиссию по сетке без похода в бэкенд. Для депозита - процент
// от суммы с округлением до центов, для выпуска карты - фиксированная сумма.
func (ts TierSchedule) Estimate(tier models.Tier, action models.FeeAction, amount decimal.Decimal) (decimal.Decimal, error) {
	fees, ok := ts[tier]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}

	switch action {
	case models.ActionDeposit:
		return amount.Mul(fees.DepositPercent).Div(decimal.NewFromInt(100)).Round(2), nil
	case models.ActionCardCreation:
		return fees.CardCreationFlat, nil
	default:
		return decimal.Zero, &ValidationError{Field: "action", Reason: ReasonUnknownAction}
	}
}

// List возвращает уровни в порядке возрастания.
func (ts TierSchedule) List() []models.TierFees {
	order := []models.Tier{models.TierUnverified, models.TierVerified, models.TierPremium, models.TierElite}
	result := make([]models.TierFees, 0, len(order))
	for _, tier := range order {
		if fees, ok := ts[tier]; ok {
			result = append(result, fees)
		}
	}
	return result
}

// FeeService - расчет комиссий в разрезе пользователя.
type FeeService struct {
	resolver *FeeResolver
	schedule TierSchedule
}

// NewFeeService создает сервис комиссий.
func NewFeeService(resolver *FeeResolver, schedule TierSchedule) *FeeService {
	return &FeeService{resolver: resolver, schedule: schedule}
}

// Quote считает комиссию для пользователя, у каждого пользователя свой поток.
func (s *FeeService) Quote(ctx context.Context, user models.User, action models.FeeAction, amount decimal.Decimal) (models.Quote, error) {
	return s.resolver.Quote(ctx, QuoteStream(user.ID, action), action, amount)
}

// Tiers возвращает комиссии по всем тарифам.
func (s *FeeService) Tiers() []models.TierFees {
	return s.schedule.List()
}
