package services

import (
	"context"
	"fmt"

	"github.com/Renal37/cardledger/internal/models"
	"github.com/Renal37/cardledger/internal/table"
	"golang.org/x/sync/errgroup"
)

type feedBackend interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	ListDeposits(ctx context.Context) ([]models.DepositTx, error)
	ListCardTransactions(ctx context.Context) ([]models.CardTx, error)
	GetBalanceHistory(ctx context.Context) ([]models.BalanceHistoryEntry, error)
}

type FeedService struct {
	backend feedBackend
}

// NewFeedService создает сервис ленты операций.
func NewFeedService(backend feedBackend) *FeedService {
	return &FeedService{backend: backend}
}

// Load забирает все источники параллельно и собирает ленту. Если контекст
// отменен (клиент ушел), собранный результат выбрасывается.
func (f *FeedService) Load(ctx context.Context) ([]models.FeedItem, error) {
	var (
		cards   []models.Card
		history []models.BalanceHistoryEntry
		sources FeedSources
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards, err = f.backend.ListCards(gctx)
		return err
	})
	g.Go(func() (err error) {
		sources.Deposits, err = f.backend.ListDeposits(gctx)
		return err
	})
	g.Go(func() (err error) {
		sources.CardTxs, err = f.backend.ListCardTransactions(gctx)
		return err
	})
	g.Go(func() (err error) {
		history, err = f.backend.GetBalanceHistory(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources.Fees = FeesFromHistory(history)
	return Aggregate(sources, NewCardLookup(cards)), nil
}

// Page - отфильтрованная страница ленты. Порядок ленты задан агрегатором,
// поэтому таблица здесь только режет на страницы.
func (f *FeedService) Page(ctx context.Context, filter models.FeedFilter, page, pageSize int) (table.Page[models.FeedItem], error) {
	items, err := f.Load(ctx)
	if err != nil {
		return table.Page[models.FeedItem]{}, err
	}

	view := table.New(Filter(items, filter), pageSize, func(item models.FeedItem) string { return item.ID })
	view.Paginate(page)
	return view.Page(), nil
}
