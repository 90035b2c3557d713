package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second

	// Подряд идущие сетевые ошибки и 5xx, после которых опрос прекращается.
	maxPollFailures = 5
)

var terminalDepositStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"expired":   true,
	"cancelled": true,
	"canceled":  true,
	"rejected":  true,
}

// DepositTerminal - статус больше не изменится.
func DepositTerminal(status string) bool {
	return terminalDepositStatuses[strings.ToLower(status)]
}

type depositBackend interface {
	ListDeposits(ctx context.Context) ([]models.DepositTx, error)
}

type pollQueue interface {
	Enqueue(job Job) error
	ScheduleJob(job Job, delay time.Duration) *time.Timer
	PauseAndResume(delay time.Duration)
}

// DepositPoller опрашивает статус депозита через очередь заданий.
type DepositPoller struct {
	backend  depositBackend
	queue    pollQueue
	interval time.Duration
}

// NewDepositPoller создает поллер пополнений.
func NewDepositPoller(backend depositBackend, queue pollQueue, interval time.Duration) *DepositPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &DepositPoller{backend: backend, queue: queue, interval: interval}
}

// PollHandle - запущенный опрос. Завершается на финальном статусе, по Stop
// или с окончанием контекста, переданного в Watch.
type PollHandle struct {
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan models.DepositTx
	done    chan struct{}

	once     sync.Once
	mu       sync.Mutex
	closed   bool
	timer    *time.Timer
	last     *models.DepositTx
	failures int
	err      error
}

// Updates отдает только изменившиеся состояния. Если читатель отстает,
// он получает последнее состояние, промежуточные теряются.
func (h *PollHandle) Updates() <-chan models.DepositTx {
	return h.updates
}

// Done закрывается, когда пополнение дошло до терминального статуса или опрос остановлен.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// Err - причина остановки. nil для финального статуса и Stop.
func (h *PollHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}

// Stop останавливает опрос. Повторный вызов ничего не делает.
func (h *PollHandle) Stop() {
	h.finish(nil)
}

func (h *PollHandle) finish(err error) {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.err = err
		if h.timer != nil {
			h.timer.Stop()
		}
		h.mu.Unlock()

		h.cancel()
		close(h.done)
	})
}

func (h *PollHandle) publish(deposit models.DepositTx) {
	h.mu.Lock()
	changed := h.last == nil ||
		h.last.Status != deposit.Status ||
		h.last.Confirmations != deposit.Confirmations
	h.last = &deposit
	h.mu.Unlock()

	if !changed {
		return
	}

	select {
	case h.updates <- deposit:
	default:
		select {
		case <-h.updates:
		default:
		}
		h.updates <- deposit
	}
}

func (h *PollHandle) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func newPollHandle(ctx context.Context) *PollHandle {
	pollCtx, cancel := context.WithCancel(ctx)
	return &PollHandle{
		ctx:     pollCtx,
		cancel:  cancel,
		updates: make(chan models.DepositTx, 1),
		done:    make(chan struct{}),
	}
}

// Watch запускает опрос депозита. ctx должен нести токен пользователя.
func (p *DepositPoller) Watch(ctx context.Context, orderReference string) models.DepositWatch {
	h := newPollHandle(ctx)

	go func() {
		select {
		case <-h.ctx.Done():
			h.finish(ctx.Err())
		case <-h.done:
		}
	}()

	if err := p.queue.Enqueue(p.poll(h, orderReference)); err != nil {
		h.finish(fmt.Errorf("failed to start polling: %w", err))
	}

	return h
}

func (p *DepositPoller) poll(h *PollHandle, orderReference string) Job {
	return func(_ context.Context) {
		if h.stopped() {
			return
		}

		deposit, err := p.fetch(h.ctx, orderReference)
		if err != nil {
			p.handleError(h, orderReference, err)
			return
		}

		h.mu.Lock()
		h.failures = 0
		h.mu.Unlock()

		h.publish(deposit)

		if DepositTerminal(deposit.Status) {
			logger.Log.Info("deposit reached terminal status",
				zap.String("orderReference", orderReference),
				zap.String("status", deposit.Status),
			)
			h.finish(nil)
			return
		}

		p.schedule(h, orderReference, p.interval)
	}
}

func (p *DepositPoller) handleError(h *PollHandle, orderReference string, err error) {
	switch {
	case h.ctx.Err() != nil:
		h.finish(h.ctx.Err())

	case errors.Is(err, backend.ErrRateLimited):
		delay := backend.RetryAfter(err)
		logger.Log.Info("got retryAfter", zap.Duration("retryAfter", delay), zap.String("orderReference", orderReference))
		p.queue.PauseAndResume(delay)
		p.schedule(h, orderReference, delay)

	case errors.Is(err, backend.ErrNetwork), errors.Is(err, backend.ErrUnavailable):
		h.mu.Lock()
		h.failures++
		failures := h.failures
		h.mu.Unlock()

		if failures >= maxPollFailures {
			h.finish(err)
			return
		}
		logger.Log.Warn("deposit poll failed, retrying",
			zap.String("orderReference", orderReference),
			zap.Int("failures", failures),
			zap.Error(err),
		)
		p.schedule(h, orderReference, p.interval)

	default:
		logger.Log.Error("failed to poll deposit", zap.String("orderReference", orderReference), zap.Error(err))
		h.finish(err)
	}
}

func (p *DepositPoller) schedule(h *PollHandle, orderReference string, delay time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// closed ставится под тем же мьютексом, что и остановка таймера в finish.
	if h.closed {
		return
	}
	h.timer = p.queue.ScheduleJob(p.poll(h, orderReference), delay)
}

func (p *DepositPoller) fetch(ctx context.Context, orderReference string) (models.DepositTx, error) {
	deposits, err := p.backend.ListDeposits(ctx)
	if err != nil {
		return models.DepositTx{}, err
	}

	for _, deposit := range deposits {
		if deposit.OrderReference == orderReference {
			return deposit, nil
		}
	}
	return models.DepositTx{}, fmt.Errorf("%w: %s", ErrDepositNotFound, orderReference)
}
