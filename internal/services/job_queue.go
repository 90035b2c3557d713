package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Renal37/cardledger/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrJobQueueIsFull = errors.New("job queue is full")
	ErrJobQueueClosed = errors.New("job queue is closed")
)

// Job - задание для воркеров очереди. ctx отменяется при остановке очереди.
type Job func(ctx context.Context)

// JobQueueService - пул воркеров с общей паузой. Пауза нужна, когда бэкенд
// отвечает 429: все воркеры ждут Retry-After, а не только тот, что получил ответ.
type JobQueueService struct {
	jobs    chan Job
	resume  chan struct{}
	mu      sync.Mutex
	paused  bool
	closing bool
	wg      sync.WaitGroup
}

// NewJobQueueService запускает workers обработчиков очереди.
func NewJobQueueService(ctx context.Context, capacity, workers int) *JobQueueService {
	service := &JobQueueService{
		jobs:   make(chan Job, capacity),
		resume: make(chan struct{}),
	}
	service.start(ctx, workers)

	return service
}

func (jqs *JobQueueService) start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		jqs.wg.Add(1)

		go func(workerID int) {
			defer jqs.wg.Done()

			for {
				select {
				case job, ok := <-jqs.jobs:
					if !ok {
						return
					}
					if !jqs.waitResume(ctx) {
						return
					}
					jqs.run(ctx, workerID, job)
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}
}

// waitResume блокирует воркер на время паузы. false - очередь остановлена.
func (jqs *JobQueueService) waitResume(ctx context.Context) bool {
	jqs.mu.Lock()
	paused, resume := jqs.paused, jqs.resume
	jqs.mu.Unlock()

	if !paused {
		return true
	}

	select {
	case <-resume:
		return true
	case <-ctx.Done():
		return false
	}
}

func (jqs *JobQueueService) run(ctx context.Context, workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("job panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()

	job(ctx)
}

// Enqueue не блокируется: при заполненной или закрытой очереди возвращает ошибку.
func (jqs *JobQueueService) Enqueue(job Job) error {
	jqs.mu.Lock()
	defer jqs.mu.Unlock()

	if jqs.closing {
		return ErrJobQueueClosed
	}

	select {
	case jqs.jobs <- job:
		return nil
	default:
		return ErrJobQueueIsFull
	}
}

// ScheduleJob ставит задание в очередь через delay. Таймер можно остановить.
func (jqs *JobQueueService) ScheduleJob(job Job, delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() {
		if err := jqs.Enqueue(job); err != nil {
			logger.Log.Warn("failed to enqueue scheduled job", zap.Duration("delay", delay), zap.Error(err))
		}
	})
}

// Pause приостанавливает выдачу задач обработчикам.
func (jqs *JobQueueService) Pause() {
	jqs.mu.Lock()
	defer jqs.mu.Unlock()

	jqs.paused = true
}

// Resume возобновляет обработку.
func (jqs *JobQueueService) Resume() {
	jqs.mu.Lock()
	defer jqs.mu.Unlock()

	if !jqs.paused {
		return
	}
	jqs.paused = false
	close(jqs.resume)
	jqs.resume = make(chan struct{})
}

func (jqs *JobQueueService) Paused() bool {
	jqs.mu.Lock()
	defer jqs.mu.Unlock()

	return jqs.paused
}

// PauseAndResume ставит очередь на паузу на delay.
func (jqs *JobQueueService) PauseAndResume(delay time.Duration) {
	logger.Log.Info("pausing job queue", zap.Duration("delay", delay))

	jqs.Pause()
	time.AfterFunc(delay, jqs.Resume)
}

// Shutdown закрывает очередь, дорабатывает уже поставленные задания и ждет воркеров.
func (jqs *JobQueueService) Shutdown() {
	jqs.mu.Lock()
	if jqs.closing {
		jqs.mu.Unlock()
		return
	}
	jqs.closing = true
	close(jqs.jobs)
	jqs.mu.Unlock()

	jqs.Resume()
	jqs.wg.Wait()
}
