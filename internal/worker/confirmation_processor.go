package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/usecase"
)

// PaymentFacade exposes the subset of application functionality required by the worker.
type PaymentFacade interface {
	ConfirmationsForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error)
	LinkFromOrder(ctx context.Context, orderID string) (*usecase.LinkResult, error)
	MarkConfirmationDelivered(ctx context.Context, eventID int64) error
	MarkConfirmationFailed(ctx context.Context, eventID int64) error
}

// ConfirmationProcessor drains the payment-confirmed outbox and drives
// account linking concurrently. Linking no longer depends on the customer
// revisiting the success page; an event claimed by a crashed run stays in
// processing until its claim goes stale and a later poll reclaims it.
type ConfirmationProcessor struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.ConfirmationEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewConfirmationProcessor constructs the outbox worker pool.
func NewConfirmationProcessor(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ConfirmationProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ConfirmationProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.ConfirmationEvent, batchSize*workers),
	}
}

// Start launches background processing.
func (p *ConfirmationProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *ConfirmationProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *ConfirmationProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *ConfirmationProcessor) fetchAndDispatch(ctx context.Context) {
	events, err := p.facade.ConfirmationsForDelivery(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch confirmations for delivery failed", slog.String("error", err.Error()))
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- event:
		}
	}
}

func (p *ConfirmationProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleEvent(ctx, event)
		}
	}
}

func (p *ConfirmationProcessor) handleEvent(ctx context.Context, event model.ConfirmationEvent) {
	_, err := p.facade.LinkFromOrder(ctx, event.OrderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		p.logger.Error("account linking failed",
			slog.String("order", event.OrderID),
			slog.Int("attempts", event.Attempts),
			slog.String("error", err.Error()),
		)
		if markErr := p.facade.MarkConfirmationFailed(ctx, event.ID); markErr != nil {
			p.logger.Error("mark confirmation failed errored", slog.String("error", markErr.Error()))
		}
		return
	}
	if err != nil {
		// The order vanished from the store; retrying cannot help.
		p.logger.Error("confirmation references unknown order", slog.String("order", event.OrderID))
	}

	if err := p.facade.MarkConfirmationDelivered(ctx, event.ID); err != nil {
		p.logger.Error("mark confirmation delivered failed",
			slog.String("order", event.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
