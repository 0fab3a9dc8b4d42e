package trigger

import (
	"context"
	"fmt"
	"time"

	mpusecase "pickup-backend/internal/marketplace/usecase"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/usecase"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

type AssignmentHandler interface {
	HandleRequestCreated(ctx context.Context, req *domain.Request) (usecase.Result, error)
	HandleCollectorActivated(ctx context.Context, c *domain.Collector) (usecase.Result, error)
	AssignUnassigned(ctx context.Context, town string) (usecase.Result, error)
}

type ReassignmentHandler interface {
	HandleCollectorDeactivated(ctx context.Context, c *domain.Collector) (usecase.Result, error)
	SweepDue(ctx context.Context) (usecase.Result, error)
}

type StatusHandler interface {
	HandleRequestUpdated(ctx context.Context, before, after *domain.Request) (usecase.Result, error)
}

type ChatHandler interface {
	HandleChatMessageCreated(ctx context.Context, msg *domain.ChatMessage) (usecase.Result, error)
}

// Sweeper is a periodic pass over pickup requests
type Sweeper interface {
	Sweep(ctx context.Context) (usecase.Result, error)
}

type MarketplaceSweeper interface {
	Sweep(ctx context.Context) (mpusecase.Result, error)
}

// Handlers wires each event to the component that serves it. A nil handler
// turns its events into no-ops.
type Handlers struct {
	Assignment   AssignmentHandler
	Reassignment ReassignmentHandler
	Status       StatusHandler
	Chat         ChatHandler
	Missed       Sweeper
	Reminder     Sweeper
	Marketplace  MarketplaceSweeper
}

// Dispatcher routes events to their handlers. It is the invocation boundary:
// every dispatch is logged with its counts, failures are counted per event
// and panics are turned into errors.
type Dispatcher struct {
	h   Handlers
	log *zap.Logger
}

func NewDispatcher(h Handlers, log *zap.Logger) *Dispatcher {
	return &Dispatcher{h: h, log: log.Named("dispatcher")}
}

type counter interface {
	Counts() map[string]int
}

// Dispatch runs the handler for ev and returns its counts
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (counts map[string]int, err error) {
	start := time.Now()
	log := d.log.With(zap.String("event", ev.Name()))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", ev.Name(), r)
		}
		if err != nil {
			metrics.SweepErrorsTotal.WithLabelValues(ev.Name()).Inc()
			log.Error("event failed", zap.Any("counts", counts), zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		log.Info("event handled", zap.Any("counts", counts), zap.Duration("took", time.Since(start)))
	}()

	res, err := d.route(ctx, ev)
	if res != nil {
		counts = res.Counts()
	}
	return counts, err
}

// Handle dispatches ev and only logs the outcome. Scheduled jobs and
// subscription callbacks use it since they have no caller to report to.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	_, _ = d.Dispatch(ctx, ev)
}

func (d *Dispatcher) route(ctx context.Context, ev Event) (counter, error) {
	switch e := ev.(type) {
	case RequestCreated:
		if d.h.Assignment == nil || e.Request == nil {
			return nil, nil
		}
		return d.h.Assignment.HandleRequestCreated(ctx, e.Request)

	case RequestUpdated:
		if d.h.Status == nil {
			return nil, nil
		}
		return d.h.Status.HandleRequestUpdated(ctx, e.Before, e.After)

	case CollectorActivated:
		if d.h.Assignment == nil || e.Collector == nil {
			return nil, nil
		}
		return d.h.Assignment.HandleCollectorActivated(ctx, e.Collector)

	case CollectorDeactivated:
		if d.h.Reassignment == nil || e.Collector == nil {
			return nil, nil
		}
		return d.h.Reassignment.HandleCollectorDeactivated(ctx, e.Collector)

	case ChatMessageCreated:
		if d.h.Chat == nil || e.Message == nil {
			return nil, nil
		}
		return d.h.Chat.HandleChatMessageCreated(ctx, e.Message)

	case ScheduledSweep:
		return d.sweep(ctx, e.Kind)
	}
	return nil, fmt.Errorf("unsupported event %T", ev)
}

func (d *Dispatcher) sweep(ctx context.Context, kind SweepKind) (counter, error) {
	switch kind {
	case SweepUnassigned:
		if d.h.Assignment != nil {
			return d.h.Assignment.AssignUnassigned(ctx, "")
		}
	case SweepDueDate:
		if d.h.Reassignment != nil {
			return d.h.Reassignment.SweepDue(ctx)
		}
	case SweepReminder:
		if d.h.Reminder != nil {
			return d.h.Reminder.Sweep(ctx)
		}
	case SweepMissed:
		if d.h.Missed != nil {
			return d.h.Missed.Sweep(ctx)
		}
	case SweepMarketplace:
		if d.h.Marketplace != nil {
			return d.h.Marketplace.Sweep(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown sweep kind %q", kind)
	}
	return nil, nil
}
