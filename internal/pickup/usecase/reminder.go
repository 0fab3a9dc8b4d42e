package usecase

import (
	"context"
	"fmt"
	"time"

	"pickup-backend/internal/pickup/domain"

	"go.uber.org/zap"
)

const (
	reminderLead   = 30 * time.Minute
	reminderWindow = 5 * time.Minute
)

// ReminderSweeper pushes a reminder to collectors roughly half an hour
// before a pickup. The window matches the sweep interval so each request is
// reminded once.
type ReminderSweeper struct {
	deps Deps
	log  *zap.Logger
}

func NewReminderSweeper(deps Deps) *ReminderSweeper {
	return &ReminderSweeper{deps: deps, log: deps.logger("reminder")}
}

func (s *ReminderSweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result
	now := s.deps.now()
	to := now.Add(reminderLead)
	from := to.Add(-reminderWindow)

	upcoming, err := s.deps.Requests.FindUpcoming(ctx, from, to)
	if err != nil {
		return res, fmt.Errorf("find upcoming requests: %w", err)
	}
	res.Found = len(upcoming)

	collectors := make(map[string]*domain.Collector)
	for _, req := range upcoming {
		if !req.IsAssigned() {
			res.Skipped++
			continue
		}
		c, ok := collectors[req.CollectorID]
		if !ok {
			c, err = s.deps.Collectors.FindByID(ctx, req.CollectorID)
			if err != nil {
				s.log.Warn("cannot load collector for reminder",
					zap.String("request_id", req.ID), zap.String("collector_id", req.CollectorID), zap.Error(err))
				res.fail(req.ID, err)
				continue
			}
			collectors[req.CollectorID] = c
		}
		if s.deps.Notifier.Push(ctx, c.ID, c.FCMToken, reminderPush(req)) {
			res.Notified++
		}
	}
	if res.Notified > 0 {
		s.log.Info("sent pickup reminders", zap.Int("count", res.Notified))
	}
	return res, res.Err()
}
