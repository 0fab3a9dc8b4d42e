package usecase

import (
	"context"
	"errors"
	"fmt"

	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"

	"go.uber.org/zap"
)

// StatusNotifier tells the request owner when a collector accepts or starts
// a pickup
type StatusNotifier struct {
	deps Deps
	log  *zap.Logger
}

func NewStatusNotifier(deps Deps) *StatusNotifier {
	return &StatusNotifier{deps: deps, log: deps.logger("status")}
}

// HandleRequestUpdated reacts to a status change between before and after.
// Regressions and writes after a terminal status are ignored.
func (n *StatusNotifier) HandleRequestUpdated(ctx context.Context, before, after *domain.Request) (Result, error) {
	var res Result
	if before == nil || after == nil || before.Status == after.Status {
		return res, nil
	}
	log := n.log.With(zap.String("request_id", after.ID),
		zap.String("from", string(before.Status)), zap.String("to", string(after.Status)))

	if !domain.CanTransition(before.Status, after.Status) {
		log.Warn("ignoring invalid status transition")
		res.Skipped++
		return res, nil
	}
	push, ok := statusPush(after)
	if !ok || after.UserID == "" {
		return res, nil
	}
	res.Found = 1

	user, err := n.deps.Users.FindByID(ctx, after.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("request owner not found", zap.String("user_id", after.UserID))
			res.Skipped++
			return res, nil
		}
		return res, fmt.Errorf("load user %s: %w", after.UserID, err)
	}
	if n.deps.Notifier.Push(ctx, user.ID, user.FCMToken, push) {
		res.Notified++
	}
	return res, nil
}
