package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pickup-backend/internal/notification"
	notifdomain "pickup-backend/internal/notification/domain"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

// MissedSweeper marks open requests from earlier days as missed and tells
// both parties. Missed is terminal, so a second run over the same data finds
// nothing and sends nothing.
type MissedSweeper struct {
	deps Deps
	loc  *time.Location
	log  *zap.Logger
}

// NewMissedSweeper creates a MissedSweeper. Day boundaries are computed in loc.
func NewMissedSweeper(deps Deps, loc *time.Location) *MissedSweeper {
	if loc == nil {
		loc = time.Local
	}
	return &MissedSweeper{deps: deps, loc: loc, log: deps.logger("missed")}
}

func (s *MissedSweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result
	now := s.deps.now()
	cutoff := EndOfPreviousDay(now, s.loc)

	open, err := s.deps.Requests.FindOpenBefore(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("find open requests before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	res.Found = len(open)
	if len(open) == 0 {
		s.log.Info("no missed pickup requests", zap.Time("cutoff", cutoff))
		return res, nil
	}

	byID := make(map[string]*domain.Request, len(open))
	patches := make([]repository.RequestPatch, 0, len(open))
	for _, req := range open {
		req := req
		var patch *repository.RequestPatch
		err := isolate(func() error {
			if req.Status == domain.StatusMissed || !domain.CanTransition(req.Status, domain.StatusMissed) {
				return nil
			}
			p := repository.MissedPatch(req.ID, now, domain.MissedReasonDayPassed)
			patch = &p
			return nil
		})
		switch {
		case err != nil:
			s.log.Error("cannot mark request missed", zap.String("request_id", req.ID), zap.Error(err))
			metrics.DocumentErrorsTotal.WithLabelValues("missed").Inc()
			res.fail(req.ID, err)
		case patch == nil:
			res.Skipped++
		default:
			patches = append(patches, *patch)
			byID[req.ID] = req
		}
	}

	committed := commitIsolated(ctx, s.deps.Requests, patches, &res, "missed", s.log)
	metrics.RequestsMissedTotal.Add(float64(len(committed)))
	s.log.Info("marked requests missed", zap.Int("count", len(committed)), zap.Time("cutoff", cutoff))

	for _, p := range committed {
		req := byID[p.RequestID]
		res.Notified += s.notify(ctx, req)
	}
	return res, res.Err()
}

// notify tells the owner and, when assigned, the collector. It returns the
// number of pushes delivered.
func (s *MissedSweeper) notify(ctx context.Context, req *domain.Request) int {
	delivered := 0

	if req.UserID != "" {
		to := notification.Recipient{Kind: notifdomain.RecipientUser, ID: req.UserID}
		if u, err := s.deps.Users.FindByID(ctx, req.UserID); err == nil {
			to.Token = u.FCMToken
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("failed to load user", zap.String("user_id", req.UserID), zap.Error(err))
		}
		if s.deps.Notifier.Notify(ctx, to, missedUserMessage(req)).Pushed {
			delivered++
		}
	}

	if req.IsAssigned() {
		to := notification.Recipient{Kind: notifdomain.RecipientCollector, ID: req.CollectorID}
		if c, err := s.deps.Collectors.FindByID(ctx, req.CollectorID); err == nil {
			to.Token = c.FCMToken
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("failed to load collector", zap.String("collector_id", req.CollectorID), zap.Error(err))
		}
		if s.deps.Notifier.Notify(ctx, to, missedCollectorMessage(req)).Pushed {
			delivered++
		}
	}
	return delivered
}
