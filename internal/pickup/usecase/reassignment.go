package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

// ReassignmentEngine moves pending requests away from collectors that can no
// longer serve them. Both triggers pick uniformly at random from the
// eligible pool; a deactivation hands all of a town's requests to the one
// collector picked for that town.
type ReassignmentEngine struct {
	deps        Deps
	bufferHours int
	log         *zap.Logger
}

// NewReassignmentEngine creates a ReassignmentEngine. bufferHours is added
// to an overdue pickup date when the request changes hands.
func NewReassignmentEngine(deps Deps, bufferHours int) *ReassignmentEngine {
	return &ReassignmentEngine{deps: deps, bufferHours: bufferHours, log: deps.logger("reassignment")}
}

// HandleCollectorDeactivated hands the pending requests of a collector that
// went inactive to another active collector of the same town, or clears the
// assignment when there is none.
func (e *ReassignmentEngine) HandleCollectorDeactivated(ctx context.Context, deactivated *domain.Collector) (Result, error) {
	var res Result
	log := e.log.With(zap.String("collector_id", deactivated.ID), zap.String("town", deactivated.Town))

	if deactivated.Town == "" {
		log.Info("collector missing town field")
		return res, nil
	}

	held, err := e.deps.Requests.FindPendingByCollector(ctx, deactivated.ID)
	if err != nil {
		return res, fmt.Errorf("find requests of collector %s: %w", deactivated.ID, err)
	}
	res.Found = len(held)
	if len(held) == 0 {
		log.Info("no pending requests to reassign")
		return res, nil
	}

	// Requests keep the town they were created in; group by it so a
	// replacement always serves the request's own town
	byTown := make(map[string][]*domain.Request)
	for _, req := range held {
		if req.Status != domain.StatusPending || req.CollectorID != deactivated.ID {
			res.Skipped++
			continue
		}
		town := req.UserTown
		if town == "" {
			town = deactivated.Town
		}
		byTown[town] = append(byTown[town], req)
	}
	towns := make([]string, 0, len(byTown))
	for t := range byTown {
		towns = append(towns, t)
	}
	sort.Strings(towns)

	now := e.deps.now()
	for _, town := range towns {
		reqs := byTown[town]
		pool, err := e.deps.Collectors.FindActiveByTown(ctx, town, deactivated.ID)
		if err != nil {
			log.Error("failed to load replacement collectors", zap.String("request_town", town), zap.Error(err))
			for _, r := range reqs {
				res.fail(r.ID, err)
			}
			continue
		}
		res.Collectors += len(pool)

		patches := make([]repository.RequestPatch, 0, len(reqs))
		if len(pool) == 0 {
			log.Info("no other active collectors, clearing assignment",
				zap.String("request_town", town), zap.Int("requests", len(reqs)))
			for _, req := range reqs {
				patches = append(patches, repository.ClearAssignmentPatch(req.ID))
			}
			committed := commitIsolated(ctx, e.deps.Requests, patches, &res, "clear_assignment", log)
			metrics.AssignmentsClearedTotal.Add(float64(len(committed)))
			continue
		}

		replacement := e.deps.picker().Pick(pool)
		log.Info("selected replacement collector",
			zap.String("new_collector_id", replacement.ID), zap.Int("candidates", len(pool)), zap.String("request_town", town))

		byID := make(map[string]*domain.Request, len(reqs))
		for _, req := range reqs {
			patches = append(patches, repository.HandoverPatch(req.ID, replacement, now))
			byID[req.ID] = req
		}
		committed := commitIsolated(ctx, e.deps.Requests, patches, &res, "handover", log)
		if len(committed) == 0 {
			continue
		}
		metrics.RequestsReassignedTotal.WithLabelValues("collector_deactivated").Add(float64(len(committed)))

		if e.deps.Notifier.Push(ctx, replacement.ID, replacement.FCMToken, batchAssignedPush(town, pickRequests(byID, committed))) {
			res.Notified++
		}
	}
	return res, res.Err()
}

// SweepDue hands every pending request whose pickup date has passed to a
// different active collector in its town and pushes the pickup date out by
// the buffer. Requests with no alternative collector are left for the next
// sweep or for the missed-request sweeper.
func (e *ReassignmentEngine) SweepDue(ctx context.Context) (Result, error) {
	var res Result
	now := e.deps.now()

	due, err := e.deps.Requests.FindDuePending(ctx, now)
	if err != nil {
		return res, fmt.Errorf("find due requests: %w", err)
	}
	res.Found = len(due)
	if len(due) == 0 {
		e.log.Debug("no due pickup requests")
		return res, nil
	}

	type planned struct {
		req        *domain.Request
		collector  *domain.Collector
		pickupDate time.Time
	}
	pools := make(map[string][]*domain.Collector)
	var plans []planned
	var patches []repository.RequestPatch

	for _, req := range due {
		req := req
		var p *planned
		err := isolate(func() error {
			if req.Status != domain.StatusPending {
				return nil
			}
			if req.UserTown == "" {
				return errNoTown
			}
			pool, ok := pools[req.UserTown]
			if !ok {
				all, err := e.deps.Collectors.FindActiveByTown(ctx, req.UserTown, "")
				if err != nil {
					return fmt.Errorf("find collectors in %s: %w", req.UserTown, err)
				}
				pools[req.UserTown] = all
				pool = all
			}
			candidates := withoutCollector(pool, req.CollectorID)
			if len(candidates) == 0 {
				return nil
			}
			c := e.deps.picker().Pick(candidates)
			p = &planned{req: req, collector: c, pickupDate: AddHours(req.PickupDate, e.bufferHours)}
			return nil
		})
		switch {
		case err != nil:
			e.log.Error("cannot plan reassignment", zap.String("request_id", req.ID), zap.Error(err))
			metrics.DocumentErrorsTotal.WithLabelValues("due_reassign").Inc()
			res.fail(req.ID, err)
		case p == nil:
			e.log.Info("no other active collector for due request", zap.String("request_id", req.ID), zap.String("town", req.UserTown))
			res.Skipped++
		default:
			plans = append(plans, *p)
			patches = append(patches, repository.DueReassignPatch(req.ID, p.collector, p.pickupDate, now))
		}
	}

	committed := commitIsolated(ctx, e.deps.Requests, patches, &res, "due_reassign", e.log)
	metrics.RequestsReassignedTotal.WithLabelValues("due_date").Add(float64(len(committed)))

	done := make(map[string]bool, len(committed))
	for _, p := range committed {
		done[p.RequestID] = true
	}
	for _, p := range plans {
		if !done[p.req.ID] {
			continue
		}
		e.log.Info("due request reassigned",
			zap.String("request_id", p.req.ID), zap.String("new_collector_id", p.collector.ID), zap.Time("pickup_date", p.pickupDate))
		if e.deps.Notifier.Push(ctx, p.collector.ID, p.collector.FCMToken, reassignedPush(p.req, p.pickupDate)) {
			res.Notified++
		}
	}
	return res, res.Err()
}
