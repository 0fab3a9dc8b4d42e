package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/fcm"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

// AssignmentEngine matches requests that have no collector to an active
// collector in the same town.
//
// Selection policy: a newly created request gets a uniformly random pick
// among the town's active collectors; a collector that just became active
// takes every unassigned pending request in its town; the periodic and
// manual sweeps deal requests round-robin over the town's collectors in
// createdAt order.
type AssignmentEngine struct {
	deps Deps
	log  *zap.Logger
}

// NewAssignmentEngine creates an AssignmentEngine
func NewAssignmentEngine(deps Deps) *AssignmentEngine {
	return &AssignmentEngine{deps: deps, log: deps.logger("assignment")}
}

// HandleRequestCreated assigns a newly created request. Redelivery of the
// same event is a no-op once the request holds a collector.
func (e *AssignmentEngine) HandleRequestCreated(ctx context.Context, created *domain.Request) (Result, error) {
	var res Result
	log := e.log.With(zap.String("request_id", created.ID))

	if created.IsAssigned() {
		// Created with a collector already chosen by the client
		log.Info("request created with collector, notifying", zap.String("collector_id", created.CollectorID))
		res.Skipped++
		if e.notifyCollector(ctx, created.CollectorID, assignedPush(created)) {
			res.Notified++
		}
		return res, nil
	}
	if created.UserTown == "" {
		log.Info("request missing userTown, leaving unassigned")
		res.Skipped++
		return res, nil
	}

	// Re-read so a redelivered event does not overwrite a later assignment
	current, err := e.deps.Requests.FindByID(ctx, created.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("request no longer exists")
			res.Skipped++
			return res, nil
		}
		return res, fmt.Errorf("load request %s: %w", created.ID, err)
	}
	res.Found = 1
	if current.IsAssigned() || current.Status != domain.StatusPending {
		log.Info("request already handled, skipping",
			zap.String("collector_id", current.CollectorID), zap.String("status", string(current.Status)))
		res.Skipped++
		return res, nil
	}

	candidates, err := e.deps.Collectors.FindActiveByTown(ctx, current.UserTown, "")
	if err != nil {
		return res, fmt.Errorf("find collectors in %s: %w", current.UserTown, err)
	}
	res.Collectors = len(candidates)
	if len(candidates) == 0 {
		log.Info("no active collectors, request stays pending", zap.String("town", current.UserTown))
		res.Skipped++
		return res, nil
	}

	collector := e.deps.picker().Pick(candidates)
	log.Info("selected collector",
		zap.String("collector_id", collector.ID), zap.Int("candidates", len(candidates)), zap.String("town", current.UserTown))

	patch := repository.AssignPatch(current.ID, collector, e.deps.now())
	if committed := commitIsolated(ctx, e.deps.Requests, []repository.RequestPatch{patch}, &res, "assign", log); len(committed) == 0 {
		return res, res.Err()
	}
	metrics.RequestsAssignedTotal.WithLabelValues("request_created").Inc()

	if e.deps.Notifier.Push(ctx, collector.ID, collector.FCMToken, assignedPush(current)) {
		res.Notified++
	}
	return res, nil
}

// HandleCollectorActivated gives every unassigned pending request in the
// collector's town, oldest first, to that collector in one batch.
func (e *AssignmentEngine) HandleCollectorActivated(ctx context.Context, activated *domain.Collector) (Result, error) {
	var res Result
	log := e.log.With(zap.String("collector_id", activated.ID), zap.String("town", activated.Town))

	if activated.Town == "" {
		log.Info("collector missing town field")
		return res, nil
	}

	collector, err := e.deps.Collectors.FindByID(ctx, activated.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("collector no longer exists")
			return res, nil
		}
		return res, fmt.Errorf("load collector %s: %w", activated.ID, err)
	}
	if !collector.IsActive || collector.Town != activated.Town {
		log.Info("stale activation event, skipping", zap.Bool("is_active", collector.IsActive))
		return res, nil
	}
	res.Collectors = 1

	pending, err := e.deps.Requests.FindUnassignedPending(ctx, collector.Town)
	if err != nil {
		return res, fmt.Errorf("find pending requests in %s: %w", collector.Town, err)
	}
	res.Found = len(pending)
	if len(pending) == 0 {
		log.Info("no pending requests to assign")
		return res, nil
	}

	now := e.deps.now()
	patches := make([]repository.RequestPatch, 0, len(pending))
	byID := make(map[string]*domain.Request, len(pending))
	for _, req := range pending {
		if req.IsAssigned() || req.Status != domain.StatusPending {
			res.Skipped++
			continue
		}
		patches = append(patches, repository.AssignPatch(req.ID, collector, now))
		byID[req.ID] = req
	}

	committed := commitIsolated(ctx, e.deps.Requests, patches, &res, "assign", log)
	if len(committed) == 0 {
		return res, res.Err()
	}
	metrics.RequestsAssignedTotal.WithLabelValues("collector_activated").Add(float64(len(committed)))
	log.Info("assigned pending requests", zap.Int("count", len(committed)))

	if e.deps.Notifier.Push(ctx, collector.ID, collector.FCMToken, batchAssignedPush(collector.Town, pickRequests(byID, committed))) {
		res.Notified++
	}
	return res, res.Err()
}

// AssignUnassigned deals pending unassigned requests round-robin to the
// active collectors of their town. An empty town sweeps every town; each
// town is committed as its own batch so one town cannot block another.
func (e *AssignmentEngine) AssignUnassigned(ctx context.Context, town string) (Result, error) {
	var res Result
	log := e.log.With(zap.String("town", town))

	pending, err := e.deps.Requests.FindUnassignedPending(ctx, town)
	if err != nil {
		return res, fmt.Errorf("find unassigned requests: %w", err)
	}
	res.Found = len(pending)
	if len(pending) == 0 {
		log.Debug("no unassigned requests")
		return res, nil
	}

	byTown := make(map[string][]*domain.Request)
	for _, req := range pending {
		if req.UserTown == "" {
			res.Skipped++
			continue
		}
		byTown[req.UserTown] = append(byTown[req.UserTown], req)
	}
	towns := make([]string, 0, len(byTown))
	for t := range byTown {
		towns = append(towns, t)
	}
	sort.Strings(towns)

	now := e.deps.now()
	for _, t := range towns {
		reqs := byTown[t]
		collectors, err := e.deps.Collectors.FindActiveByTown(ctx, t, "")
		if err != nil {
			log.Error("failed to load collectors", zap.String("town", t), zap.Error(err))
			for _, r := range reqs {
				res.fail(r.ID, err)
			}
			continue
		}
		res.Collectors += len(collectors)
		if len(collectors) == 0 {
			log.Info("no active collectors", zap.String("town", t), zap.Int("requests", len(reqs)))
			res.Skipped += len(reqs)
			continue
		}

		patches := make([]repository.RequestPatch, 0, len(reqs))
		holder := make(map[string]*domain.Collector, len(reqs))
		byID := make(map[string]*domain.Request, len(reqs))
		for i, req := range reqs {
			c := roundRobin(i, collectors)
			patches = append(patches, repository.AssignPatch(req.ID, c, now))
			holder[req.ID] = c
			byID[req.ID] = req
		}

		committed := commitIsolated(ctx, e.deps.Requests, patches, &res, "assign", log)
		metrics.RequestsAssignedTotal.WithLabelValues("unassigned_sweep").Add(float64(len(committed)))
		log.Info("assigned requests", zap.String("town", t), zap.Int("count", len(committed)))

		// One push per collector summarizing what it received
		perCollector := make(map[string][]*domain.Request)
		for _, p := range committed {
			id := holder[p.RequestID].ID
			perCollector[id] = append(perCollector[id], byID[p.RequestID])
		}
		for _, c := range collectors {
			got := perCollector[c.ID]
			if len(got) == 0 {
				continue
			}
			if e.deps.Notifier.Push(ctx, c.ID, c.FCMToken, batchAssignedPush(t, got)) {
				res.Notified++
			}
		}
	}
	return res, res.Err()
}

func (e *AssignmentEngine) notifyCollector(ctx context.Context, collectorID string, n fcm.NotificationData) bool {
	c, err := e.deps.Collectors.FindByID(ctx, collectorID)
	if err != nil {
		e.log.Info("cannot notify collector", zap.String("collector_id", collectorID), zap.Error(err))
		return false
	}
	return e.deps.Notifier.Push(ctx, c.ID, c.FCMToken, n)
}

func pickRequests(byID map[string]*domain.Request, patches []repository.RequestPatch) []*domain.Request {
	out := make([]*domain.Request, 0, len(patches))
	for _, p := range patches {
		out = append(out, byID[p.RequestID])
	}
	return out
}
