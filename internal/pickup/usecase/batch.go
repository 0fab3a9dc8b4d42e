package usecase

import (
	"context"
	"fmt"

	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

// isolate runs fn, turning a panic into an error so one malformed document
// cannot abort the rest of a pass
func isolate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// commitIsolated writes patches as one atomic batch. When the store rejects
// the batch, each patch is retried on its own so the failure stays with the
// document that caused it. It returns the patches that are now durable and
// records every failure on res.
func commitIsolated(ctx context.Context, repo repository.RequestRepository, patches []repository.RequestPatch, res *Result, op string, log *zap.Logger) []repository.RequestPatch {
	if len(patches) == 0 {
		return nil
	}

	err := repo.ApplyPatches(ctx, patches)
	if err == nil {
		res.Updated += len(patches)
		return patches
	}
	log.Warn("batch write rejected, retrying documents individually",
		zap.String("operation", op), zap.Int("size", len(patches)), zap.Error(err))

	committed := make([]repository.RequestPatch, 0, len(patches))
	for _, p := range patches {
		if err := repo.ApplyPatches(ctx, []repository.RequestPatch{p}); err != nil {
			log.Error("document write failed",
				zap.String("operation", op), zap.String("request_id", p.RequestID), zap.Error(err))
			metrics.DocumentErrorsTotal.WithLabelValues(op).Inc()
			res.fail(p.RequestID, err)
			continue
		}
		committed = append(committed, p)
	}
	res.Updated += len(committed)
	return committed
}
