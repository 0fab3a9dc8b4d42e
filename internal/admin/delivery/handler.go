package delivery

import (
	"context"
	"fmt"
	"net/http"

	mpusecase "pickup-backend/internal/marketplace/usecase"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/internal/pickup/usecase"
	"pickup-backend/internal/trigger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const debugSampleSize = 5

type Assigner interface {
	AssignUnassigned(ctx context.Context, town string) (usecase.Result, error)
}

type MarketplaceSweeper interface {
	Sweep(ctx context.Context) (mpusecase.Result, error)
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, ev trigger.Event) (map[string]int, error)
}

// AdminHandler serves the manual and debugging endpoints
type AdminHandler struct {
	assigner    Assigner
	requests    repository.RequestRepository
	collectors  repository.CollectorRepository
	marketplace MarketplaceSweeper
	dispatcher  EventDispatcher
	log         *zap.Logger
}

func NewAdminHandler(assigner Assigner, requests repository.RequestRepository, collectors repository.CollectorRepository, marketplace MarketplaceSweeper, dispatcher EventDispatcher, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		assigner:    assigner,
		requests:    requests,
		collectors:  collectors,
		marketplace: marketplace,
		dispatcher:  dispatcher,
		log:         log.Named("admin"),
	}
}

// Assign deals the pending unassigned requests of one town round-robin to
// its active collectors
func (h *AdminHandler) Assign(c *gin.Context) {
	town := c.Query("town")
	if town == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Town parameter is required"})
		return
	}

	h.log.Info("manual assignment triggered", zap.String("town", town))
	res, err := h.assigner.AssignUnassigned(c.Request.Context(), town)
	if err != nil {
		h.log.Error("manual assignment failed", zap.String("town", town), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false, "assigned": res.Updated})
		return
	}

	switch {
	case res.Found == 0:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("No pending requests found in %s", town)})
	case res.Collectors == 0:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("No active collectors found in %s", town)})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":    fmt.Sprintf("Successfully assigned %d requests in %s", res.Updated, town),
			"assigned":   res.Updated,
			"collectors": res.Collectors,
		})
	}
}

// Debug returns a small sample of collectors and requests
func (h *AdminHandler) Debug(c *gin.Context) {
	ctx := c.Request.Context()

	collectors, err := h.collectors.List(ctx, debugSampleSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false})
		return
	}
	requests, err := h.requests.List(ctx, debugSampleSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false})
		return
	}

	sampleCollectors := make([]gin.H, 0, len(collectors))
	for _, col := range collectors {
		sampleCollectors = append(sampleCollectors, gin.H{
			"id":       col.ID,
			"name":     col.Name,
			"town":     col.Town,
			"isActive": col.IsActive,
			"hasFCM":   col.FCMToken != "",
		})
	}
	sampleRequests := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		sampleRequests = append(sampleRequests, gin.H{
			"id":            req.ID,
			"status":        req.Status,
			"userTown":      req.UserTown,
			"collectorId":   req.CollectorID,
			"collectorName": req.CollectorName,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Debug data sample",
		"collectors":       len(collectors),
		"requests":         len(requests),
		"sampleCollectors": sampleCollectors,
		"sampleRequests":   sampleRequests,
	})
}

// ExpireMarketplace runs the marketplace expiry sweep now
func (h *AdminHandler) ExpireMarketplace(c *gin.Context) {
	res, err := h.marketplace.Sweep(c.Request.Context())
	deleted := res.Deleted
	if deleted == nil {
		deleted = []mpusecase.DeletedItem{}
	}
	if err != nil {
		h.log.Error("manual marketplace expiry failed", zap.Int("deleted", len(deleted)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        err.Error(),
			"success":      false,
			"deletedCount": len(deleted),
			"deletedItems": deleted,
		})
		return
	}

	if res.Found == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No sold items found for deletion", "deletedCount": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"deletedCount": len(deleted),
		"deletedItems": deleted,
		"message":      fmt.Sprintf("Successfully deleted %d sold marketplace items", len(deleted)),
	})
}

// RunSweep runs one scheduled sweep immediately
func (h *AdminHandler) RunSweep(c *gin.Context) {
	kind, err := trigger.ParseSweepKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := h.dispatcher.Dispatch(c.Request.Context(), trigger.ScheduledSweep{Kind: kind})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "success": false, "counts": counts})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Sweep %s completed", kind),
		"counts":  counts,
	})
}
