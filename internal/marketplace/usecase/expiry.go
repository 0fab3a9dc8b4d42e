package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pickup-backend/internal/marketplace/domain"
	"pickup-backend/internal/marketplace/repository"
	"pickup-backend/internal/notification"
	notifdomain "pickup-backend/internal/notification/domain"
	pickuprepo "pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/fcm"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

// Notifier delivers a push and records its in-app counterpart
type Notifier interface {
	Notify(ctx context.Context, to notification.Recipient, m notification.Message) notification.Outcome
}

// DeletedItem summarizes an item removed by a sweep
type DeletedItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	SoldAt      *time.Time `json:"soldAt"`
	DeleteAfter *time.Time `json:"deleteAfter"`
}

// Result summarizes one expiry sweep
type Result struct {
	Found    int
	Deleted  []DeletedItem
	Notified int
	Failed   map[string]error
}

// Err joins the per-item failures, or returns nil when there were none
func (r Result) Err() error {
	var errs []error
	for id, err := range r.Failed {
		errs = append(errs, fmt.Errorf("item %s: %w", id, err))
	}
	return errors.Join(errs...)
}

// Counts renders the result for JSON summaries
func (r Result) Counts() map[string]int {
	return map[string]int{
		"found":    r.Found,
		"deleted":  len(r.Deleted),
		"notified": r.Notified,
		"failed":   len(r.Failed),
	}
}

// ExpirySweeper hard-deletes sold and claimed listings once their
// deleteAfter time has passed and tells the seller and buyer
type ExpirySweeper struct {
	items      repository.ItemRepository
	users      pickuprepo.UserRepository
	collectors pickuprepo.CollectorRepository
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

// NewExpirySweeper creates an ExpirySweeper. Sellers are looked up among
// users first and collectors second.
func NewExpirySweeper(items repository.ItemRepository, users pickuprepo.UserRepository, collectors pickuprepo.CollectorRepository, notifier Notifier, log *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		items:      items,
		users:      users,
		collectors: collectors,
		notifier:   notifier,
		log:        log.Named("marketplace"),
		now:        time.Now,
	}
}

// WithClock replaces the sweeper's time source
func (s *ExpirySweeper) WithClock(now func() time.Time) *ExpirySweeper {
	s.now = now
	return s
}

func (s *ExpirySweeper) Sweep(ctx context.Context) (Result, error) {
	res := Result{Failed: map[string]error{}}
	now := s.now()

	expired, err := s.items.FindExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("find expired marketplace items: %w", err)
	}
	res.Found = len(expired)
	s.log.Info("found sold items ready for deletion", zap.Int("count", len(expired)), zap.Time("now", now))
	if len(expired) == 0 {
		return res, nil
	}

	ids := make([]string, 0, len(expired))
	for _, item := range expired {
		ids = append(ids, item.ID)
	}

	deleted := expired
	if err := s.items.DeleteItems(ctx, ids); err != nil {
		s.log.Warn("batch delete rejected, retrying items individually", zap.Int("size", len(ids)), zap.Error(err))
		deleted = deleted[:0:0]
		for _, item := range expired {
			if err := s.items.DeleteItems(ctx, []string{item.ID}); err != nil {
				s.log.Error("item delete failed", zap.String("item_id", item.ID), zap.Error(err))
				metrics.DocumentErrorsTotal.WithLabelValues("marketplace_delete").Inc()
				res.Failed[item.ID] = err
				continue
			}
			deleted = append(deleted, item)
		}
	}
	metrics.MarketplaceItemsDeletedTotal.Add(float64(len(deleted)))

	for _, item := range deleted {
		s.log.Info("deleted sold item",
			zap.String("item_id", item.ID), zap.String("name", item.Name), zap.Timep("sold_at", item.SoldAt))
		res.Deleted = append(res.Deleted, DeletedItem{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			SoldAt:      item.SoldAt,
			DeleteAfter: item.DeleteAfter,
		})
		res.Notified += s.notify(ctx, item)
	}
	return res, res.Err()
}

func (s *ExpirySweeper) notify(ctx context.Context, item *domain.Item) int {
	delivered := 0
	if item.OwnerID != "" {
		if seller, ok := s.findSeller(ctx, item.OwnerID); ok {
			if s.notifier.Notify(ctx, seller, sellerMessage(item)).Pushed {
				delivered++
			}
		}
	}
	if item.BuyerID != "" {
		buyer, err := s.users.FindByID(ctx, item.BuyerID)
		if err != nil {
			s.log.Info("buyer not found", zap.String("item_id", item.ID), zap.String("buyer_id", item.BuyerID), zap.Error(err))
			return delivered
		}
		to := notification.Recipient{Kind: notifdomain.RecipientUser, ID: buyer.ID, Token: buyer.FCMToken}
		if s.notifier.Notify(ctx, to, buyerMessage(item)).Pushed {
			delivered++
		}
	}
	return delivered
}

func (s *ExpirySweeper) findSeller(ctx context.Context, id string) (notification.Recipient, bool) {
	if u, err := s.users.FindByID(ctx, id); err == nil {
		return notification.Recipient{Kind: notifdomain.RecipientUser, ID: u.ID, Token: u.FCMToken}, true
	} else if !errors.Is(err, pickuprepo.ErrNotFound) {
		s.log.Warn("failed to load seller", zap.String("owner_id", id), zap.Error(err))
		return notification.Recipient{}, false
	}
	c, err := s.collectors.FindByID(ctx, id)
	if err != nil {
		s.log.Info("seller not found", zap.String("owner_id", id), zap.Error(err))
		return notification.Recipient{}, false
	}
	return notification.Recipient{Kind: notifdomain.RecipientCollector, ID: c.ID, Token: c.FCMToken}, true
}

func formatPrice(p float64) string {
	return "GHS " + strconv.FormatFloat(p, 'f', -1, 64)
}

func sellerMessage(item *domain.Item) notification.Message {
	return notification.Message{
		Type: notifdomain.TypeItemDeleted,
		Push: fcm.NotificationData{
			Title: "🗑️ Item Deleted",
			Body:  fmt.Sprintf("Your sold item \"%s\" has been automatically removed from the marketplace after 24 hours.", item.Name),
			Data: map[string]string{
				"type":     notifdomain.TypeItemDeleted,
				"itemId":   item.ID,
				"itemName": item.Name,
				"action":   "view_sales_history",
			},
		},
		Title: "🗑️ Item Automatically Deleted",
		Body: fmt.Sprintf("Your sold item \"%s\" (%s) has been automatically removed from the marketplace after 24 hours.",
			item.Name, formatPrice(item.Price)),
		Data: map[string]string{
			"itemId":    item.ID,
			"itemName":  item.Name,
			"itemPrice": strconv.FormatFloat(item.Price, 'f', -1, 64),
			"buyerId":   item.BuyerID,
			"action":    "view_sales_history",
		},
	}
}

func buyerMessage(item *domain.Item) notification.Message {
	return notification.Message{
		Type: notifdomain.TypePurchasedItemRemoved,
		Push: fcm.NotificationData{
			Title: "📦 Purchase Item Removed",
			Body:  fmt.Sprintf("The item \"%s\" you purchased has been removed from the marketplace.", item.Name),
			Data: map[string]string{
				"type":     notifdomain.TypePurchasedItemRemoved,
				"itemId":   item.ID,
				"itemName": item.Name,
				"action":   "view_purchase_history",
			},
		},
		Title: "📦 Purchased Item Removed",
		Body: fmt.Sprintf("The item \"%s\" (%s) you purchased has been removed from the marketplace.",
			item.Name, formatPrice(item.Price)),
		Data: map[string]string{
			"itemId":    item.ID,
			"itemName":  item.Name,
			"itemPrice": strconv.FormatFloat(item.Price, 'f', -1, 64),
			"sellerId":  item.OwnerID,
			"action":    "view_purchase_history",
		},
	}
}
