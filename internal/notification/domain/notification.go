package domain

import "time"

// RecipientKind tells which collection a recipient id belongs to
type RecipientKind string

const (
	RecipientUser      RecipientKind = "user"
	RecipientCollector RecipientKind = "collector"
)

// Notification types shared by push data payloads and in-app records
const (
	TypePickupAssigned        = "pickup_assigned"
	TypePickupReassigned      = "pickup_reassigned"
	TypePickupReminder        = "pickup_reminder"
	TypePickupAccepted        = "pickup_accepted"
	TypePickupInProgress      = "pickup_in_progress"
	TypeMissedPickup          = "missed_pickup"
	TypeMissedPickupCollector = "missed_pickup_collector"
	TypeItemDeleted           = "item_deleted"
	TypePurchasedItemRemoved  = "purchased_item_removed"
	TypeChatMessage           = "chat_message"
)

// Notification is the durable in-app record created alongside a push, so a
// failed delivery does not lose the event
type Notification struct {
	ID          string            `json:"id" firestore:"-" gorm:"primaryKey"`
	UserID      string            `json:"userId,omitempty" firestore:"userId,omitempty" gorm:"index"`
	CollectorID string            `json:"collectorId,omitempty" firestore:"collectorId,omitempty" gorm:"index"`
	Type        string            `json:"type" firestore:"type"`
	Title       string            `json:"title" firestore:"title"`
	Message     string            `json:"message" firestore:"message"`
	Data        map[string]string `json:"data,omitempty" firestore:"data" gorm:"serializer:json"`
	IsRead      bool              `json:"isRead" firestore:"isRead"`
	CreatedAt   time.Time         `json:"createdAt" firestore:"createdAt"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// RecipientID returns the user or collector the notification is addressed to
func (n *Notification) RecipientID() string {
	if n.CollectorID != "" {
		return n.CollectorID
	}
	return n.UserID
}
