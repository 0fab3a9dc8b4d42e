package domain

import "time"

// ItemStatus is the sale state of a marketplace listing
type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemSold      ItemStatus = "sold"
	ItemClaimed   ItemStatus = "claimed"
)

// ExpirableStatuses are the statuses an item is removed from once its
// deleteAfter time has passed
var ExpirableStatuses = []ItemStatus{ItemSold, ItemClaimed}

// Item is a listing on the recycled-goods marketplace
type Item struct {
	ID          string     `json:"id" firestore:"-" gorm:"primaryKey"`
	Name        string     `json:"name" firestore:"name"`
	Price       float64    `json:"price" firestore:"price"`
	OwnerID     string     `json:"ownerId" firestore:"ownerId" gorm:"index"`
	BuyerID     string     `json:"buyerId,omitempty" firestore:"buyerId"`
	Status      ItemStatus `json:"status" firestore:"status" gorm:"index"`
	SoldAt      *time.Time `json:"soldAt,omitempty" firestore:"soldAt"`
	DeleteAfter *time.Time `json:"deleteAfter,omitempty" firestore:"deleteAfter" gorm:"index"`
}

// TableName specifies the table name for GORM
func (Item) TableName() string {
	return "marketplace_items"
}

// Expired reports whether the item is sold or claimed and due for removal at now
func (i *Item) Expired(now time.Time) bool {
	if i.DeleteAfter == nil || i.DeleteAfter.After(now) {
		return false
	}
	for _, s := range ExpirableStatuses {
		if i.Status == s {
			return true
		}
	}
	return false
}
