package domain

import "time"

// RequestStatus represents where a pickup request is in its lifecycle
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAccepted   RequestStatus = "accepted"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusMissed     RequestStatus = "missed"
)

// OpenStatuses are the non-terminal statuses a request can be missed from
var OpenStatuses = []RequestStatus{StatusPending, StatusAccepted, StatusInProgress}

const (
	UnknownCollectorName  = "Unknown Collector"
	MissedReasonDayPassed = "Pickup day has passed without completion"
)

// rank orders the forward lifecycle; missed sits outside it.
var rank = map[RequestStatus]int{
	StatusPending:    0,
	StatusAccepted:   1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// IsTerminal reports whether no further transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusMissed
}

// IsOpen reports whether s is one of pending, accepted or in_progress.
func (s RequestStatus) IsOpen() bool {
	for _, open := range OpenStatuses {
		if s == open {
			return true
		}
	}
	return false
}

// CanTransition reports whether a request may move from one status to another.
// Forward moves along pending→accepted→in_progress→completed are allowed, as is
// missed from any open status. Nothing leaves a terminal status.
func CanTransition(from, to RequestStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusMissed {
		return from.IsOpen()
	}
	fromRank, okFrom := rank[from]
	toRank, okTo := rank[to]
	return okFrom && okTo && toRank > fromRank
}

// Request is a pickup request submitted by a user
type Request struct {
	ID            string        `json:"id" firestore:"-" gorm:"primaryKey"`
	Status        RequestStatus `json:"status" firestore:"status" gorm:"index;not null;default:pending"`
	UserID        string        `json:"userId" firestore:"userId" gorm:"index"`
	UserName      string        `json:"userName" firestore:"userName"`
	UserTown      string        `json:"userTown" firestore:"userTown" gorm:"index"`
	CollectorID   string        `json:"collectorId" firestore:"collectorId" gorm:"index"` // empty when unassigned
	CollectorName string        `json:"collectorName" firestore:"collectorName"`
	PickupDate    time.Time     `json:"pickupDate" firestore:"pickupDate" gorm:"index"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
	AssignedAt    *time.Time    `json:"assignedAt,omitempty" firestore:"assignedAt"`
	ReassignedAt  *time.Time    `json:"reassignedAt,omitempty" firestore:"reassignedAt"`
	MissedAt      *time.Time    `json:"missedAt,omitempty" firestore:"missedAt"`
	MissedReason  string        `json:"missedReason,omitempty" firestore:"missedReason"`
	IsEmergency   bool          `json:"isEmergency" firestore:"isEmergency"`
}

// TableName specifies the table name for GORM
func (Request) TableName() string {
	return "pickup_requests"
}

// IsAssigned reports whether a collector currently holds the request
func (r *Request) IsAssigned() bool {
	return r.CollectorID != ""
}
