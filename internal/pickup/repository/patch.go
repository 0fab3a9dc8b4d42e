package repository

import (
	"time"

	"pickup-backend/internal/pickup/domain"
)

// RequestPatch is a partial update of one request. Nil fields are left
// untouched; ClearAssignedAt writes a null assignedAt.
type RequestPatch struct {
	RequestID       string
	CollectorID     *string
	CollectorName   *string
	AssignedAt      *time.Time
	ClearAssignedAt bool
	ReassignedAt    *time.Time
	PickupDate      *time.Time
	Status          *domain.RequestStatus
	MissedAt        *time.Time
	MissedReason    *string
}

// AssignPatch hands an unassigned request to a collector. Status is not
// written, so a request accepted or missed in the meantime keeps its status.
func AssignPatch(requestID string, collector *domain.Collector, now time.Time) RequestPatch {
	return RequestPatch{
		RequestID:     requestID,
		CollectorID:   strPtr(collector.ID),
		CollectorName: strPtr(collector.DisplayName()),
		AssignedAt:    timePtr(now),
	}
}

// HandoverPatch moves a request held by an inactive collector to another one.
func HandoverPatch(requestID string, collector *domain.Collector, now time.Time) RequestPatch {
	return RequestPatch{
		RequestID:     requestID,
		CollectorID:   strPtr(collector.ID),
		CollectorName: strPtr(collector.DisplayName()),
		AssignedAt:    timePtr(now),
		ReassignedAt:  timePtr(now),
	}
}

// ClearAssignmentPatch leaves a request pending with no collector.
func ClearAssignmentPatch(requestID string) RequestPatch {
	return RequestPatch{
		RequestID:       requestID,
		CollectorID:     strPtr(""),
		CollectorName:   strPtr(""),
		ClearAssignedAt: true,
	}
}

// DueReassignPatch moves an overdue request to another collector and pushes
// its pickup date out.
func DueReassignPatch(requestID string, collector *domain.Collector, pickupDate, now time.Time) RequestPatch {
	return RequestPatch{
		RequestID:     requestID,
		CollectorID:   strPtr(collector.ID),
		CollectorName: strPtr(collector.DisplayName()),
		PickupDate:    timePtr(pickupDate),
		ReassignedAt:  timePtr(now),
	}
}

// MissedPatch moves a request to the terminal missed status.
func MissedPatch(requestID string, now time.Time, reason string) RequestPatch {
	status := domain.StatusMissed
	return RequestPatch{
		RequestID:    requestID,
		Status:       &status,
		MissedAt:     timePtr(now),
		MissedReason: strPtr(reason),
	}
}

// Apply copies the patched fields onto r
func (p RequestPatch) Apply(r *domain.Request) {
	if p.CollectorID != nil {
		r.CollectorID = *p.CollectorID
	}
	if p.CollectorName != nil {
		r.CollectorName = *p.CollectorName
	}
	if p.AssignedAt != nil {
		r.AssignedAt = timePtr(*p.AssignedAt)
	}
	if p.ClearAssignedAt {
		r.AssignedAt = nil
	}
	if p.ReassignedAt != nil {
		r.ReassignedAt = timePtr(*p.ReassignedAt)
	}
	if p.PickupDate != nil {
		r.PickupDate = *p.PickupDate
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.MissedAt != nil {
		r.MissedAt = timePtr(*p.MissedAt)
	}
	if p.MissedReason != nil {
		r.MissedReason = *p.MissedReason
	}
}

// Columns returns the patch as a column -> value map for SQL stores
func (p RequestPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.CollectorID != nil {
		cols["collector_id"] = *p.CollectorID
	}
	if p.CollectorName != nil {
		cols["collector_name"] = *p.CollectorName
	}
	if p.AssignedAt != nil {
		cols["assigned_at"] = *p.AssignedAt
	}
	if p.ClearAssignedAt {
		cols["assigned_at"] = nil
	}
	if p.ReassignedAt != nil {
		cols["reassigned_at"] = *p.ReassignedAt
	}
	if p.PickupDate != nil {
		cols["pickup_date"] = *p.PickupDate
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.MissedAt != nil {
		cols["missed_at"] = *p.MissedAt
	}
	if p.MissedReason != nil {
		cols["missed_reason"] = *p.MissedReason
	}
	return cols
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
