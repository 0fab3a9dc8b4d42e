package trigger

import (
	"fmt"

	"pickup-backend/internal/pickup/domain"
)

// Event is one named trigger delivered to the engines
type Event interface {
	Name() string
}

// SweepKind selects which periodic pass a ScheduledSweep runs
type SweepKind string

const (
	SweepUnassigned  SweepKind = "unassigned"
	SweepDueDate     SweepKind = "due_date"
	SweepReminder    SweepKind = "reminder"
	SweepMarketplace SweepKind = "marketplace_expiry"
	SweepMissed      SweepKind = "missed"
)

// SweepKinds lists every sweep in the order the scheduler registers them
var SweepKinds = []SweepKind{SweepUnassigned, SweepDueDate, SweepReminder, SweepMarketplace, SweepMissed}

// ParseSweepKind validates a sweep name from configuration or a URL
func ParseSweepKind(s string) (SweepKind, error) {
	for _, k := range SweepKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sweep kind %q", s)
}

type RequestCreated struct {
	Request *domain.Request
}

type RequestUpdated struct {
	Before *domain.Request
	After  *domain.Request
}

type CollectorActivated struct {
	Collector *domain.Collector
}

type CollectorDeactivated struct {
	Collector *domain.Collector
}

type ChatMessageCreated struct {
	Message *domain.ChatMessage
}

type ScheduledSweep struct {
	Kind SweepKind
}

func (RequestCreated) Name() string       { return "request_created" }
func (RequestUpdated) Name() string       { return "request_updated" }
func (CollectorActivated) Name() string   { return "collector_activated" }
func (CollectorDeactivated) Name() string { return "collector_deactivated" }
func (ChatMessageCreated) Name() string   { return "chat_message_created" }
func (e ScheduledSweep) Name() string     { return "sweep_" + string(e.Kind) }

// CollectorUpdated translates a collector document change into an
// activation or deactivation event. It returns nil when isActive did not flip.
func CollectorUpdated(before, after *domain.Collector) Event {
	if before == nil || after == nil || before.IsActive == after.IsActive {
		return nil
	}
	if after.IsActive {
		return CollectorActivated{Collector: after}
	}
	return CollectorDeactivated{Collector: after}
}
