package usecase

import (
	"fmt"
	"time"

	"pickup-backend/internal/notification"
	notifdomain "pickup-backend/internal/notification/domain"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/pkg/fcm"
)

const dateLayout = "Jan 2, 2006"

func assignedPush(req *domain.Request) fcm.NotificationData {
	n := fcm.NotificationData{
		Title: "📦 New Pickup Assigned",
		Body:  fmt.Sprintf("You have a new pickup request from %s in %s.", req.UserName, req.UserTown),
		Data: map[string]string{
			"type":      notifdomain.TypePickupAssigned,
			"requestId": req.ID,
		},
	}
	if req.IsEmergency {
		n.Title = "🚨 EMERGENCY Pickup Assigned"
		n.Body = fmt.Sprintf("🚨 EMERGENCY: %s needs urgent pickup in %s!", req.UserName, req.UserTown)
		n = n.Urgent()
	}
	return n
}

// batchAssignedPush summarizes several requests handed to one collector.
// A single request gets the regular per-request message.
func batchAssignedPush(town string, reqs []*domain.Request) fcm.NotificationData {
	if len(reqs) == 1 {
		return assignedPush(reqs[0])
	}
	n := fcm.NotificationData{
		Title: "📦 New Pickups Assigned",
		Body:  fmt.Sprintf("You have %d new pickup requests in %s.", len(reqs), town),
		Data: map[string]string{
			"type":  notifdomain.TypePickupAssigned,
			"count": fmt.Sprintf("%d", len(reqs)),
		},
	}
	for _, r := range reqs {
		if r.IsEmergency {
			n.Title = "🚨 New Pickups Assigned (includes EMERGENCY)"
			return n.Urgent()
		}
	}
	return n
}

func reassignedPush(req *domain.Request, pickupDate time.Time) fcm.NotificationData {
	n := fcm.NotificationData{
		Title: "🔄 Pickup Reassigned",
		Body: fmt.Sprintf("A pickup from %s in %s was reassigned to you for %s.",
			req.UserName, req.UserTown, pickupDate.Format("15:04")),
		Data: map[string]string{
			"type":      notifdomain.TypePickupReassigned,
			"requestId": req.ID,
		},
	}
	if req.IsEmergency {
		n = n.Urgent()
	}
	return n
}

func reminderPush(req *domain.Request) fcm.NotificationData {
	return fcm.NotificationData{
		Title: "⏰ Upcoming Pickup Reminder",
		Body:  fmt.Sprintf("You have a pickup scheduled at %s in %s.", req.PickupDate.Format("15:04"), req.UserTown),
		Data: map[string]string{
			"type":      notifdomain.TypePickupReminder,
			"requestId": req.ID,
		},
	}
}

func missedUserMessage(req *domain.Request) notification.Message {
	body := fmt.Sprintf("Your pickup request scheduled for %s was not completed. You can reschedule or request a refund.",
		req.PickupDate.Format(dateLayout))
	return notification.Message{
		Type: notifdomain.TypeMissedPickup,
		Push: fcm.NotificationData{
			Title: "⚠️ Pickup Missed",
			Body:  body,
			Data: map[string]string{
				"type":      notifdomain.TypeMissedPickup,
				"requestId": req.ID,
				"action":    "reschedule",
			},
		},
		Title: "⚠️ Pickup Request Missed",
		Body:  body,
		Data: map[string]string{
			"pickupRequestId": req.ID,
			"collectorId":     req.CollectorID,
			"collectorName":   req.CollectorName,
			"userTown":        req.UserTown,
			"pickupDate":      req.PickupDate.Format(time.RFC3339),
			"action":          "reschedule",
		},
	}
}

func missedCollectorMessage(req *domain.Request) notification.Message {
	body := fmt.Sprintf("You missed a pickup request from %s in %s scheduled for %s. Please contact the user to reschedule.",
		req.UserName, req.UserTown, req.PickupDate.Format(dateLayout))
	return notification.Message{
		Type: notifdomain.TypeMissedPickupCollector,
		Push: fcm.NotificationData{
			Title: "⚠️ Missed Pickup Alert",
			Body:  body,
			Data: map[string]string{
				"type":      notifdomain.TypeMissedPickupCollector,
				"requestId": req.ID,
				"action":    "contact_user",
			},
		},
		Title: "⚠️ Missed Pickup Alert",
		Body:  body,
		Data: map[string]string{
			"pickupRequestId": req.ID,
			"userId":          req.UserID,
			"userName":        req.UserName,
			"userTown":        req.UserTown,
			"pickupDate":      req.PickupDate.Format(time.RFC3339),
			"action":          "contact_user",
		},
	}
}

func statusPush(req *domain.Request) (fcm.NotificationData, bool) {
	switch req.Status {
	case domain.StatusAccepted:
		return fcm.NotificationData{
			Title: "✅ Pickup Accepted",
			Body:  "Your pickup request was accepted by a collector!",
			Data:  map[string]string{"type": notifdomain.TypePickupAccepted, "requestId": req.ID},
		}, true
	case domain.StatusInProgress:
		return fcm.NotificationData{
			Title: "🚛 Pickup In Progress",
			Body:  "Your pickup is on the way! You can now track your collector.",
			Data:  map[string]string{"type": notifdomain.TypePickupInProgress, "requestId": req.ID},
		}, true
	}
	return fcm.NotificationData{}, false
}

func chatPush(msg *domain.ChatMessage) fcm.NotificationData {
	body := msg.Text
	if body == "" {
		body = "You received a new message"
	}
	return fcm.NotificationData{
		Title: "💬 New Message",
		Body:  body,
		Data:  map[string]string{"type": notifdomain.TypeChatMessage, "chatId": msg.ChatID},
	}
}
