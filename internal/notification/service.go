package notification

import (
	"context"
	"time"

	"pickup-backend/internal/notification/domain"
	"pickup-backend/internal/notification/repository"
	"pickup-backend/pkg/fcm"
	"pickup-backend/pkg/metrics"

	"go.uber.org/zap"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_sender.go -package=mocks

// Sender delivers a push message to one device token
type Sender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.NotificationData) error
}

// Recipient identifies who a notification is for and how to reach them
type Recipient struct {
	Kind  domain.RecipientKind
	ID    string
	Token string // empty when the recipient has no registered device
}

// Message is one logical notification. Push is what the device shows; Title
// and Body are stored on the in-app record and may be worded differently.
type Message struct {
	Type  string
	Push  fcm.NotificationData
	Title string
	Body  string
	Data  map[string]string
}

// Outcome reports what happened to a single Notify call
type Outcome struct {
	Pushed   bool
	Recorded bool
}

// Service sends push notifications and records their in-app counterpart.
// Nothing here returns an error to the caller: delivery is best-effort and
// must not roll back the state change that caused it.
type Service struct {
	sender Sender
	repo   repository.NotificationRepository
	log    *zap.Logger
	now    func() time.Time
}

// NewService creates a notification service. sender may be nil when push
// delivery is not configured; repo may be nil to skip in-app records.
func NewService(sender Sender, repo repository.NotificationRepository, log *zap.Logger) *Service {
	return &Service{
		sender: sender,
		repo:   repo,
		log:    log.Named("notification"),
		now:    time.Now,
	}
}

// Push sends a push notification only. It reports whether the message was
// handed to the dispatcher successfully.
func (s *Service) Push(ctx context.Context, recipientID, token string, n fcm.NotificationData) bool {
	if token == "" {
		s.log.Info("no FCM token, skipping push", zap.String("recipient_id", recipientID))
		metrics.NotificationsTotal.WithLabelValues("no_token").Inc()
		return false
	}
	if s.sender == nil {
		s.log.Warn("FCM sender not configured, skipping push", zap.String("recipient_id", recipientID))
		metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
		return false
	}
	if err := s.sender.SendToDevice(ctx, token, n); err != nil {
		s.log.Error("push failed", zap.String("recipient_id", recipientID), zap.Error(err))
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return false
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return true
}

// Notify pushes m to the recipient and stores the in-app record. The record
// is written even when the push cannot be delivered.
func (s *Service) Notify(ctx context.Context, to Recipient, m Message) Outcome {
	var out Outcome
	if to.ID == "" {
		return out
	}

	push := m.Push
	if push.Data == nil {
		push.Data = map[string]string{"type": m.Type}
	}
	out.Pushed = s.Push(ctx, to.ID, to.Token, push)

	if s.repo == nil {
		return out
	}
	record := &domain.Notification{
		Type:      m.Type,
		Title:     m.Title,
		Message:   m.Body,
		Data:      m.Data,
		IsRead:    false,
		CreatedAt: s.now(),
	}
	if to.Kind == domain.RecipientCollector {
		record.CollectorID = to.ID
	} else {
		record.UserID = to.ID
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.log.Error("failed to store in-app notification",
			zap.String("recipient_id", to.ID), zap.String("type", m.Type), zap.Error(err))
		return out
	}
	out.Recorded = true
	return out
}
