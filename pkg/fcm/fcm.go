package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Priority levels understood by Android delivery
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// APNs priorities: 5 is power-considerate, 10 is immediate
const (
	APNsPriorityNormal = "5"
	APNsPriorityHigh   = "10"
)

const (
	ChannelDefault   = "default_channel"
	ChannelEmergency = "emergency_channel"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
	log             *zap.Logger
}

// NewClient creates a new FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App, log *zap.Logger) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Info("FCM client initialized")
	return &Client{
		messagingClient: messagingClient,
		log:             log.Named("fcm"),
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title           string
	Body            string
	Data            map[string]string // Custom data payload
	AndroidPriority string            // PriorityNormal or PriorityHigh, empty means normal
	APNsPriority    string            // APNsPriorityNormal or APNsPriorityHigh, empty means normal
	ChannelID       string
}

// Urgent marks the notification for immediate delivery on a dedicated channel.
func (n NotificationData) Urgent() NotificationData {
	n.AndroidPriority = PriorityHigh
	n.APNsPriority = APNsPriorityHigh
	n.ChannelID = ChannelEmergency
	return n
}

// BuildMessage converts NotificationData into the wire message for a single token.
func BuildMessage(token string, notification NotificationData) *messaging.Message {
	androidPriority := notification.AndroidPriority
	if androidPriority == "" {
		androidPriority = PriorityNormal
	}
	apnsPriority := notification.APNsPriority
	if apnsPriority == "" {
		apnsPriority = APNsPriorityNormal
	}
	channel := notification.ChannelID
	if channel == "" {
		channel = ChannelDefault
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: channel,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": apnsPriority,
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: intPtr(1),
				},
			},
		},
	}
}

// SendToDevice sends a push notification to a specific device token
func (c *Client) SendToDevice(ctx context.Context, token string, notification NotificationData) error {
	response, err := c.messagingClient.Send(ctx, BuildMessage(token, notification))
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	c.log.Debug("message sent", zap.String("response", response))
	return nil
}

func intPtr(v int) *int { return &v }
