package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pickup-backend/internal/pickup/domain"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Envelope types published by the document-change relay
const (
	TypeRequestCreated   = "request.created"
	TypeRequestUpdated   = "request.updated"
	TypeCollectorUpdated = "collector.updated"
	TypeChatMessage      = "chat.message_created"
	TypeSweep            = "sweep"
)

// Envelope is the JSON body of a trigger message. Before and After hold a
// request or a collector depending on Type; Message carries a new chat message.
type Envelope struct {
	Type      string              `json:"type"`
	Request   *domain.Request     `json:"request,omitempty"`
	Collector *domain.Collector   `json:"collector,omitempty"`
	Message   *domain.ChatMessage `json:"message,omitempty"`
	Before    json.RawMessage     `json:"before,omitempty"`
	After     json.RawMessage     `json:"after,omitempty"`
	Kind      string              `json:"kind,omitempty"`
}

// DecodeEnvelope turns a message body into an Event. A nil Event with a nil
// error means the message carries nothing to act on.
func DecodeEnvelope(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeRequestCreated:
		if env.Request == nil {
			return nil, fmt.Errorf("%s without request", env.Type)
		}
		return RequestCreated{Request: env.Request}, nil

	case TypeRequestUpdated:
		var before, after domain.Request
		if err := decodePair(env, &before, &after); err != nil {
			return nil, err
		}
		return RequestUpdated{Before: &before, After: &after}, nil

	case TypeCollectorUpdated:
		var before, after domain.Collector
		if err := decodePair(env, &before, &after); err != nil {
			return nil, err
		}
		if after.ID == "" && env.Collector != nil {
			after.ID = env.Collector.ID
		}
		if ev := CollectorUpdated(&before, &after); ev != nil {
			return ev, nil
		}
		return nil, nil

	case TypeChatMessage:
		if env.Message == nil || env.Message.ChatID == "" {
			return nil, fmt.Errorf("%s without message or chat id", env.Type)
		}
		return ChatMessageCreated{Message: env.Message}, nil

	case TypeSweep:
		kind, err := ParseSweepKind(env.Kind)
		if err != nil {
			return nil, err
		}
		return ScheduledSweep{Kind: kind}, nil
	}
	return nil, fmt.Errorf("unknown envelope type %q", env.Type)
}

func decodePair(env Envelope, before, after interface{}) error {
	if len(env.Before) == 0 || len(env.After) == 0 {
		return fmt.Errorf("%s needs before and after", env.Type)
	}
	if err := json.Unmarshal(env.Before, before); err != nil {
		return fmt.Errorf("decode before: %w", err)
	}
	if err := json.Unmarshal(env.After, after); err != nil {
		return fmt.Errorf("decode after: %w", err)
	}
	return nil
}

// Subscriber receives document-change events from a Pub/Sub subscription
// and hands them to the dispatcher
type Subscriber struct {
	client     *pubsub.Client
	dispatcher *Dispatcher
	topicName  string
	subName    string
	log        *zap.Logger
}

func NewSubscriber(ctx context.Context, projectID, topicName, subName, credentialsFile string, dispatcher *Dispatcher, log *zap.Logger) (*Subscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Subscriber{
		client:     client,
		dispatcher: dispatcher,
		topicName:  topicName,
		subName:    subName,
		log:        log.Named("pubsub"),
	}, nil
}

// Start blocks receiving messages until ctx is cancelled. Every message is
// acked, including ones that fail to decode or dispatch.
func (s *Subscriber) Start(ctx context.Context) error {
	s.log.Info("starting subscriber", zap.String("topic", s.topicName), zap.String("subscription", s.subName))

	sub, err := s.ensureSubscription(ctx)
	if err != nil {
		return err
	}

	s.log.Info("listening for messages", zap.String("subscription", s.subName))
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg.ID, msg.Data)
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("receive on %s: %w", s.subName, err)
	}
	return nil
}

// Close releases the underlying client
func (s *Subscriber) Close() error {
	return s.client.Close()
}

func (s *Subscriber) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := s.client.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %s: %w", s.subName, err)
	}
	if exists {
		return sub, nil
	}

	topic := s.client.Topic(s.topicName)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", s.topicName, err)
	}
	if !topicExists {
		return nil, fmt.Errorf("topic %s does not exist, cannot create subscription", s.topicName)
	}

	sub, err = s.client.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 60 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription %s: %w", s.subName, err)
	}
	s.log.Info("created subscription", zap.String("subscription", s.subName))
	return sub, nil
}

func (s *Subscriber) handleMessage(ctx context.Context, id string, data []byte) {
	ev, err := DecodeEnvelope(data)
	if err != nil {
		s.log.Warn("dropping undecodable message", zap.String("message_id", id), zap.Error(err))
		return
	}
	if ev == nil {
		s.log.Debug("message needs no action", zap.String("message_id", id))
		return
	}
	s.dispatcher.Handle(ctx, ev)
}
