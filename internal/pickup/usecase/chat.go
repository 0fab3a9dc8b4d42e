package usecase

import (
	"context"
	"errors"
	"fmt"

	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"

	"go.uber.org/zap"
)

// ChatNotifier pushes new chat messages to the other participant
type ChatNotifier struct {
	deps Deps
	log  *zap.Logger
}

func NewChatNotifier(deps Deps) *ChatNotifier {
	return &ChatNotifier{deps: deps, log: deps.logger("chat")}
}

// HandleChatMessageCreated looks up the chat of msg and pushes the message
// to whichever of the owner or the collector did not send it. Messages from
// senders outside the chat are skipped.
func (n *ChatNotifier) HandleChatMessageCreated(ctx context.Context, msg *domain.ChatMessage) (Result, error) {
	var res Result
	if msg == nil || msg.ChatID == "" || n.deps.Chats == nil {
		return res, nil
	}
	res.Found = 1
	log := n.log.With(zap.String("chat_id", msg.ChatID), zap.String("sender_id", msg.SenderID))

	chat, err := n.deps.Chats.FindByID(ctx, msg.ChatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("chat not found")
			res.Skipped++
			return res, nil
		}
		return res, fmt.Errorf("load chat %s: %w", msg.ChatID, err)
	}

	receiverID, toCollector, ok := chat.Receiver(msg.SenderID)
	if !ok {
		log.Warn("sender is not part of this chat")
		res.Skipped++
		return res, nil
	}

	var token string
	if toCollector {
		c, err := n.deps.Collectors.FindByID(ctx, receiverID)
		if err == nil {
			token = c.FCMToken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, fmt.Errorf("load collector %s: %w", receiverID, err)
		}
	} else {
		u, err := n.deps.Users.FindByID(ctx, receiverID)
		if err == nil {
			token = u.FCMToken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, fmt.Errorf("load user %s: %w", receiverID, err)
		}
	}

	if n.deps.Notifier.Push(ctx, receiverID, token, chatPush(msg)) {
		res.Notified++
	} else {
		res.Skipped++
	}
	return res, nil
}
