package usecase

import (
	"context"
	"errors"
	"testing"

	notifdomain "pickup-backend/internal/notification/domain"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() *fixture {
	f := newFixture(nil)
	f.deps.Chats = f.store.Chats()
	f.collector("c1", "Accra", true)
	f.store.PutUser(domain.User{ID: "u1", Name: "Ama", FCMToken: "tok-u1"})
	f.store.PutChat(domain.Chat{ID: "chat1", UserID: "u1", CollectorID: "c1"})
	return f
}

func TestChatNotifier_HandleChatMessageCreated(t *testing.T) {
	tests := []struct {
		name        string
		msg         domain.ChatMessage
		wantTo      string
		wantBody    string
		wantSkipped int
	}{
		{
			name:     "user writes to collector",
			msg:      domain.ChatMessage{ChatID: "chat1", SenderID: "u1", Text: "I left the bags by the gate"},
			wantTo:   "c1",
			wantBody: "I left the bags by the gate",
		},
		{
			name:     "collector writes to user",
			msg:      domain.ChatMessage{ChatID: "chat1", SenderID: "c1", Text: "On my way"},
			wantTo:   "u1",
			wantBody: "On my way",
		},
		{
			name:     "empty text gets a default body",
			msg:      domain.ChatMessage{ChatID: "chat1", SenderID: "c1"},
			wantTo:   "u1",
			wantBody: "You received a new message",
		},
		{
			name:        "sender outside the chat",
			msg:         domain.ChatMessage{ChatID: "chat1", SenderID: "c9", Text: "hello"},
			wantSkipped: 1,
		},
		{
			name:        "unknown chat",
			msg:         domain.ChatMessage{ChatID: "missing", SenderID: "u1", Text: "hello"},
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture()
			msg := tt.msg

			res, err := NewChatNotifier(f.deps).HandleChatMessageCreated(context.Background(), &msg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkipped, res.Skipped)

			if tt.wantTo == "" {
				assert.Zero(t, f.notifier.pushCount())
				return
			}
			pushes := f.notifier.pushesTo(tt.wantTo)
			require.Len(t, pushes, 1)
			assert.Equal(t, 1, f.notifier.pushCount())
			assert.Equal(t, "💬 New Message", pushes[0].data.Title)
			assert.Equal(t, tt.wantBody, pushes[0].data.Body)
			assert.Equal(t, notifdomain.TypeChatMessage, pushes[0].data.Data["type"])
			assert.Equal(t, 1, res.Notified)
		})
	}
}

func TestChatNotifier_ReceiverWithoutToken(t *testing.T) {
	f := newChatFixture()
	f.store.PutUser(domain.User{ID: "u1", Name: "Ama"})

	res, err := NewChatNotifier(f.deps).HandleChatMessageCreated(context.Background(),
		&domain.ChatMessage{ChatID: "chat1", SenderID: "c1", Text: "On my way"})
	require.NoError(t, err)
	assert.Zero(t, res.Notified)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, f.notifier.pushCount())
}

type brokenChats struct{}

func (brokenChats) FindByID(context.Context, string) (*domain.Chat, error) {
	return nil, errors.New("deadline exceeded")
}

func TestChatNotifier_StoreError(t *testing.T) {
	f := newChatFixture()
	var chats repository.ChatRepository = brokenChats{}
	f.deps.Chats = chats

	_, err := NewChatNotifier(f.deps).HandleChatMessageCreated(context.Background(),
		&domain.ChatMessage{ChatID: "chat1", SenderID: "u1", Text: "hi"})
	assert.Error(t, err)
}

func TestChat_Receiver(t *testing.T) {
	chat := &domain.Chat{ID: "chat1", UserID: "u1", CollectorID: "c1"}

	id, toCollector, ok := chat.Receiver("u1")
	assert.True(t, ok)
	assert.True(t, toCollector)
	assert.Equal(t, "c1", id)

	id, toCollector, ok = chat.Receiver("c1")
	assert.True(t, ok)
	assert.False(t, toCollector)
	assert.Equal(t, "u1", id)

	_, _, ok = chat.Receiver("")
	assert.False(t, ok)
	_, _, ok = chat.Receiver("x")
	assert.False(t, ok)
}
