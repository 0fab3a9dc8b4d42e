package domain

// Chat is the conversation between a request owner and a collector
type Chat struct {
	ID          string `json:"id" firestore:"-" gorm:"primaryKey"`
	UserID      string `json:"userId" firestore:"userId"`
	CollectorID string `json:"collectorId" firestore:"collectorId"`
}

// TableName specifies the table name for GORM
func (Chat) TableName() string {
	return "chats"
}

// ChatMessage is one message posted to a chat
type ChatMessage struct {
	ID       string `json:"id"`
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// Receiver returns the other participant of the chat. toCollector reports
// whether that participant is the collector; ok is false when senderID is
// not part of the chat.
func (c *Chat) Receiver(senderID string) (id string, toCollector bool, ok bool) {
	switch {
	case senderID == "":
		return "", false, false
	case senderID == c.UserID:
		return c.CollectorID, true, c.CollectorID != ""
	case senderID == c.CollectorID:
		return c.UserID, false, c.UserID != ""
	}
	return "", false, false
}
