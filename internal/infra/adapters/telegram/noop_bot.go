package telegram

import (
	"context"
	"sync"

	"telegram-pix-packs/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBot)(nil)

// NoopBot records outgoing messages in memory; used by tests and dev mode.
type NoopBot struct {
	mu       sync.Mutex
	Messages []SentMessage
}

type SentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

func NewNoopBot() *NoopBot { return &NoopBot{} }

func (b *NoopBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, SentMessage{ChatID: chatID, Text: text})
	return nil
}

func (b *NoopBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, SentMessage{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

// Sent returns a copy of everything delivered so far.
func (b *NoopBot) Sent() []SentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]SentMessage, len(b.Messages))
	copy(out, b.Messages)
	return out
}
