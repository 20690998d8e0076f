// Package store persists chat message history.
package store

import (
	"context"
	"time"

	"github.com/effective-security/xlog"

	"github.com/agentis-ai/agentis/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/agentis-ai/agentis", "store")

// MessageStore keeps the message history of a chat. The chat ID is taken
// from the context, see chatmodel.WithChatContext.
type MessageStore interface {
	// Messages returns the history of the chat in the context.
	Messages(ctx context.Context) []llms.Message
	// Add appends messages to the history of the chat in the context.
	Add(ctx context.Context, msgs ...llms.Message) error
	// Reset removes the history of the chat in the context.
	Reset(ctx context.Context) error
}

// ChatInfo describes a stored chat.
type ChatInfo struct {
	ChatID    string         `json:"chat_id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	Messages []llms.Message `json:"messages,omitempty"`
}

// MessageStoreManager manages stored chats beyond a single conversation.
type MessageStoreManager interface {
	MessageStore

	// UpdateChat creates or updates the metadata of the chat in the context.
	UpdateChat(ctx context.Context, title string, metadata map[string]any) error
	// GetChatInfo returns the chat info with messages.
	GetChatInfo(ctx context.Context, chatID string) (*ChatInfo, error)
	// ListChats returns the stored chat IDs.
	ListChats(ctx context.Context) ([]string, error)
	// Cleanup removes chats not updated for olderThan, returning the number
	// of deleted chats.
	Cleanup(ctx context.Context, olderThan time.Duration) (uint32, error)
}
