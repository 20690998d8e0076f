// Package chatmodel carries the per-chat context and the typed output
// contracts shared by agents, tools and stores.
package chatmodel

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

// ErrInvalidChatContext is returned when the context does not carry a chat.
var ErrInvalidChatContext = errors.New("invalid chat context")

// ChatContext is the context for a chat session.
// It carries the chat ID, immutable application data supplied by the host
// application (available to dependency-injected tools), and mutable metadata.
type ChatContext interface {
	GetChatID() string
	// AppData returns immutable app data
	AppData() any
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type chatContext struct {
	chatID   string
	metadata sync.Map
	appData  any
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) AppData() any {
	return c.appData
}

func (c *chatContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *chatContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

// NewChatContext creates a chat context. An empty chatID is replaced with a
// generated one.
func NewChatContext(chatID string, appData any) ChatContext {
	return &chatContext{
		chatID:  values.StringsCoalesce(chatID, NewChatID()),
		appData: appData,
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value.
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// GetChatContext retrieves the ChatContext from the context.
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v
	}
	return nil
}

// GetChatID retrieves the chat ID from the provided context,
// or ErrInvalidChatContext when the context does not carry a chat.
func GetChatID(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v.GetChatID(), nil
	}
	return "", errors.WithStack(ErrInvalidChatContext)
}

// SetChatID ensures the context carries a chat with the given ID,
// creating a new chat context when necessary.
func SetChatID(ctx context.Context, chatID string) context.Context {
	if v := GetChatContext(ctx); v != nil && (chatID == "" || v.GetChatID() == chatID) {
		return ctx
	}
	return WithChatContext(ctx, NewChatContext(chatID, nil))
}

// AppDataAs returns the chat application data when it is of type T.
func AppDataAs[T any](ctx context.Context) (T, bool) {
	var zero T
	cc := GetChatContext(ctx)
	if cc == nil {
		return zero, false
	}
	v, ok := cc.AppData().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// NewChatID generates a new chat ID.
func NewChatID() string {
	return uuid.NewString()
}
