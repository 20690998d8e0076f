package agents

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/pkg/llmutils"
	"github.com/agentis-ai/agentis/pkg/metricskey"
)

// DefaultMaxTurns limits the number of proxy turns in a chat.
const DefaultMaxTurns = 10

// Usage accumulates token counts over a chat.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ChatResult is the transcript of a two-agent chat.
type ChatResult struct {
	ChatID   string
	Messages []llms.Message
	Summary  string
	Usage    Usage
}

// ChatConfig configures a two-agent chat.
type ChatConfig struct {
	MaxTurns int
	AppData  any
	Options  []Option
}

// ChatOption modifies the chat configuration.
type ChatOption func(*ChatConfig)

// WithMaxTurns limits the number of proxy turns.
func WithMaxTurns(n int) ChatOption {
	return func(c *ChatConfig) {
		c.MaxTurns = n
	}
}

// WithAppData attaches application data to the chat context, available to
// dependency-injected tools.
func WithAppData(appData any) ChatOption {
	return func(c *ChatConfig) {
		c.AppData = appData
	}
}

// WithCallOptions passes per-call options to the assistant on every turn.
func WithCallOptions(opts ...Option) ChatOption {
	return func(c *ChatConfig) {
		c.Options = append(c.Options, opts...)
	}
}

// InitiateChat drives a conversation between the proxy and the assistant,
// starting with message. The proxy executes tool calls the assistant
// delegates to it and produces follow-up turns until its termination
// predicate matches, it has nothing further to say, or MaxTurns is reached.
func InitiateChat(ctx context.Context, proxy *UserProxy, assistant IAssistant, message string, opts ...ChatOption) (*ChatResult, error) {
	started := time.Now()

	cfg := &ChatConfig{
		MaxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		chatCtx = chatmodel.NewChatContext("", cfg.AppData)
		ctx = chatmodel.WithChatContext(ctx, chatCtx)
	} else if cfg.AppData != nil {
		// keep the chat ID so store-backed chats stay continuous
		chatCtx = chatmodel.NewChatContext(chatCtx.GetChatID(), cfg.AppData)
		ctx = chatmodel.WithChatContext(ctx, chatCtx)
	}
	chatID := chatCtx.GetChatID()

	defer metricskey.PerfChatRun.MeasureSince(started, assistant.Name())

	callOpts := append([]Option{WithToolExecutor(proxy)}, cfg.Options...)
	callback := callbackFromOptions(cfg.Options)

	ret := &ChatResult{
		ChatID: chatID,
	}

	input := message
	for turn := 0; ; turn++ {
		if turn >= cfg.MaxTurns {
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "max_turns_reached",
				"chat_id", chatID,
				"turns", turn,
			)
			break
		}

		if callback != nil {
			callback.OnChatMessage(ctx, proxy.Name(), assistant.Name(), input)
		}
		ret.Messages = append(ret.Messages, llms.MessageFromTextParts(llms.RoleHuman, input))

		resp, err := assistant.Call(ctx, &CallInput{
			Input:   input,
			Options: callOpts,
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "chat %s: assistant %s failed", chatID, assistant.Name())
		}

		in, out, total := llmutils.CountTokens(resp)
		ret.Usage.InputTokens += in
		ret.Usage.OutputTokens += out
		ret.Usage.TotalTokens += total

		reply := ""
		if len(resp.Choices) > 0 {
			reply = resp.Choices[0].Content
		}
		if callback != nil {
			callback.OnChatMessage(ctx, assistant.Name(), proxy.Name(), reply)
		}
		ret.Messages = append(ret.Messages, llms.MessageFromTextParts(llms.RoleAI, reply))
		ret.Summary = chatSummary(reply)

		if proxy.IsTerminal(reply) {
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "chat_terminated",
				"chat_id", chatID,
				"turns", turn+1,
				"summary", slices.StringUpto(ret.Summary, 64),
			)
			break
		}

		next, ok, err := proxy.GenerateReply(ctx, reply)
		if err != nil {
			return nil, errors.WithMessagef(err, "chat %s: proxy %s failed", chatID, proxy.Name())
		}
		if !ok {
			break
		}
		input = next
	}

	return ret, nil
}

// chatSummary strips the termination sentinel from the final reply.
func chatSummary(reply string) string {
	return strings.TrimSpace(strings.ReplaceAll(reply, "TERMINATE", ""))
}

// callbackFromOptions extracts the callback handler, when one is configured.
func callbackFromOptions(opts []Option) Callback {
	cfg := NewConfig(opts...)
	return cfg.CallbackHandler
}
