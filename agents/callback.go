package agents

import (
	"context"
	"fmt"
	"io"

	"github.com/effective-security/xlog"

	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/tools"
)

// NoopCallback does nothing.
type NoopCallback struct{}

func NewNoopCallback() *NoopCallback {
	return &NoopCallback{}
}

var _ Callback = (*NoopCallback)(nil)

func (l *NoopCallback) OnAgentStart(ctx context.Context, agent IAgent, input string) {}
func (l *NoopCallback) OnAgentEnd(ctx context.Context, agent IAgent, input string, resp *llms.ContentResponse, messages []llms.Message) {
}
func (l *NoopCallback) OnAgentError(ctx context.Context, agent IAgent, input string, err error, messages []llms.Message) {
}
func (l *NoopCallback) OnAgentLLMCallStart(ctx context.Context, agent IAgent, llm llms.Model, messages []llms.Message) {
}
func (l *NoopCallback) OnAgentLLMCallEnd(ctx context.Context, agent IAgent, llm llms.Model, resp *llms.ContentResponse) {
}
func (l *NoopCallback) OnAgentLLMParseError(ctx context.Context, agent IAgent, input string, result string, err error) {
}
func (l *NoopCallback) OnToolNotFound(ctx context.Context, agent IAgent, tool string)      {}
func (l *NoopCallback) OnChatMessage(ctx context.Context, from, to string, message string) {}
func (l *NoopCallback) OnToolStart(ctx context.Context, tool tools.ITool, agent string, input string) {
}
func (l *NoopCallback) OnToolEnd(ctx context.Context, tool tools.ITool, agent string, input string, output string) {
}
func (l *NoopCallback) OnToolError(ctx context.Context, tool tools.ITool, agent string, input string, err error) {
}

// PrinterCallback is a callback handler that prints to the Writer.
type PrinterCallback struct {
	NoopCallback
	Out io.Writer
}

func NewPrinterCallback(out io.Writer) *PrinterCallback {
	return &PrinterCallback{Out: out}
}

var _ Callback = (*PrinterCallback)(nil)

func (l *PrinterCallback) OnAgentStart(ctx context.Context, agent IAgent, input string) {
	fmt.Fprintf(l.Out, "Agent Start: %s\n", agent.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *PrinterCallback) OnAgentEnd(ctx context.Context, agent IAgent, input string, resp *llms.ContentResponse, messages []llms.Message) {
	fmt.Fprintf(l.Out, "Agent End: %s\n", agent.Name())
	for _, choice := range resp.Choices {
		if choice.Content != "" {
			fmt.Fprintln(l.Out, choice.Content)
		}
	}
}

func (l *PrinterCallback) OnAgentError(ctx context.Context, agent IAgent, input string, err error, messages []llms.Message) {
	fmt.Fprintf(l.Out, "Agent Error: %s: %s\n", agent.Name(), err.Error())
}

func (l *PrinterCallback) OnChatMessage(ctx context.Context, from, to string, message string) {
	fmt.Fprintf(l.Out, "%s (to %s):\n%s\n\n", from, to, message)
}

func (l *PrinterCallback) OnToolStart(ctx context.Context, tool tools.ITool, agent string, input string) {
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *PrinterCallback) OnToolEnd(ctx context.Context, tool tools.ITool, agent string, input string, output string) {
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Output: %s\n", output)
}

func (l *PrinterCallback) OnToolError(ctx context.Context, tool tools.ITool, agent string, input string, err error) {
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

func (l *PrinterCallback) OnToolNotFound(ctx context.Context, agent IAgent, tool string) {
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", tool)
}

// PackageLoggerCallback is a callback handler that prints to the logger.
type PackageLoggerCallback struct {
	NoopCallback
	logger *xlog.PackageLogger
}

func NewPackageLoggerCallback(logger *xlog.PackageLogger) *PackageLoggerCallback {
	return &PackageLoggerCallback{logger: logger}
}

var _ Callback = (*PackageLoggerCallback)(nil)

func (l *PackageLoggerCallback) OnAgentStart(ctx context.Context, agent IAgent, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "agent_start",
		"agent", agent.Name(),
		"input", input,
	)
}

func (l *PackageLoggerCallback) OnAgentEnd(ctx context.Context, agent IAgent, input string, resp *llms.ContentResponse, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "agent_end",
		"agent", agent.Name())
	for _, choice := range resp.Choices {
		if choice.Content != "" {
			l.logger.ContextKV(ctx, xlog.DEBUG, "result", choice.Content)
		}
	}
}

func (l *PackageLoggerCallback) OnAgentError(ctx context.Context, agent IAgent, input string, err error, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "agent_error",
		"agent", agent.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnChatMessage(ctx context.Context, from, to string, message string) {
	l.logger.KV(xlog.DEBUG,
		"event", "chat_message",
		"from", from,
		"to", to,
		"message", message,
	)
}

func (l *PackageLoggerCallback) OnToolStart(ctx context.Context, tool tools.ITool, agent string, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"agent", agent,
		"input", input,
	)
}

func (l *PackageLoggerCallback) OnToolEnd(ctx context.Context, tool tools.ITool, agent string, input string, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
		"agent", agent,
		"output", output,
	)
}

func (l *PackageLoggerCallback) OnToolError(ctx context.Context, tool tools.ITool, agent string, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool.Name(),
		"agent", agent,
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnToolNotFound(ctx context.Context, agent IAgent, tool string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"agent", agent.Name(),
		"tool", tool,
	)
}
