package agents

import (
	"context"
	"strings"

	"github.com/agentis-ai/agentis/tools"
)

// HumanInputFunc asks the human for the next message. Returning an empty
// string means the human has nothing to add.
type HumanInputFunc func(ctx context.Context, prompt string) (string, error)

// TerminationFunc reports whether a reply ends the conversation.
type TerminationFunc func(message string) bool

// DefaultTermination matches the conventional sentinel word.
func DefaultTermination(message string) bool {
	return strings.Contains(message, "TERMINATE")
}

// UserProxy is the non-LLM side of a two-agent chat. It owns the executable
// tool registry consulted by the assistant during its run loop, and decides
// the next user turn: a human-provided message when a HumanInputFunc is set,
// the configured auto-reply otherwise.
type UserProxy struct {
	name        string
	description string

	toolsByName map[string]tools.ITool
	toolsNames  []string
	tools       []tools.ITool

	autoReply  string
	humanInput HumanInputFunc
	isTerminal TerminationFunc
}

var _ IAgent = (*UserProxy)(nil)
var _ ToolExecutor = (*UserProxy)(nil)

// NewUserProxy creates a user proxy with the given name.
func NewUserProxy(name string) *UserProxy {
	return &UserProxy{
		name:        name,
		description: "A proxy for the user, executing tools and relaying replies.",
		toolsByName: make(map[string]tools.ITool),
		isTerminal:  DefaultTermination,
	}
}

// Name returns the name of the agent.
func (p *UserProxy) Name() string {
	return p.name
}

// Description returns the description of the agent.
func (p *UserProxy) Description() string {
	return p.description
}

// WithDescription sets the description of the agent.
func (p *UserProxy) WithDescription(description string) *UserProxy {
	p.description = description
	return p
}

// WithTools registers tools for execution. Existing tools are not replaced.
func (p *UserProxy) WithTools(list ...tools.ITool) *UserProxy {
	for _, tool := range list {
		name := tool.Name()
		// use lowercase for the key
		nameLowerCase := strings.ToLower(name)
		if p.toolsByName[nameLowerCase] == nil {
			p.toolsByName[nameLowerCase] = tool
			p.toolsNames = append(p.toolsNames, name)
			p.tools = append(p.tools, tool)
		}
	}
	return p
}

// WithAutoReply sets the message returned when no human input is configured.
func (p *UserProxy) WithAutoReply(reply string) *UserProxy {
	p.autoReply = reply
	return p
}

// WithHumanInput sets the callback used to obtain the next user message.
func (p *UserProxy) WithHumanInput(fn HumanInputFunc) *UserProxy {
	p.humanInput = fn
	return p
}

// WithTermination replaces the termination predicate.
func (p *UserProxy) WithTermination(fn TerminationFunc) *UserProxy {
	p.isTerminal = fn
	return p
}

// GetTools returns the tools the proxy executes.
func (p *UserProxy) GetTools() []tools.ITool {
	return p.tools
}

// GetTool returns the tool registered under name. Lookup is
// case-insensitive.
func (p *UserProxy) GetTool(name string) (tools.ITool, bool) {
	tool := p.toolsByName[strings.ToLower(name)]
	return tool, tool != nil
}

// ToolNames returns the registered tool names.
func (p *UserProxy) ToolNames() []string {
	return p.toolsNames
}

// IsTerminal reports whether the assistant's reply ends the conversation.
func (p *UserProxy) IsTerminal(message string) bool {
	return p.isTerminal != nil && p.isTerminal(message)
}

// GenerateReply produces the next user turn in response to the assistant's
// last message. It returns an empty reply and false when the proxy has
// nothing further to say.
func (p *UserProxy) GenerateReply(ctx context.Context, lastMessage string) (string, bool, error) {
	if p.humanInput != nil {
		reply, err := p.humanInput(ctx, lastMessage)
		if err != nil {
			return "", false, err
		}
		reply = strings.TrimSpace(reply)
		return reply, reply != "", nil
	}
	if p.autoReply != "" {
		return p.autoReply, true, nil
	}
	return "", false, nil
}
