// Package agents provides conversational agents: an LLM-backed assistant
// with tool calling, and a user proxy that executes tools and drives
// two-agent chats.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/effective-security/xlog"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/tools"
)

var logger = xlog.NewPackageLogger("github.com/agentis-ai/agentis", "agents")

//go:generate mockgen -destination=../mocks/mockllms/llm_mock.gen.go -package mockllms github.com/agentis-ai/agentis/pkg/llms Model

// IAgent is the common surface of chat participants.
type IAgent interface {
	// Name returns the name of the agent.
	Name() string
	// Description returns the description of the agent, to be used in the
	// prompt of other agents or LLMs. Should not exceed LLM model limit.
	Description() string
}

// IAssistant is an LLM-backed agent.
type IAssistant interface {
	IAgent

	// FormatPrompt renders the system prompt for the given inputs.
	FormatPrompt(values map[string]any) (llms.PromptValue, error)
	GetPromptInputVariables() []string

	Call(ctx context.Context, input *CallInput) (*llms.ContentResponse, error)
}

// TypeableAssistant is an assistant with a typed output.
type TypeableAssistant[O chatmodel.ContentProvider] interface {
	IAssistant
	// Run executes the assistant with the given input, parsing the final
	// response into optionalOutputType when it is not nil.
	Run(ctx context.Context, input *CallInput, optionalOutputType *O) (*llms.ContentResponse, error)
}

// ToolExecutor owns the executable side of registered tools. An assistant
// advertises tool definitions to the model and delegates execution of the
// returned tool calls to its executor.
type ToolExecutor interface {
	// GetTool returns the tool registered under name. Lookup is
	// case-insensitive.
	GetTool(name string) (tools.ITool, bool)
	// ToolNames returns the registered tool names.
	ToolNames() []string
}

// Callback receives agent lifecycle notifications.
type Callback interface {
	tools.Callback
	OnAgentStart(ctx context.Context, agent IAgent, input string)
	OnAgentEnd(ctx context.Context, agent IAgent, input string, resp *llms.ContentResponse, messages []llms.Message)
	OnAgentError(ctx context.Context, agent IAgent, input string, err error, messages []llms.Message)
	OnAgentLLMCallStart(ctx context.Context, agent IAgent, llm llms.Model, messages []llms.Message)
	OnAgentLLMCallEnd(ctx context.Context, agent IAgent, llm llms.Model, resp *llms.ContentResponse)
	OnAgentLLMParseError(ctx context.Context, agent IAgent, input string, result string, err error)
	OnToolNotFound(ctx context.Context, agent IAgent, tool string)
	// OnChatMessage is called for every message exchanged in a two-agent
	// chat.
	OnChatMessage(ctx context.Context, from, to string, message string)
}

// GetDescriptions returns a prompt block describing the agents.
func GetDescriptions(list ...IAgent) string {
	var ts strings.Builder
	for _, item := range list {
		ts.WriteString(fmt.Sprintf("- `%s`: %s\n", item.Name(), item.Description()))
	}
	return ts.String()
}

// MapAgents indexes agents by name.
func MapAgents(list ...IAgent) map[string]IAgent {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]IAgent, len(list))
	for _, a := range list {
		m[a.Name()] = a
	}
	return m
}
