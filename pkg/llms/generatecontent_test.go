package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageGetContent(t *testing.T) {
	t.Parallel()
	msg := MessageFromTextParts(RoleHuman, "hello", "world")
	assert.Equal(t, "hello\nworld\n", msg.GetContent())

	msg = MessageFromToolCalls(RoleAI, ToolCall{
		ID:           "1",
		Type:         "function",
		FunctionCall: &FunctionCall{Name: "t", Arguments: "{}"},
	})
	assert.Contains(t, msg.GetContent(), "Tool Call: ")

	msg = MessageFromToolResponse(RoleTool, ToolCallResponse{ToolCallID: "1", Name: "t", Content: "ok"})
	assert.Contains(t, msg.GetContent(), "Response: ")
}

func TestProviderCapabilities(t *testing.T) {
	t.Parallel()
	assert.True(t, ProviderOpenAI.Supports(CapabilityJSONSchemaStrict))
	assert.True(t, ProviderAzure.Supports(CapabilityJSONSchema))
	assert.True(t, ProviderAnthropic.Supports(CapabilityFunctionCalling))
	assert.False(t, ProviderAnthropic.Supports(CapabilityJSONSchema))
	assert.False(t, ProviderAnthropic.Supports(CapabilityJSONSchemaStrict))
	assert.False(t, ProviderType("UNKNOWN").Supports(CapabilityText))
}
