package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/pkg/prompts"
)

func Test_StringPromptValue(t *testing.T) {
	v := prompts.StringPromptValue("You are a helpful assistant.")
	assert.Equal(t, "You are a helpful assistant.", v.String())

	msgs := v.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, llms.RoleSystem, msgs[0].Role)
}

func Test_PromptTemplate(t *testing.T) {
	p := prompts.NewPromptTemplate("You are {{.role}}. Answer about {{.topic}}.", []string{"role", "topic"})
	assert.Equal(t, []string{"role", "topic"}, p.GetInputVariables())

	val, err := p.FormatPrompt(map[string]any{"role": "a geographer", "topic": "rivers"})
	require.NoError(t, err)
	assert.Equal(t, "You are a geographer. Answer about rivers.", val.String())
}

func Test_PromptTemplate_MissingVariable(t *testing.T) {
	p := prompts.NewPromptTemplate("Hello {{.name}}", []string{"name"})
	_, err := p.FormatPrompt(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing prompt input variable: "name"`)
}

func Test_PromptTemplate_PartialVariables(t *testing.T) {
	p := prompts.NewPromptTemplate("{{.greeting}}, {{.name}}!", []string{"name"})
	p.PartialVariables = map[string]any{"greeting": "Hi"}

	val, err := p.FormatPrompt(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hi, Ada!", val.String())

	// user input overrides partials
	val, err = p.FormatPrompt(map[string]any{"name": "Ada", "greeting": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", val.String())
}

func Test_ChatPromptValue(t *testing.T) {
	v := prompts.ChatPromptValue{
		llms.MessageFromTextParts(llms.RoleSystem, "be brief"),
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	}
	assert.Len(t, v.Messages(), 2)
	assert.Equal(t, "SYSTEM: be brief\nHUMAN: hello\n", v.String())
}
