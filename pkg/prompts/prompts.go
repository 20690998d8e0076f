// Package prompts provides prompt templates for agent system prompts.
package prompts

import (
	"github.com/cockroachdb/errors"
	lcprompts "github.com/tmc/langchaingo/prompts"

	"github.com/agentis-ai/agentis/pkg/llms"
)

// FormatPrompter formats a prompt from the given input values.
type FormatPrompter interface {
	FormatPrompt(values map[string]any) (llms.PromptValue, error)
	GetInputVariables() []string
}

// StringPromptValue is a prompt value that is a string.
type StringPromptValue string

var _ llms.PromptValue = StringPromptValue("")

func (v StringPromptValue) String() string {
	return string(v)
}

// Messages returns a single system message with the prompt text.
func (v StringPromptValue) Messages() []llms.Message {
	return []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, string(v)),
	}
}

// PromptTemplate is a template for a prompt, rendered with Go template
// syntax by default.
type PromptTemplate struct {
	// Template is the prompt template.
	Template string
	// InputVariables is a list of variable names the prompt template expects.
	InputVariables []string
	// TemplateFormat is the format of the prompt template.
	TemplateFormat lcprompts.TemplateFormat
	// PartialVariables represents a map of variable names to fixed values.
	PartialVariables map[string]any
}

var _ FormatPrompter = PromptTemplate{}

// NewPromptTemplate returns a new prompt template using Go template syntax.
func NewPromptTemplate(template string, inputVars []string) PromptTemplate {
	return PromptTemplate{
		Template:       template,
		InputVariables: inputVars,
		TemplateFormat: lcprompts.TemplateFormatGoTemplate,
	}
}

// FormatPrompt formats the prompt template and returns a string prompt value.
func (p PromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	resolved := make(map[string]any, len(p.PartialVariables)+len(values))
	for k, v := range p.PartialVariables {
		resolved[k] = v
	}
	for k, v := range values {
		resolved[k] = v
	}
	for _, name := range p.InputVariables {
		if _, ok := resolved[name]; !ok {
			return nil, errors.Newf("missing prompt input variable: %q", name)
		}
	}

	rendered, err := lcprompts.RenderTemplate(p.Template, p.TemplateFormat, resolved)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to render prompt template")
	}
	return StringPromptValue(rendered), nil
}

// GetInputVariables returns the input variables the prompt expects.
func (p PromptTemplate) GetInputVariables() []string {
	return p.InputVariables
}
