// Package openai implements the llms.Model interface on top of the official
// OpenAI SDK, for both OpenAI and Azure OpenAI endpoints.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/agentis-ai/agentis/pkg/llms"
)

var (
	ErrEmptyResponse = errors.New("openai: no response")
	ErrMissingToken  = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
)

const DefaultMaxTokens = 16384

type LLM struct {
	client   *openai.Client
	options  *Options
	provider llms.ProviderType
}

var _ llms.Model = (*LLM)(nil)

// New creates an OpenAI chat model. If no token is provided via options, the
// API key is read from the OPENAI_API_KEY environment variable.
func New(opts ...Option) (*LLM, error) {
	options := &Options{
		Token: os.Getenv(TokenEnvVarName),
	}
	for _, opt := range opts {
		opt(options)
	}

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	provider := llms.ProviderOpenAI
	var sdkOpts []option.RequestOption
	if options.AzureAPIVersion != "" {
		provider = llms.ProviderAzure
		sdkOpts = append(sdkOpts,
			azure.WithEndpoint(options.BaseURL, options.AzureAPIVersion),
			azure.WithAPIKey(options.Token),
		)
	} else {
		sdkOpts = append(sdkOpts, option.WithAPIKey(options.Token))
		if options.BaseURL != "" {
			sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
		}
		if options.Organization != "" {
			sdkOpts = append(sdkOpts, option.WithOrganization(options.Organization))
		}
	}
	if options.HTTPClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HTTPClient))
	}

	client := openai.NewClient(sdkOpts...)
	return &LLM{
		client:   &client,
		options:  options,
		provider: provider,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.options.Model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.provider
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: o.options.Model,
	}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs, err := processMessages(messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(opts.Model),
		Messages: chatMsgs,
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	} else {
		params.MaxCompletionTokens = openai.Int(DefaultMaxTokens)
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.Seed > 0 {
		params.Seed = openai.Int(int64(opts.Seed))
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopWords,
		}
	}
	if len(opts.Tools) > 0 {
		tools, err := toTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}
	if choice, ok := opts.ToolChoice.(string); ok && choice != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(choice),
		}
	}
	if rf := responseFormat(&opts); rf != nil {
		params.ResponseFormat = *rf
	}

	result, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.WithMessage(err, "openai: failed to create chat completion")
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: fmt.Sprint(c.FinishReason),
			GenerationInfo: map[string]any{
				"InputTokens":  result.Usage.PromptTokens,
				"OutputTokens": result.Usage.CompletionTokens,
				"TotalTokens":  result.Usage.TotalTokens,
				"ID":           result.ID,
				"Index":        i,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
	}

	return &llms.ContentResponse{
		Choices: choices,
	}, nil
}

func processMessages(messages []llms.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llms.RoleSystem:
			chatMsgs = append(chatMsgs, openai.SystemMessage(msg.GetContent()))
		case llms.RoleHuman, llms.RoleGeneric:
			chatMsgs = append(chatMsgs, openai.UserMessage(msg.GetContent()))
		case llms.RoleAI:
			chatMsgs = append(chatMsgs, assistantMessage(msg))
		case llms.RoleTool:
			if len(msg.Parts) != 1 {
				return nil, errors.Errorf("openai: expected exactly one part for role %v, got %d", msg.Role, len(msg.Parts))
			}
			p, ok := msg.Parts[0].(llms.ToolCallResponse)
			if !ok {
				return nil, errors.Errorf("openai: expected part of type ToolCallResponse for role %v, got %T", msg.Role, msg.Parts[0])
			}
			chatMsgs = append(chatMsgs, openai.ToolMessage(p.Content, p.ToolCallID))
		default:
			return nil, errors.Errorf("openai: role %v not supported", msg.Role)
		}
	}
	return chatMsgs, nil
}

func assistantMessage(msg llms.Message) openai.ChatCompletionMessageParamUnion {
	toolCalls := msg.ToolCalls()
	if len(toolCalls) == 0 {
		return openai.AssistantMessage(msg.GetContent())
	}

	assistant := openai.ChatCompletionAssistantMessageParam{}
	if content := msg.GetContent(); content != "" {
		assistant.Content.OfString = openai.String(content)
	}
	for _, tc := range toolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.FunctionCall.Name,
					Arguments: tc.FunctionCall.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toTools(tools []llms.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	sdkTools := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Type != "function" || tool.Function == nil {
			return nil, errors.Errorf("openai: tool type %q not supported", tool.Type)
		}
		parameters, err := toFunctionParameters(tool.Function.Parameters)
		if err != nil {
			return nil, errors.WithMessagef(err, "openai: tool %q", tool.Function.Name)
		}
		fn := shared.FunctionDefinitionParam{
			Name:       tool.Function.Name,
			Parameters: parameters,
		}
		if tool.Function.Description != "" {
			fn.Description = openai.String(tool.Function.Description)
		}
		if tool.Function.Strict {
			fn.Strict = openai.Bool(true)
		}
		sdkTools = append(sdkTools, openai.ChatCompletionFunctionTool(fn))
	}
	return sdkTools, nil
}

// toFunctionParameters flattens a JSON schema of any supported representation
// into the SDK's parameter map.
func toFunctionParameters(params any) (shared.FunctionParameters, error) {
	switch sc := params.(type) {
	case nil:
		return shared.FunctionParameters{"type": "object"}, nil
	case map[string]any:
		return shared.FunctionParameters(sc), nil
	default:
		bs, err := json.Marshal(params)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		var m map[string]any
		if err := json.Unmarshal(bs, &m); err != nil {
			return nil, errors.WithStack(err)
		}
		return shared.FunctionParameters(m), nil
	}
}

func responseFormat(opts *llms.CallOptions) *openai.ChatCompletionNewParamsResponseFormatUnion {
	if opts.ResponseFormat != nil && opts.ResponseFormat.JSONSchema != nil {
		return &openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   opts.ResponseFormat.JSONSchema.Name,
					Strict: openai.Bool(opts.ResponseFormat.JSONSchema.Strict),
					Schema: opts.ResponseFormat.JSONSchema.Schema,
				},
			},
		}
	}
	if opts.JSONMode || (opts.ResponseFormat != nil && opts.ResponseFormat.Type == "json_object") {
		return &openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return nil
}
