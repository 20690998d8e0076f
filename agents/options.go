package agents

import (
	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/encoding"
	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/store"
)

// Limits for a single assistant call.
const (
	DefaultMaxRetries     = 3
	DefaultMaxToolCalls   = 32
	DefaultMaxMessages    = 100
	DefaultMaxContentSize = 256 * 1024
)

// CallInput is the input of one assistant call.
type CallInput struct {
	// Input is the user message.
	Input string
	// Messages are extra messages appended after the input.
	Messages []llms.Message
	// PromptInputs are merged into the system prompt template values.
	PromptInputs map[string]any
	// Options override the assistant config for this call.
	Options []Option
}

// Option is a function that modifies the agent Config.
type Option func(*Config)

// Config holds the agent configuration.
type Config struct {
	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// StopWords is a list of words to stop on.
	StopWords    []string
	stopWordsSet bool

	// TopP is the cumulative probability for top-p sampling.
	TopP    float64
	toppSet bool

	// Seed is a seed for deterministic sampling.
	Seed    int
	seedSet bool

	// Tools is a list of tool definitions sent to the model.
	Tools    []llms.Tool
	toolsSet bool

	// ToolChoice is "none", "auto" (the default), or a specific tool.
	ToolChoice    any
	toolChoiceSet bool

	JSONMode bool

	// ResponseFormat is the structured output schema, when supported.
	ResponseFormat *llms.ResponseFormat

	//
	// Below are the options for the agent, not related to an LLM call.
	//

	// CallbackHandler receives lifecycle notifications.
	CallbackHandler Callback

	// Store persists the chat history. By default no store is used.
	Store store.MessageStore

	// Executor owns tool execution. When nil, the assistant executes its
	// own registered tools.
	Executor ToolExecutor

	PromptInput        map[string]any
	Examples           chatmodel.FewShotExamples
	Mode               encoding.Mode
	SkipMessageHistory bool
	SkipToolHistory    bool

	// MaxLength caps the total content size sent to the model, in bytes.
	MaxLength int
	// MaxMessages caps the message history length.
	MaxMessages int
	// MaxToolCalls caps the tool calls executed in one assistant call.
	MaxToolCalls int
}

// NewConfig returns a config with defaults applied.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Mode:        encoding.ModeDefault,
		JSONMode:    true,
		MaxMessages: DefaultMaxMessages,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Apply returns a copy of the config with the options applied.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// GetCallOptions converts the config into LLM call options.
func (c *Config) GetCallOptions(options ...Option) []llms.CallOption {
	cfg := c.Apply(options...)

	var callOptions []llms.CallOption
	if cfg.modelSet {
		callOptions = append(callOptions, llms.WithModel(cfg.Model))
	}
	if cfg.maxTokensSet {
		callOptions = append(callOptions, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.temperatureSet {
		callOptions = append(callOptions, llms.WithTemperature(cfg.Temperature))
	}
	if cfg.stopWordsSet {
		callOptions = append(callOptions, llms.WithStopWords(cfg.StopWords))
	}
	if cfg.toppSet {
		callOptions = append(callOptions, llms.WithTopP(cfg.TopP))
	}
	if cfg.seedSet {
		callOptions = append(callOptions, llms.WithSeed(cfg.Seed))
	}
	if cfg.toolsSet {
		callOptions = append(callOptions, llms.WithTools(cfg.Tools))
	}
	if cfg.toolChoiceSet {
		callOptions = append(callOptions, llms.WithToolChoice(cfg.ToolChoice))
	}
	if cfg.ResponseFormat != nil {
		callOptions = append(callOptions, llms.WithResponseFormat(cfg.ResponseFormat))
	} else if cfg.JSONMode {
		callOptions = append(callOptions, llms.WithJSONMode())
	}

	return callOptions
}

// WithMode is an option that allows to specify the encoding mode.
func WithMode(mode encoding.Mode) Option {
	return func(o *Config) {
		o.Mode = mode
		o.JSONMode = mode == encoding.ModeJSON ||
			mode == encoding.ModeJSONSchema ||
			mode == encoding.ModeJSONSchemaStrict
	}
}

// WithExamples specifies few-shot examples for the system prompt.
func WithExamples(examples chatmodel.FewShotExamples) Option {
	return func(o *Config) {
		o.Examples = examples
	}
}

// WithStore specifies the message store for the chat history.
func WithStore(s store.MessageStore) Option {
	return func(o *Config) {
		o.Store = s
	}
}

// WithToolExecutor delegates tool execution to the given executor.
func WithToolExecutor(executor ToolExecutor) Option {
	return func(o *Config) {
		o.Executor = executor
	}
}

// WithSkipMessageHistory skips persisting messages of this call.
func WithSkipMessageHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipMessageHistory = skip
	}
}

// WithSkipToolHistory skips persisting tool calls and their results.
func WithSkipToolHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipToolHistory = skip
	}
}

// WithPromptInput specifies the system prompt input values.
func WithPromptInput(input map[string]any) Option {
	return func(o *Config) {
		o.PromptInput = input
	}
}

// WithJSONMode specifies whether to use JSON mode.
func WithJSONMode(jsonMode bool) Option {
	return func(o *Config) {
		o.JSONMode = jsonMode
	}
}

// WithModel is an option for an LLM call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for an LLM call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for an LLM call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithTopP will add an option to use top-p sampling.
func WithTopP(topP float64) Option {
	return func(o *Config) {
		o.TopP = topP
		o.toppSet = true
	}
}

// WithSeed will add an option to use deterministic sampling.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithStopWords sets the stop words for an LLM call.
func WithStopWords(stopWords []string) Option {
	return func(o *Config) {
		o.StopWords = stopWords
		o.stopWordsSet = true
	}
}

// WithCallback allows setting a custom callback handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// WithTools sets the tool definitions for an LLM call.
func WithTools(tools []llms.Tool) Option {
	return func(o *Config) {
		o.Tools = tools
		o.toolsSet = true
	}
}

// WithTool adds a tool definition for an LLM call.
func WithTool(tool llms.Tool) Option {
	return func(o *Config) {
		o.Tools = append(o.Tools, tool)
		o.toolsSet = true
	}
}

// WithToolChoice sets the choice of tool to use.
func WithToolChoice(choice any) Option {
	return func(o *Config) {
		o.ToolChoice = choice
		o.toolChoiceSet = true
	}
}

// WithMaxLength caps the total content size sent to the model.
func WithMaxLength(maxLength int) Option {
	return func(o *Config) {
		o.MaxLength = maxLength
	}
}

// WithMaxMessages caps the message history length.
func WithMaxMessages(maxMessages int) Option {
	return func(o *Config) {
		o.MaxMessages = maxMessages
	}
}

// WithMaxToolCalls caps the tool calls executed in one assistant call.
func WithMaxToolCalls(maxToolCalls int) Option {
	return func(o *Config) {
		o.MaxToolCalls = maxToolCalls
	}
}
