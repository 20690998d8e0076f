package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agentis-ai/agentis/agents"
	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/encoding"
	"github.com/agentis-ai/agentis/mocks/mockllms"
	"github.com/agentis-ai/agentis/mocks/mocktools"
	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/pkg/prompts"
)

type testResult struct {
	Answer string `json:"answer"`
}

func (r testResult) GetContent() string {
	return r.Answer
}

func newMockLLM(ctrl *gomock.Controller) *mockllms.MockModel {
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("mock-model").AnyTimes()
	return mockLLM
}

func chatContext() context.Context {
	chatCtx := chatmodel.NewChatContext(chatmodel.NewChatID(), nil)
	return chatmodel.WithChatContext(context.Background(), chatCtx)
}

func Test_Assistant_BuilderMethods(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := newMockLLM(ctrl)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	assistant = assistant.WithOutputParser(encoding.NewSimpleOutputParser())
	assert.NotNil(t, assistant)

	inputParser := func(input string) (string, error) {
		return "parsed: " + input, nil
	}
	assistant.WithInputParser(inputParser)

	assistant = assistant.WithName("TestAssistant")
	assert.Equal(t, "TestAssistant", assistant.Name())

	assistant = assistant.WithDescription("Test Description")
	assert.Equal(t, "Test Description", assistant.Description())

	assert.Empty(t, assistant.GetTools())

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("test_tool").AnyTimes()
	mockTool.EXPECT().Description().Return("Test tool description").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()

	assistant = assistant.WithTools(mockTool)
	// duplicate registration is a no-op
	assistant = assistant.WithTools(mockTool)
	assert.Len(t, assistant.GetTools(), 1)
	assert.Equal(t, "test_tool", assistant.GetTools()[0].Name())

	assert.Empty(t, assistant.LastRunMessages())
	assert.Empty(t, assistant.GetPromptInputVariables())

	provider := func(ctx context.Context, input string) (map[string]any, error) {
		return map[string]any{"test": "value"}, nil
	}
	assistant.WithPromptInputProvider(provider)
	assert.NotNil(t, assistant)
}

func Test_Assistant_GetSystemPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)

	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))
	sp, err := assistant.GetSystemPrompt(context.Background(), "input", nil)
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful AI assistant.", sp)

	// output schema is appended when no native response format is set
	jsonAssistant := agents.NewAssistant[testResult](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModeJSON))
	sp, err = jsonAssistant.GetSystemPrompt(context.Background(), "input", nil)
	require.NoError(t, err)
	assert.Contains(t, sp, "# OUTPUT SCHEMA")

	// onPrompt error
	assistant.WithPromptInputProvider(func(ctx context.Context, input string) (map[string]any, error) {
		return nil, assert.AnError
	})
	_, err = assistant.GetSystemPrompt(context.Background(), "input", nil)
	assert.Error(t, err)
}

func Test_Assistant_Run_RequiresChatContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	_, err := assistant.Call(context.Background(), &agents.CallInput{Input: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, chatmodel.ErrInvalidChatContext)
}

func Test_Assistant_Run_EmptyResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{Choices: []*llms.ContentChoice{}}, nil).AnyTimes()

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "hello"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func Test_Assistant_Run_ParseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[testResult](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModeJSON))

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "not json"}}}, nil).Times(1)

	var out testResult
	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "hello"}, &out)
	assert.Error(t, err)
}

func Test_Assistant_Run_ToolCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("search").AnyTimes()
	mockTool.EXPECT().Description().Return("Searches the web.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), `{"q":"wikimedia"}`).Return("tool result", nil).Times(1)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithTools(mockTool)

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:   "1",
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      "Search",
						Arguments: `{"q":"wikimedia"}`,
					},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "final answer"}},
		}, nil).Times(1)

	var out chatmodel.String
	resp, err := assistant.Run(chatContext(), &agents.CallInput{Input: "look this up"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "final answer", resp.Choices[0].Content)
	assert.Equal(t, "final answer", out.GetContent())

	// run messages: user, tool call, tool response, final
	msgs := assistant.LastRunMessages()
	assert.Len(t, msgs, 4)
}

func Test_Assistant_Run_ToolNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "not_found", Arguments: "{}"},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "I could not find that tool."}},
		}, nil).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	assert.NoError(t, err)
}

func Test_Assistant_Run_ToolError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("err_tool").AnyTimes()
	mockTool.EXPECT().Description().Return("desc").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).Return("", assert.AnError).Times(1)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithTools(mockTool)

	// the tool failure is reported back to the model, not to the caller
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "err_tool", Arguments: "{}"},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "the tool failed"}},
		}, nil).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	assert.NoError(t, err)
}

func Test_Assistant_Run_ExecutorDelegation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	// the tool is registered for execution on the proxy only; the assistant
	// advertises its definition and delegates execution
	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("proxy_tool").AnyTimes()
	mockTool.EXPECT().Description().Return("Runs on the proxy.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).Return("proxied result", nil).Times(1)

	proxy := agents.NewUserProxy("User").WithTools(mockTool)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithToolDefs(agents.ToolDef(mockTool)).
		WithToolExecutor(proxy)

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "proxy_tool", Arguments: "{}"},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "done"}},
		}, nil).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	assert.NoError(t, err)
}

func Test_Assistant_Run_ToolCallOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	// the first call is the slowest; responses must still come back in
	// the order the calls were requested
	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("lookup").AnyTimes()
	mockTool.EXPECT().Description().Return("Looks things up.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input string) (string, error) {
			switch input {
			case "a":
				time.Sleep(50 * time.Millisecond)
			case "b":
				time.Sleep(10 * time.Millisecond)
			}
			return "res:" + input, nil
		}).Times(3)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithTools(mockTool)

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{
					{ID: "1", Type: "function", FunctionCall: &llms.FunctionCall{Name: "lookup", Arguments: "a"}},
					{ID: "2", Type: "function", FunctionCall: &llms.FunctionCall{Name: "lookup", Arguments: "b"}},
					{ID: "3", Type: "function", FunctionCall: &llms.FunctionCall{Name: "lookup", Arguments: "c"}},
				},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			var got []llms.ToolCallResponse
			for _, msg := range messages {
				for _, part := range msg.Parts {
					if tr, ok := part.(llms.ToolCallResponse); ok {
						got = append(got, tr)
					}
				}
			}
			require.Len(t, got, 3)
			assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].ToolCallID, got[1].ToolCallID, got[2].ToolCallID})
			assert.Equal(t, "res:a", got[0].Content)
			assert.Equal(t, "res:b", got[1].Content)
			assert.Equal(t, "res:c", got[2].Content)
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "done"}},
			}, nil
		}).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	require.NoError(t, err)
}

func Test_Assistant_Run_ConsecutiveToolNotFoundAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	// the model keeps asking for an unknown tool; after more than 3
	// consecutive rounds the run is aborted
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "not_found", Arguments: "{}"},
				}},
			}},
		}, nil).Times(4)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found tools is exceeded")
}

func Test_Assistant_Run_ToolUnmarshalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("strict_tool").AnyTimes()
	mockTool.EXPECT().Description().Return("desc").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).
		Return("", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)).Times(1)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithTools(mockTool)

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "strict_tool", Arguments: "{{{"},
				}},
			}},
		}, nil).Times(1)
	// a corrective message is fed back and the run continues
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			last := messages[len(messages)-1]
			require.Equal(t, llms.RoleTool, last.Role)
			tr, ok := last.Parts[0].(llms.ToolCallResponse)
			require.True(t, ok)
			assert.Contains(t, tr.Content, "Failed to unmarshal input")
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "fixed"}},
			}, nil
		}).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	require.NoError(t, err)
}

func Test_Assistant_Run_SynthesizedToolCallIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("echo").AnyTimes()
	mockTool.EXPECT().Description().Return("Echoes input.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input string) (string, error) {
			return input, nil
		}).Times(2)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithTools(mockTool)

	// two choices each carry a call to the same tool without an ID;
	// synthesized IDs must not collide
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{ToolCalls: []llms.ToolCall{{FunctionCall: &llms.FunctionCall{Name: "echo", Arguments: "one"}}}},
				{ToolCalls: []llms.ToolCall{{FunctionCall: &llms.FunctionCall{Name: "echo", Arguments: "two"}}}},
			},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			ids := map[string]bool{}
			for _, msg := range messages {
				for _, part := range msg.Parts {
					if tr, ok := part.(llms.ToolCallResponse); ok {
						ids[tr.ToolCallID] = true
					}
				}
			}
			assert.Len(t, ids, 2)
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "done"}},
			}, nil
		}).Times(1)

	_, err := assistant.Run(chatContext(), &agents.CallInput{Input: "input"}, nil)
	require.NoError(t, err)
}
