package agents_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agentis-ai/agentis/agents"
	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/encoding"
	"github.com/agentis-ai/agentis/interop"
	"github.com/agentis-ai/agentis/interop/funcs"
	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/agentis-ai/agentis/pkg/prompts"
)

func Test_InitiateChat_Terminates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithName("Assistant")

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "The answer is 4. TERMINATE"}},
		}, nil).Times(1)

	proxy := agents.NewUserProxy("User")

	result, err := agents.InitiateChat(context.Background(), proxy, assistant, "what is 2+2?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ChatID)
	assert.Equal(t, "The answer is 4.", result.Summary)
	// user turn and assistant reply
	require.Len(t, result.Messages, 2)
	assert.Equal(t, llms.RoleHuman, result.Messages[0].Role)
	assert.Equal(t, llms.RoleAI, result.Messages[1].Role)
}

func Test_InitiateChat_MaxTurns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	// never terminates; the proxy always has something to say
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "and another thing"}},
		}, nil).Times(3)

	proxy := agents.NewUserProxy("User").WithAutoReply("go on")

	result, err := agents.InitiateChat(context.Background(), proxy, assistant, "hello",
		agents.WithMaxTurns(3))
	require.NoError(t, err)
	assert.Len(t, result.Messages, 6)
}

func Test_InitiateChat_AssistantError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError).Times(1)

	proxy := agents.NewUserProxy("User")

	_, err := agents.InitiateChat(context.Background(), proxy, assistant, "hello")
	assert.Error(t, err)
}

func Test_InitiateChat_KeepsChatID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})
	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText))

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			// app data is attached onto the same chat
			acct, ok := chatmodel.AppDataAs[*account](ctx)
			require.True(t, ok)
			assert.Equal(t, "Ada", acct.Name)
			id, err := chatmodel.GetChatID(ctx)
			require.NoError(t, err)
			assert.Equal(t, "chat-abc", id)
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "Done. TERMINATE"}},
			}, nil
		}).Times(1)

	proxy := agents.NewUserProxy("User")

	// resuming an existing chat must not regenerate its ID
	ctx := chatmodel.WithChatContext(context.Background(), chatmodel.NewChatContext("chat-abc", nil))
	result, err := agents.InitiateChat(ctx, proxy, assistant, "hello",
		agents.WithAppData(&account{Name: "Ada", Age: 37}))
	require.NoError(t, err)
	assert.Equal(t, "chat-abc", result.ChatID)
}

type account struct {
	Name string
	Age  int
}

type ageRequest struct {
	Subject string `json:"subject"`
}

type ageResult struct {
	Age int `json:"age"`
}

func (r *ageResult) GetContent() string {
	return fmt.Sprintf("age: %d", r.Age)
}

func Test_InitiateChat_InjectedTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := newMockLLM(ctrl)
	systemPrompt := prompts.NewPromptTemplate("You are a helpful AI assistant.", []string{})

	def := funcs.DepsDef[*account, ageRequest, ageResult]{
		Name:        "age_lookup",
		Description: "Returns the age of the current user.",
		Func: func(ctx context.Context, acct *account, req *ageRequest) (*ageResult, error) {
			return &ageResult{Age: acct.Age}, nil
		},
	}
	tool, err := interop.Convert(def, interop.TypeFuncs)
	require.NoError(t, err)

	proxy := agents.NewUserProxy("User").WithTools(tool)

	assistant := agents.NewAssistant[chatmodel.String](mockLLM, systemPrompt,
		agents.WithMode(encoding.ModePlainText)).
		WithToolDefs(agents.ToolDef(tool)).
		WithToolExecutor(proxy)

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID: "1", Type: "function",
					FunctionCall: &llms.FunctionCall{Name: "age_lookup", Arguments: `{"subject":"me"}`},
				}},
			}},
		}, nil).Times(1)
	// the tool response carries the injected age
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			last := messages[len(messages)-1]
			require.Equal(t, llms.RoleTool, last.Role)
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "You are 37. TERMINATE"}},
			}, nil
		}).Times(1)

	result, err := agents.InitiateChat(context.Background(), proxy, assistant, "how old am I?",
		agents.WithAppData(&account{Name: "Ada", Age: 37}))
	require.NoError(t, err)
	assert.Equal(t, "You are 37.", result.Summary)
}
