package funcs_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/interop"
	"github.com/agentis-ai/agentis/interop/funcs"
)

type wordsRequest struct {
	Text string `json:"text" jsonschema:"description=The text to count words in."`
}

type wordsResult struct {
	Count int `json:"count"`
}

func countWords(ctx context.Context, req *wordsRequest) (*wordsResult, error) {
	return &wordsResult{Count: len(strings.Fields(req.Text))}, nil
}

func Test_New(t *testing.T) {
	tool, err := funcs.New("count_words", "Counts words in the text.", countWords)
	require.NoError(t, err)

	assert.Equal(t, "count_words", tool.Name())
	assert.Equal(t, "Counts words in the text.", tool.Description())
	assert.NotNil(t, tool.Parameters())

	out, err := tool.Run(context.Background(), &wordsRequest{Text: "one two three"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)

	res, err := tool.Call(context.Background(), `{"text":"one two"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, res)

	// malformed input is reported as an unmarshal failure
	_, err = tool.Call(context.Background(), `{{{`)
	require.Error(t, err)
	assert.ErrorIs(t, err, chatmodel.ErrFailedUnmarshalInput)
}

type limits struct {
	Max int
}

func Test_NewWithDeps(t *testing.T) {
	tool, err := funcs.NewWithDeps("capped_count", "Counts words up to a limit.",
		func(ctx context.Context, deps *limits, req *wordsRequest) (*wordsResult, error) {
			n := len(strings.Fields(req.Text))
			if n > deps.Max {
				n = deps.Max
			}
			return &wordsResult{Count: n}, nil
		})
	require.NoError(t, err)

	// no app data on the context
	_, err = tool.Call(context.Background(), `{"text":"one two three"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dependencies")

	// app data of the wrong type
	ctx := chatmodel.WithChatContext(context.Background(),
		chatmodel.NewChatContext("", "wrong type"))
	_, err = tool.Call(ctx, `{"text":"one two three"}`)
	require.Error(t, err)

	// injected dependencies
	ctx = chatmodel.WithChatContext(context.Background(),
		chatmodel.NewChatContext("", &limits{Max: 2}))
	res, err := tool.Call(ctx, `{"text":"one two three"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, res)
}

func Test_Converter(t *testing.T) {
	def := funcs.Def[wordsRequest, wordsResult]{
		Name:        "count_words",
		Description: "Counts words in the text.",
		Func:        countWords,
	}

	converted, err := interop.Convert(def, interop.TypeFuncs)
	require.NoError(t, err)
	assert.Equal(t, "count_words", converted.Name())

	// auto-detection
	converted, err = interop.ConvertAny(def)
	require.NoError(t, err)
	assert.Equal(t, "count_words", converted.Name())

	_, err = interop.Convert("not a def", interop.TypeFuncs)
	require.Error(t, err)
	assert.ErrorIs(t, err, interop.ErrNotConvertible)
}
