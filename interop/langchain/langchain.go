// Package langchain converts langchaingo tools into native tools.
package langchain

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	lctools "github.com/tmc/langchaingo/tools"

	"github.com/agentis-ai/agentis/interop"
	"github.com/agentis-ai/agentis/pkg/llmutils"
	"github.com/agentis-ai/agentis/pkg/schema"
	"github.com/agentis-ai/agentis/tools"
)

func init() {
	interop.Register(Converter{})
}

// Input is the single-argument request passed to a langchaingo tool.
type Input struct {
	Input string `json:"input" yaml:"Input" jsonschema:"title=input,description=The input to pass to the tool."`
}

// Converter converts values implementing langchaingo tools.Tool.
type Converter struct{}

var _ interop.Converter = Converter{}

func (Converter) Type() interop.Type {
	return interop.TypeLangChain
}

func (Converter) CanConvert(tool any) bool {
	_, ok := tool.(lctools.Tool)
	return ok
}

func (Converter) Convert(tool any) (tools.ITool, error) {
	lc, ok := tool.(lctools.Tool)
	if !ok {
		return nil, errors.WithMessagef(interop.ErrNotConvertible, "%T", tool)
	}
	sc, err := schema.New(reflect.TypeOf(Input{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &wrapped{
		tool:       lc,
		funcParams: sc.Parameters,
	}, nil
}

// wrapped adapts a langchaingo tool to the native tool interface.
type wrapped struct {
	tool       lctools.Tool
	funcParams any
}

var _ tools.ITool = (*wrapped)(nil)

func (w *wrapped) Name() string {
	return w.tool.Name()
}

func (w *wrapped) Description() string {
	return w.tool.Description()
}

func (w *wrapped) Parameters() any {
	return w.funcParams
}

func (w *wrapped) Call(ctx context.Context, input string) (string, error) {
	var req Input
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		// models sometimes pass the argument as a bare string
		req.Input = input
	}
	out, err := w.tool.Call(ctx, req.Input)
	if err != nil {
		return "", errors.WithMessagef(err, "tool %q failed", w.tool.Name())
	}
	return out, nil
}
