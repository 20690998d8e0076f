// Package funcs converts plain Go functions into native tools, with optional
// dependency injection from the chat context.
package funcs

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/interop"
	"github.com/agentis-ai/agentis/pkg/llmutils"
	"github.com/agentis-ai/agentis/pkg/schema"
	"github.com/agentis-ai/agentis/tools"
)

func init() {
	interop.Register(Converter{})
}

// Def describes a function to expose as a tool.
type Def[I any, O any] struct {
	Name        string
	Description string
	Func        func(ctx context.Context, req *I) (*O, error)
}

// DepsDef describes a function whose first argument is resolved from the
// chat context application data.
type DepsDef[D any, I any, O any] struct {
	Name        string
	Description string
	Func        func(ctx context.Context, deps D, req *I) (*O, error)
}

// convertible is implemented by Def and DepsDef so the converter can handle
// any instantiation of the generic types.
type convertible interface {
	toTool() (tools.ITool, error)
}

// Converter converts Def and DepsDef values.
type Converter struct{}

var _ interop.Converter = Converter{}

func (Converter) Type() interop.Type {
	return interop.TypeFuncs
}

func (Converter) CanConvert(tool any) bool {
	_, ok := tool.(convertible)
	return ok
}

func (Converter) Convert(tool any) (tools.ITool, error) {
	c, ok := tool.(convertible)
	if !ok {
		return nil, errors.WithMessagef(interop.ErrNotConvertible, "%T", tool)
	}
	return c.toTool()
}

// New returns a native tool calling fn.
func New[I any, O any](name, description string, fn func(ctx context.Context, req *I) (*O, error)) (tools.Tool[I, O], error) {
	var def I
	sc, err := schema.New(reflect.TypeOf(def))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &funcTool[I, O]{
		name:        name,
		description: description,
		funcParams:  sc.Parameters,
		fn:          fn,
	}, nil
}

// NewWithDeps returns a native tool calling fn with dependencies of type D
// taken from the chat context application data.
func NewWithDeps[D any, I any, O any](name, description string, fn func(ctx context.Context, deps D, req *I) (*O, error)) (tools.Tool[I, O], error) {
	return New(name, description, func(ctx context.Context, req *I) (*O, error) {
		deps, ok := chatmodel.AppDataAs[D](ctx)
		if !ok {
			return nil, errors.Newf("tool %q: no dependencies of type %T in chat context", name, deps)
		}
		return fn(ctx, deps, req)
	})
}

func (d Def[I, O]) toTool() (tools.ITool, error) {
	return New(d.Name, d.Description, d.Func)
}

func (d DepsDef[D, I, O]) toTool() (tools.ITool, error) {
	return NewWithDeps(d.Name, d.Description, d.Func)
}

type funcTool[I any, O any] struct {
	name        string
	description string
	funcParams  any
	fn          func(ctx context.Context, req *I) (*O, error)
}

func (t *funcTool[I, O]) Name() string {
	return t.name
}

func (t *funcTool[I, O]) Description() string {
	return t.description
}

func (t *funcTool[I, O]) Parameters() any {
	return t.funcParams
}

func (t *funcTool[I, O]) Run(ctx context.Context, req *I) (*O, error) {
	return t.fn(ctx, req)
}

func (t *funcTool[I, O]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.fn(ctx, &req)
	if err != nil {
		return "", err
	}
	return chatmodel.Stringify(out), nil
}
