// Package mcptool converts tools exposed over MCP into native tools.
package mcptool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	mcp "github.com/metoro-io/mcp-golang"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/interop"
	"github.com/agentis-ai/agentis/pkg/llmutils"
	"github.com/agentis-ai/agentis/tools"
)

func init() {
	interop.Register(Converter{})
}

// ToolsClient is the MCP client surface needed to discover and call tools.
// *mcp.Client satisfies it, as do in-process servers.
type ToolsClient interface {
	ListTools(ctx context.Context, cursor *string) (*mcp.ToolsResponse, error)
	CallTool(ctx context.Context, name string, arguments any) (*mcp.ToolResponse, error)
}

// ClientTool binds a single remote tool definition to the client that
// serves it.
type ClientTool struct {
	Client ToolsClient
	Tool   mcp.ToolRetType
}

// Converter converts ClientTool values.
type Converter struct{}

var _ interop.Converter = Converter{}

func (Converter) Type() interop.Type {
	return interop.TypeMCP
}

func (Converter) CanConvert(tool any) bool {
	switch tool.(type) {
	case ClientTool, *ClientTool:
		return true
	}
	return false
}

func (Converter) Convert(tool any) (tools.ITool, error) {
	var ct ClientTool
	switch v := tool.(type) {
	case ClientTool:
		ct = v
	case *ClientTool:
		ct = *v
	default:
		return nil, errors.WithMessagef(interop.ErrNotConvertible, "%T", tool)
	}
	if ct.Client == nil || ct.Tool.Name == "" {
		return nil, errors.WithMessage(interop.ErrNotConvertible, "missing client or tool name")
	}
	description := ""
	if ct.Tool.Description != nil {
		description = *ct.Tool.Description
	}
	return &wrapped{
		client:      ct.Client,
		name:        ct.Tool.Name,
		description: description,
		funcParams:  ct.Tool.InputSchema,
	}, nil
}

// Tools lists every tool the client exposes and converts each one.
func Tools(ctx context.Context, client ToolsClient) ([]tools.ITool, error) {
	var list []tools.ITool
	var cursor *string
	for {
		resp, err := client.ListTools(ctx, cursor)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to list tools")
		}
		for _, t := range resp.Tools {
			converted, err := interop.Convert(ClientTool{Client: client, Tool: t}, interop.TypeMCP)
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		if resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return list, nil
}

type wrapped struct {
	client      ToolsClient
	name        string
	description string
	funcParams  any
}

var _ tools.ITool = (*wrapped)(nil)

func (w *wrapped) Name() string {
	return w.name
}

func (w *wrapped) Description() string {
	return w.description
}

func (w *wrapped) Parameters() any {
	return w.funcParams
}

func (w *wrapped) Call(ctx context.Context, input string) (string, error) {
	var args map[string]any
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &args); err != nil {
			return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
		}
	}
	resp, err := w.client.CallTool(ctx, w.name, args)
	if err != nil {
		return "", errors.WithMessagef(err, "tool %q failed", w.name)
	}
	var sb strings.Builder
	for _, content := range resp.Content {
		if content != nil && content.TextContent != nil {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(content.TextContent.Text)
		}
	}
	return sb.String(), nil
}
