// Package webreader provides a tool that fetches a web page and returns its
// readable text content.
package webreader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/jaytaylor/html2text"

	"github.com/agentis-ai/agentis/chatmodel"
	"github.com/agentis-ai/agentis/pkg/llmutils"
	"github.com/agentis-ai/agentis/pkg/schema"
	"github.com/agentis-ai/agentis/tools"
)

const ToolName = "WebReader"

// maxBodySize limits how much of a page is read.
const maxBodySize = 2 << 20

// ReadRequest represents the tool input.
type ReadRequest struct {
	URL string `json:"URL" yaml:"URL" jsonschema:"title=URL,description=The URL of the web page to read."`
}

// ReadResult represents the extracted page text.
type ReadResult struct {
	URL     string `json:"url" yaml:"URL" jsonschema:"title=url,description=The URL of the page."`
	Content string `json:"content" yaml:"Content" jsonschema:"title=content,description=The readable text content of the page."`
}

func (r *ReadResult) GetContent() string {
	return r.Content
}

// Tool fetches web pages and converts HTML into plain text.
type Tool struct {
	name        string
	description string
	funcParams  any

	httpClient *http.Client
}

var _ tools.Tool[ReadRequest, ReadResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(ReadRequest{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "A tool that fetches a web page and returns its readable text content.",
		funcParams:  sc.Parameters,
		httpClient:  http.DefaultClient,
	}, nil
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *ReadRequest) (*ReadResult, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.Newf("invalid request: unsupported URL: %q", req.URL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, http.NoBody)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to fetch %q", req.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("failed to fetch %q: status %d", req.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read %q", req.URL)
	}

	text, err := html2text.FromString(string(body), html2text.Options{TextOnly: true})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to extract text")
	}

	return &ReadResult{
		URL:     req.URL,
		Content: text,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req ReadRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.WithMessage(err, "failed to marshal output")
	}
	return string(bs), nil
}
