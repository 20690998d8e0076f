package anthropic

import "net/http"

// TokenEnvVarName is the environment variable holding the API key.
const TokenEnvVarName = "ANTHROPIC_API_KEY"

// Options configure the Anthropic client.
type Options struct {
	Token      string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Option is a functional option for the Anthropic client.
type Option func(*Options)

// WithToken sets the API token.
func WithToken(token string) Option {
	return func(opts *Options) {
		opts.Token = token
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(opts *Options) {
		opts.Model = model
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}
