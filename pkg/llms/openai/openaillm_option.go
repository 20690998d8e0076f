package openai

import "net/http"

// TokenEnvVarName is the environment variable holding the API key.
const TokenEnvVarName = "OPENAI_API_KEY"

// Options configure the OpenAI client.
type Options struct {
	Token        string
	BaseURL      string
	Model        string
	Organization string
	// AzureAPIVersion switches the client to an Azure OpenAI endpoint.
	// BaseURL must be set to the Azure resource endpoint.
	AzureAPIVersion string
	HTTPClient      *http.Client
}

// Option is a functional option for the OpenAI client.
type Option func(*Options)

// WithToken sets the API token.
func WithToken(token string) Option {
	return func(opts *Options) {
		opts.Token = token
	}
}

// WithModel sets the model name. On Azure this is the deployment name.
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

// WithOrganization sets the OpenAI organization header.
func WithOrganization(organization string) Option {
	return func(opts *Options) {
		opts.Organization = organization
	}
}

// WithAzure configures the client for an Azure OpenAI endpoint.
func WithAzure(endpoint, apiVersion string) Option {
	return func(opts *Options) {
		opts.BaseURL = endpoint
		opts.AzureAPIVersion = apiVersion
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}
