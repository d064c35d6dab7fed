// Package provider is the Model Client: it sends session history to the
// Anthropic Messages API and classifies the reply.
package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel      = anthropic.ModelClaude3_7SonnetLatest
	DefaultMaxTokens  = 1024
	DefaultMaxRetries = 2
	APIVersion        = "2023-06-01"
)

// NewAnthropicClient returns an SDK client for apiKey; extra options are applied last.
func NewAnthropicClient(apiKey string, maxRetries int, opts ...option.RequestOption) *anthropic.Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	c := anthropic.NewClient(append(base, opts...)...)
	return &c
}
