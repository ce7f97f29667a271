// Package providers assembles the full adapters.Registry for every wire
// format this module supports, in detection priority order: the
// structurally narrowest formats first, OpenAI Chat Completions' broad
// "any messages array" shape last as the catch-all.
package providers

import (
	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/adapters/bedrock"
	"github.com/braintrustdata/llm-router/adapters/bedrockanthropic"
	"github.com/braintrustdata/llm-router/adapters/google"
	"github.com/braintrustdata/llm-router/adapters/mistral"
	"github.com/braintrustdata/llm-router/adapters/openaichat"
	"github.com/braintrustdata/llm-router/adapters/openairesponses"
	"github.com/braintrustdata/llm-router/adapters/vertexanthropic"
)

// DefaultRegistry returns an adapters.Registry populated with every
// supported provider format, in detection priority order.
func DefaultRegistry() *adapters.Registry {
	return adapters.NewRegistry(
		openairesponses.New(),
		google.New(),
		bedrock.New(),
		bedrockanthropic.New(),
		vertexanthropic.New(),
		anthropicmsg.New(),
		mistral.New(),
		openaichat.New(),
	)
}
