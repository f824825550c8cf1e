// Package llm provides abstractions for chat-completion provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/darkaengl/aura-sub000/pkg/llm/openai"
//	    "github.com/darkaengl/aura-sub000/pkg/types"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o-mini"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    reply, err := provider.Complete(context.Background(), []*types.Message{
//	        types.NewUserMessage("Hello!"),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(reply.Content)
//	}
package llm

import (
	"context"

	"github.com/darkaengl/aura-sub000/pkg/types"
)

// Provider defines the interface for chat-completion integrations.
//
// Providers handle API communication with LLM services and return plain
// messages. This design keeps providers focused on transport concerns
// without coupling them to assistant-level events or orchestration.
//
// The assistant layer is responsible for prompt construction, staleness
// checks, and surfacing failures; providers only report them. Failures are
// returned as errors carrying a human-readable message suitable for display.
type Provider interface {
	// Complete sends messages to the LLM and returns the assistant's reply.
	//
	// Returns an error on any transport or API failure. Callers must handle
	// rejection; no retry or fallback happens at this layer.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string
}

// ModelCloner is an optional interface that providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport
// with the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}
