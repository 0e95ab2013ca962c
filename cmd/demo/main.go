// Command demo wires a Client against the OpenAI and Anthropic provider
// specs and runs a few end-to-end examples: a plain chat completion, a
// streaming completion, a tool-loop run against the calculator tool, and an
// embeddings request.
// It is explicitly outside the core contract (spec §1) — an application
// sample, not a package other code imports.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/taipm/go-llm-gateway/client"
	"github.com/taipm/go-llm-gateway/providerspec"
	"github.com/taipm/go-llm-gateway/registry"
	"github.com/taipm/go-llm-gateway/toolloop"
	"github.com/taipm/go-llm-gateway/tools"
	"github.com/taipm/go-llm-gateway/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: no .env file loaded: %v", err)
	}

	reg := registry.New()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		reg.Register(providerspec.NewOpenAI(key))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		reg.Register(providerspec.NewAnthropic(key))
	}

	c := client.New(reg, nil).Use(
		registry.DefaultParamsMiddleware(0.7, 1024),
		registry.ClampTopPMiddleware(),
	)

	ctx := context.Background()

	fmt.Println("=== Example 1: Simple chat ===")
	runChat(ctx, c)

	fmt.Println("\n=== Example 2: Streaming chat ===")
	runStream(ctx, c)

	fmt.Println("\n=== Example 3: Tool loop ===")
	runToolLoop(ctx, c)

	fmt.Println("\n=== Example 4: Embeddings ===")
	runEmbed(ctx, c)
}

func runChat(ctx context.Context, c *client.Client) {
	resp, err := c.Chat(ctx, "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("What is the capital of Vietnam?")},
	})
	if err != nil {
		log.Printf("chat error: %v", err)
		return
	}
	fmt.Printf("Response: %s\n", resp.Content)
}

func runStream(ctx context.Context, c *client.Client) {
	stream, handle, err := c.ChatStream(ctx, "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("Write a haiku about AI")},
		Stream:   true,
	})
	if err != nil {
		log.Printf("stream init error: %v", err)
		return
	}
	defer handle.Cancel()
	defer stream.Close()

	for {
		event, ok, err := stream.Next()
		if err != nil {
			log.Printf("stream error: %v", err)
			return
		}
		if !ok {
			return
		}
		switch event.Kind {
		case types.EventContentDelta:
			fmt.Print(event.Delta)
		case types.EventStreamEnd:
			fmt.Printf("\n[done, finish_reason=%s]\n", event.Response.FinishReason.Tag)
		}
	}
}

func runToolLoop(ctx context.Context, c *client.Client) {
	calcTool, calcFunc := tools.NewCalculatorTool()

	chat := func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		return c.Chat(ctx, "openai:gpt-4o-mini", req)
	}

	steps, err := toolloop.Run(ctx, chat, &types.ChatRequest{
		Messages: []types.Message{types.User("Use calc to evaluate 2+2, then tell me the answer.")},
		Tools:    []*types.Tool{calcTool},
	}, toolloop.Options{
		Resolver: toolloop.Resolver{"calc": calcFunc},
		Stop:     toolloop.StepCountIs(3),
	})
	if err != nil {
		log.Printf("tool loop error: %v", err)
		return
	}
	fmt.Printf("Final response after %d step(s): %s\n", len(steps), steps[len(steps)-1].Response.Content)
}

func runEmbed(ctx context.Context, c *client.Client) {
	resp, err := c.Embed(ctx, "openai:text-embedding-3-small", &types.EmbeddingRequest{
		Input: []string{"Hanoi is the capital of Vietnam."},
	})
	if err != nil {
		log.Printf("embed error: %v", err)
		return
	}
	fmt.Printf("Embedded %d vector(s) of dimension %d\n", len(resp.Vectors), len(resp.Vectors[0]))
}
