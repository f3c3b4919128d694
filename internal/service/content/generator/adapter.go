package generator

import (
	"context"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
)

// completer sends one prompt and returns the reply text.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// providerAdapter wraps a library provider as a completer. It converts the
// prompt into a single user text block and joins the text blocks of the reply.
type providerAdapter struct {
	provider llmprovider.Provider
	model    string
}

func (a *providerAdapter) Name() string {
	return a.provider.Name().String()
}

func (a *providerAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	text := prompt
	req := &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{BlockType: "text", Sequence: 0, TextContent: &text},
				},
			},
		},
		Model: a.model,
	}

	resp, err := a.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}
	return b.String(), nil
}
