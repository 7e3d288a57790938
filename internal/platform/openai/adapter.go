package openai

import (
	"context"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// LLMAdapter satisfies articlepipeline.LLMClient on top of a Client.
type LLMAdapter struct {
	client *Client
}

func NewLLMAdapter(client *Client) *LLMAdapter { return &LLMAdapter{client: client} }

var _ articlepipeline.LLMClient = (*LLMAdapter)(nil)

func (a *LLMAdapter) Generate(ctx context.Context, req articlepipeline.LLMRequest) (articlepipeline.LLMResponse, error) {
	if req.ResponseSchema != nil {
		obj, err := a.client.GenerateJSON(ctx, req.SystemInstruction, req.Prompt, "article_pipeline_output", req.ResponseSchema)
		if err != nil {
			return articlepipeline.LLMResponse{}, err
		}
		return articlepipeline.LLMResponse{JSON: obj}, nil
	}
	text, err := a.client.GenerateText(ctx, req.SystemInstruction, req.Prompt, req.Temperature)
	if err != nil {
		return articlepipeline.LLMResponse{}, err
	}
	return articlepipeline.LLMResponse{Text: text}, nil
}

// EmbeddingAdapter satisfies articlepipeline.EmbeddingClient.
type EmbeddingAdapter struct {
	client *Client
}

func NewEmbeddingAdapter(client *Client) *EmbeddingAdapter { return &EmbeddingAdapter{client: client} }

var _ articlepipeline.EmbeddingClient = (*EmbeddingAdapter)(nil)

func (a *EmbeddingAdapter) Embed(ctx context.Context, text string) ([]float64, error) {
	return a.client.Embed(ctx, text)
}

// ImageAdapter satisfies articlepipeline.ImageBackend.
type ImageAdapter struct {
	client *Client
}

func NewImageAdapter(client *Client) *ImageAdapter { return &ImageAdapter{client: client} }

var _ articlepipeline.ImageBackend = (*ImageAdapter)(nil)

func (a *ImageAdapter) Generate(ctx context.Context, prompt string) (string, string, error) {
	return a.client.GenerateImage(ctx, prompt)
}
