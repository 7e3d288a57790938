package openai

import (
	"context"
	"fmt"
)

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one input string.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	req := embeddingRequest{Model: c.embedModel, Input: text}
	var resp embeddingResponse
	if err := c.doJSON(ctx, "POST", "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings response had no data")
	}
	return resp.Data[0].Embedding, nil
}
