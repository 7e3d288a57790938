package openai

import (
	"context"
	"fmt"
)

type imageRequest struct {
	Model string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// GenerateImage requests one hero image for the given prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (url string, alt string, err error) {
	req := imageRequest{Model: c.imageModel, Prompt: prompt, N: 1, Size: "1536x1024"}
	var resp imageResponse
	if err := c.doJSON(ctx, "POST", "/images/generations", req, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Data) == 0 {
		return "", "", fmt.Errorf("image response had no data")
	}
	d := resp.Data[0]
	alt = d.RevisedPrompt
	if alt == "" {
		alt = prompt
	}
	return d.URL, alt, nil
}
