package openai

import (
	"context"
	"encoding/json"
	"fmt"
)

type responsesRequest struct {
	Model           string          `json:"model"`
	Input           string          `json:"input"`
	Instructions    string          `json:"instructions,omitempty"`
	Temperature     float64         `json:"temperature,omitempty"`
	Text            *responsesText  `json:"text,omitempty"`
}

type responsesText struct {
	Format responsesFormat `json:"format"`
}

type responsesFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
	Strict bool           `json:"strict,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// GenerateText sends a freeform prompt and returns the model's plain text.
func (c *Client) GenerateText(ctx context.Context, instructions, prompt string, temperature float64) (string, error) {
	req := responsesRequest{
		Model:        c.chatModel,
		Input:        prompt,
		Instructions: instructions,
		Temperature:  temperature,
	}
	var resp responsesResponse
	if err := c.doJSON(ctx, "POST", "/responses", req, &resp); err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// GenerateJSON asks for output_json conforming to schema, under the given
// schema name (required by the Responses API's json_schema format).
func (c *Client) GenerateJSON(ctx context.Context, instructions, prompt, schemaName string, schema map[string]any) (map[string]any, error) {
	req := responsesRequest{
		Model:        c.chatModel,
		Input:        prompt,
		Instructions: instructions,
		Text: &responsesText{Format: responsesFormat{
			Type:   "json_schema",
			Name:   schemaName,
			Schema: schema,
			Strict: true,
		}},
	}
	var resp responsesResponse
	if err := c.doJSON(ctx, "POST", "/responses", req, &resp); err != nil {
		return nil, err
	}
	text := extractText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty structured response")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("unmarshal structured response: %w", err)
	}
	return out, nil
}

func extractText(resp responsesResponse) string {
	for _, item := range resp.Output {
		for _, c := range item.Content {
			if c.Type == "output_text" || c.Type == "text" {
				return c.Text
			}
		}
	}
	return ""
}
