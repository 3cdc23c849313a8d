package gateway

import (
	"context"
	"fmt"

	libhttp "github.com/shieldloop/sentryloop/pkg/lib/http"
)

// embedRequest/embedResponse mirror the OpenAI-compatible /embeddings wire
// format, which most embedding providers (OpenAI, DeepInfra, local
// llama.cpp servers) speak even when their chat completions endpoint is
// entirely separate.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// embedClient is a thin client over a dedicated embedding endpoint, used
// when the embedding provider isn't the same OpenAI client used for chat.
type embedClient struct {
	http  *libhttp.Client
	model string
}

func newEmbedClient(cfg EmbeddingConfig) *embedClient {
	return &embedClient{
		http: libhttp.NewClient(
			libhttp.WithBaseURL(cfg.BaseURL),
			libhttp.WithBearerToken(cfg.APIKey),
			libhttp.WithTimeout(cfg.Timeout),
			libhttp.WithUserAgent("sentryloop-gateway"),
		),
		model: cfg.Model,
	}
}

func (c *embedClient) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.http.Post(ctx, "/embeddings", embedRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("embed endpoint returned status %d", resp.StatusCode)
	}

	var body embedResponse
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(body.Data) == 0 || len(body.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embed response contained no vector")
	}
	return body.Data[0].Embedding, nil
}
