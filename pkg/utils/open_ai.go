package utils

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingClientInterface abstracts the embedding provider used by the
// vector retriever.
type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAIEmbeddingClient struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

func NewOpenAIEmbeddingClient(apiKey string) EmbeddingClientInterface {
	return &OpenAIEmbeddingClient{
		client:  openai.NewClient(apiKey),
		model:   openai.SmallEmbedding3,
		timeout: 10 * time.Second,
	}
}

func (c *OpenAIEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return pgvector.Vector{}, NewDependencyUnavailable("embedding", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, NewDependencyRejected("embedding", 0, "empty embedding response")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
