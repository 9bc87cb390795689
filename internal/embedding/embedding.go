package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"resume-folio/internal/config"
)

// maxChars bounds the text sent to the embedding model.
const maxChars = 4000

// NewEmbedder creates an embedder for the configured provider.
func NewEmbedder(cfg config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("provider", cfg.Provider).
		Str("base_url", cfg.BaseURL).
		Str("embedding_model", cfg.Model).
		Msg("creating embedder")

	var client embeddings.EmbedderClient
	switch cfg.Provider {
	case "", "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init ollama: %w", err)
		}
		client = llm
	case "openai":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
			openai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return embeddings.NewEmbedder(client)
}

// ChromemFunc adapts e to the function type the profile index embeds with.
func ChromemFunc(e embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.EmbedQuery(ctx, truncate(text, maxChars))
	}
}

// truncate cuts s to at most max bytes at a word boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	var b strings.Builder
	for _, word := range strings.Fields(s) {
		if b.Len()+len(word)+1 > max {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String()
}
