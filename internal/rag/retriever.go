package rag

import (
	"context"
	"fmt"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/vectorstore"
)

// Embedder turns text into a vector matching the collection dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the nearest-neighbor side of the vector store.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Hit, error)
}

// Retriever fetches context snippets for a query. No results is a valid,
// non-error outcome.
type Retriever struct {
	log      *logger.Logger
	embedder Embedder
	store    Searcher
}

func NewRetriever(log *logger.Logger, embedder Embedder, store Searcher) *Retriever {
	return &Retriever{
		log:      log.With("service", "Retriever"),
		embedder: embedder,
		store:    store,
	}
}

// Retrieve embeds the query and returns the text payloads of the k nearest
// hits in the store's rank order. No re-ranking.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if text, ok := hit.Payload["text"].(string); ok && text != "" {
			contexts = append(contexts, text)
		}
	}
	r.log.Debug("context retrieved", "hits", len(hits), "contexts", len(contexts))
	return contexts, nil
}
