// Package ingest loads the restaurant's data files, embeds them and fills the
// vector collection. It runs at startup so the index always matches the files
// on disk.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/vectorstore"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	RecreateCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []vectorstore.Point) error
	VectorDim() int
}

type document struct {
	id     string
	text   string
	source string
}

type Ingestor struct {
	log      *logger.Logger
	store    VectorStore
	embedder Embedder
}

func New(log *logger.Logger, store VectorStore, embedder Embedder) *Ingestor {
	return &Ingestor{
		log:      log.With("service", "Ingestor"),
		store:    store,
		embedder: embedder,
	}
}

// Run recreates the collection and ingests the menu, the restaurant info file
// and the FAQ. Missing files degrade to fewer documents; an embedding
// dimension that does not match the collection is a fatal setup error.
func (ing *Ingestor) Run(ctx context.Context, menuPath, infoPath string) error {
	docs := ing.loadMenuDocs(menuPath)
	docs = append(docs, ing.loadInfoDocs(infoPath)...)
	if len(docs) == 0 {
		ing.log.Warn("no documents to ingest, retrieval will return nothing")
		return nil
	}

	if err := ing.store.RecreateCollection(ctx); err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}

	points := make([]vectorstore.Point, 0, len(docs))
	for _, doc := range docs {
		vec, err := ing.embedder.Embed(ctx, doc.text)
		if err != nil {
			return fmt.Errorf("embed %q: %w", doc.id, err)
		}
		if len(vec) != ing.store.VectorDim() {
			return fmt.Errorf("embedding dimension mismatch: collection=%d backend=%d",
				ing.store.VectorDim(), len(vec))
		}
		points = append(points, vectorstore.Point{
			ID:     doc.id,
			Vector: vec,
			Payload: map[string]any{
				"text":   doc.text,
				"source": doc.source,
			},
		})
	}

	if err := ing.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	ing.log.Info("ingestion complete", "documents", len(points))
	return nil
}

type ingestItem struct {
	ID     string `json:"id"`
	NameVN string `json:"name_vn"`
	NameEN string `json:"name_en"`
	Price  int    `json:"price"`
	Note   string `json:"note"`
}

// The menu file comes in two shapes: the nested "menu → categories" document
// the order store reads, and a bare category list. Both are accepted.
type nestedMenuFile struct {
	Menu struct {
		Categories []struct {
			NameVN string       `json:"name_vn"`
			Items  []ingestItem `json:"items"`
		} `json:"categories"`
	} `json:"menu"`
	FAQ []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"faq"`
}

type flatMenuCategory struct {
	Category string       `json:"category"`
	Items    []ingestItem `json:"items"`
}

func (ing *Ingestor) loadMenuDocs(path string) []document {
	raw, err := os.ReadFile(path)
	if err != nil {
		ing.log.Warn("menu file not ingested", "path", path, "error", err)
		return nil
	}

	var docs []document
	appendItem := func(category string, item ingestItem) {
		text := fmt.Sprintf("Món ăn: %s (%s). Thuộc loại: %s. Giá: %d VND.",
			item.NameVN, item.NameEN, category, item.Price)
		if item.Note != "" {
			text += fmt.Sprintf(" Ghi chú: %s.", item.Note)
		}
		docs = append(docs, document{id: "menu_" + item.ID, text: text, source: "menu"})
	}

	var nested nestedMenuFile
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested.Menu.Categories) > 0 {
		for _, cat := range nested.Menu.Categories {
			for _, item := range cat.Items {
				appendItem(cat.NameVN, item)
			}
		}
		for i, pair := range nested.FAQ {
			text := fmt.Sprintf("Hỏi: %s Đáp: %s", pair.Question, pair.Answer)
			docs = append(docs, document{id: fmt.Sprintf("faq_%d", i), text: text, source: "faq"})
		}
		return docs
	}

	var flat []flatMenuCategory
	if err := json.Unmarshal(raw, &flat); err == nil {
		for _, cat := range flat {
			for _, item := range cat.Items {
				appendItem(cat.Category, item)
			}
		}
		return docs
	}

	ing.log.Warn("menu file shape not recognized", "path", path)
	return nil
}

func (ing *Ingestor) loadInfoDocs(path string) []document {
	raw, err := os.ReadFile(path)
	if err != nil {
		ing.log.Warn("restaurant info not ingested", "path", path, "error", err)
		return nil
	}

	var docs []document
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		docs = append(docs, document{
			id:     fmt.Sprintf("info_%d", i),
			text:   line,
			source: "info",
		})
	}
	return docs
}
