// Package vectorstore talks to Qdrant over its REST API. Only the three
// operations the assistant needs are implemented: recreate the collection,
// upsert points, nearest-neighbor search.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoavien/restaurant-bot/internal/logger"
)

const maxErrorBodyBytes = 1024

// Point IDs sent to Qdrant are UUIDv5 of the document id so re-ingesting the
// same data overwrites instead of duplicating.
var pointIDNamespace = uuid.MustParse("8ff56a2b-54d2-47c1-9e77-2f6e4e3a9d01")

type Config struct {
	URL        string
	Collection string
	VectorDim  int
}

// ConfigFromEnv reads QDRANT_URL, QDRANT_COLLECTION and VECTOR_DIM with the
// defaults the Hòa Viên deployment uses.
func ConfigFromEnv() Config {
	cfg := Config{
		URL:        strings.TrimSpace(os.Getenv("QDRANT_URL")),
		Collection: strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")),
		VectorDim:  1024,
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:6333"
	}
	if cfg.Collection == "" {
		cfg.Collection = "hoa_vien_data"
	}
	if v := strings.TrimSpace(os.Getenv("VECTOR_DIM")); v != "" {
		if dim, err := strconv.Atoi(v); err == nil && dim > 0 {
			cfg.VectorDim = dim
		}
	}
	return cfg
}

// Point is one embedded document going into the collection.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Hit is one search result with its payload and similarity score.
type Hit struct {
	Score   float64
	Payload map[string]any
}

type Store struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

func NewQdrant(log *logger.Logger, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection required")
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("vector dim must be positive, got %d", cfg.VectorDim)
	}

	s := &Store{
		log:     log.With("service", "QdrantStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	s.log.Info("qdrant store configured",
		"url", s.baseURL, "collection", cfg.Collection, "vector_dim", cfg.VectorDim)
	return s, nil
}

// RecreateCollection drops and recreates the collection with cosine distance
// at the configured dimension.
func (s *Store) RecreateCollection(ctx context.Context) error {
	// A 404 on delete just means a first run; PUT reports real trouble.
	if err := s.doJSON(ctx, http.MethodDelete, s.collectionPath(""), nil, nil); err != nil {
		s.log.Debug("collection delete before recreate", "error", err)
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.cfg.VectorDim,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, s.collectionPath(""), req, nil); err != nil {
		return fmt.Errorf("recreate collection %q: %w", s.cfg.Collection, err)
	}
	return nil
}

// Upsert writes points into the collection, waiting for the operation.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("point id required")
		}
		if len(p.Vector) != s.cfg.VectorDim {
			return fmt.Errorf("point %q dimension mismatch: expected=%d got=%d",
				p.ID, s.cfg.VectorDim, len(p.Vector))
		}
		body = append(body, map[string]any{
			"id":      s.pointID(p.ID),
			"vector":  p.Vector,
			"payload": p.Payload,
		})
	}

	req := map[string]any{"points": body}
	if err := s.doJSON(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the k nearest payloads in the rank order Qdrant gives.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if len(vector) != s.cfg.VectorDim {
		return nil, fmt.Errorf("query vector dimension mismatch: expected=%d got=%d",
			s.cfg.VectorDim, len(vector))
	}
	if k <= 0 {
		k = 3
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"with_vector":  false,
	}
	var raw []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	}
	if err := s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &raw); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(raw))
	for _, item := range raw {
		hits = append(hits, Hit{Score: item.Score, Payload: item.Payload})
	}
	return hits, nil
}

// VectorDim reports the configured collection dimension so callers can verify
// the embedding backend matches before ingesting.
func (s *Store) VectorDim() int { return s.cfg.VectorDim }

func (s *Store) pointID(docID string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(docID)).String()
}

func (s *Store) collectionPath(suffix string) string {
	return "/collections/" + s.cfg.Collection + suffix
}

func (s *Store) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*maxErrorBodyBytes*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if msg := statusError(env.Status); msg != "" {
		return fmt.Errorf("qdrant status: %s", msg)
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func statusError(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return statusString
	}
	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && statusObject.Error != "" {
		return statusObject.Error
	}
	return trimmed
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
