package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/hoavien/restaurant-bot/internal/logger"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestStore(t *testing.T, dim int, fn roundTripperFunc) *Store {
	t.Helper()
	s, err := NewQdrant(logger.NewNop(), Config{
		URL:        "http://qdrant.test",
		Collection: "hoa_vien_data",
		VectorDim:  dim,
	})
	if err != nil {
		t.Fatalf("NewQdrant: %v", err)
	}
	s.http = &http.Client{Transport: fn}
	return s
}

func okResponse(t *testing.T, result any) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]any{"result": result, "status": "ok"})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestUpsertRequestShape(t *testing.T) {
	var captured map[string]any
	s := newTestStore(t, 3, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut {
			t.Fatalf("method: want=%s got=%s", http.MethodPut, r.Method)
		}
		if r.URL.Path != "/collections/hoa_vien_data/points" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if r.URL.RawQuery != "wait=true" {
			t.Fatalf("query: got=%q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, nil), nil
	})

	err := s.Upsert(context.Background(), []Point{
		{ID: "menu_M01", Vector: []float32{1, 2, 3}, Payload: map[string]any{"text": "Phở bò", "source": "menu"}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	points, ok := captured["points"].([]any)
	if !ok || len(points) != 1 {
		t.Fatalf("points: got=%v", captured["points"])
	}
	first := points[0].(map[string]any)
	if first["id"] != s.pointID("menu_M01") {
		t.Fatalf("point id: want deterministic uuid, got=%v", first["id"])
	}
	payload := first["payload"].(map[string]any)
	if payload["text"] != "Phở bò" {
		t.Fatalf("payload text: got=%v", payload["text"])
	}
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t, 4, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected on validation failure")
		return nil, nil
	})
	err := s.Upsert(context.Background(), []Point{{ID: "d1", Vector: []float32{1, 2}}})
	if err == nil {
		t.Fatalf("want dimension mismatch error")
	}
}

func TestSearchReturnsHitsInRankOrder(t *testing.T) {
	s := newTestStore(t, 2, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/hoa_vien_data/points/search" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["limit"] != float64(2) {
			t.Fatalf("limit: got=%v", req["limit"])
		}
		if req["with_payload"] != true {
			t.Fatalf("with_payload: got=%v", req["with_payload"])
		}
		return okResponse(t, []map[string]any{
			{"score": 0.92, "payload": map[string]any{"text": "first"}},
			{"score": 0.81, "payload": map[string]any{"text": "second"}},
		}), nil
	})

	hits, err := s.Search(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits: want=2 got=%d", len(hits))
	}
	if hits[0].Payload["text"] != "first" || hits[1].Payload["text"] != "second" {
		t.Fatalf("rank order not preserved: %+v", hits)
	}
}

func TestRecreateCollectionPutsVectorConfig(t *testing.T) {
	var methods []string
	s := newTestStore(t, 1024, func(r *http.Request) (*http.Response, error) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodPut {
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			vectors := req["vectors"].(map[string]any)
			if vectors["size"] != float64(1024) {
				t.Fatalf("size: got=%v", vectors["size"])
			}
			if vectors["distance"] != "Cosine" {
				t.Fatalf("distance: got=%v", vectors["distance"])
			}
		}
		return okResponse(t, nil), nil
	})

	if err := s.RecreateCollection(context.Background()); err != nil {
		t.Fatalf("RecreateCollection: %v", err)
	}
	if len(methods) != 2 || methods[0] != http.MethodDelete || methods[1] != http.MethodPut {
		t.Fatalf("methods: got=%v", methods)
	}
}

func TestStatusErrorSurfaces(t *testing.T) {
	s := newTestStore(t, 2, func(r *http.Request) (*http.Response, error) {
		body, _ := json.Marshal(map[string]any{"status": map[string]any{"error": "collection not found"}})
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body))}, nil
	})
	if _, err := s.Search(context.Background(), []float32{1, 2}, 1); err == nil {
		t.Fatalf("want qdrant status error")
	}
}
