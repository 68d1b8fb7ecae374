package itests

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"DatasetCatalog/internal/app"
	"DatasetCatalog/internal/config"
	"DatasetCatalog/internal/db"
)

var (
	testBaseURL string
	skipReason  string
)

const seedSQL = `
INSERT INTO datasets (id, user_id, env, name, slug, provider, application, subscribable, published, created_at)
VALUES
    ('d-forest', 'u-admin',   'production', 'Tree cover loss', 'tree-cover-loss', 'cartodb', '{rw,gfw}', '{"alerts": {}}', TRUE,  '2020-01-01T00:00:00Z'),
    ('d-water',  'u-manager', 'production', 'Water risk',      'water-risk',      'gee',     '{rw}',     NULL,             TRUE,  '2020-02-01T00:00:00Z'),
    ('d-fire',   'u-user',    'production', 'Fire alerts',     'fire-alerts',     'gee',     '{gfw}',    'false',          TRUE,  '2020-03-01T00:00:00Z'),
    ('d-draft',  'u-ghost',   'staging',    'Draft layer',     'draft-layer',     'cartodb', '{rw}',     NULL,             FALSE, '2020-04-01T00:00:00Z')
ON CONFLICT (id) DO NOTHING`

func TestMain(m *testing.M) {
	cfg := config.LoadConfig()

	teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN, db.InitPostgres)
	if err != nil {
		skipReason = "postgres unavailable: " + err.Error()
		log.Print(skipReason)
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err = db.Pool.Exec(ctx, seedSQL)
	cancel()
	if err != nil {
		println("seed failed:", err.Error())
		_ = teardownDB()
		os.Exit(1)
	}

	siblings := httptest.NewServer(fakeSiblings())
	cfg.Siblings.BaseURL = siblings.URL
	cfg.Auth.Enabled = false

	handler, err := app.Build(cfg, db.Pool, nil)
	if err != nil {
		println("app build failed:", err.Error())
		_ = teardownDB()
		os.Exit(1)
	}
	api := httptest.NewServer(handler)
	testBaseURL = api.URL

	code := m.Run()

	api.Close()
	siblings.Close()
	db.ClosePostgres()
	if err := teardownDB(); err != nil {
		println("drop test DB failed:", err.Error())
	}
	os.Exit(code)
}

// fakeSiblings answers the sibling endpoints the tests exercise.
func fakeSiblings() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/v1/graph/query/most-viewed-datasets", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"data": []any{
			map[string]any{"id": "d-fire"},
			map[string]any{"id": "d-forest"},
			map[string]any{"id": "d-unknown"},
		}})
	})
	mux.HandleFunc("/v1/metadata", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") == "relevance" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"errors": []any{
				map[string]any{"status": 400, "detail": "Sort by relevance ascending not supported"},
			}})
			return
		}
		write(w, map[string]any{"data": []any{
			map[string]any{"id": "m1", "attributes": map[string]any{"dataset": "d-water"}},
			map[string]any{"id": "m2", "attributes": map[string]any{"dataset": "d-forest"}},
		}})
	})
	mux.HandleFunc("/v1/widget/find-by-ids", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"data": []any{
			map[string]any{"id": "w1", "type": "widget", "attributes": map[string]any{"dataset": "d-forest"}},
		}})
	})
	mux.HandleFunc("/v1/dataset/vocabulary/find-by-ids", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"data": []any{}})
	})
	mux.HandleFunc("/v1/layer/find-by-ids", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return mux
}

func requireStack(t *testing.T) {
	t.Helper()
	if skipReason != "" {
		t.Skip(skipReason)
	}
}
