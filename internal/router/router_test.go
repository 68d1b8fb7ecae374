package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"DatasetCatalog/internal/config"
	"DatasetCatalog/internal/handler"
	"DatasetCatalog/internal/paginate"
	"DatasetCatalog/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyLister struct{}

func (emptyLister) Resolve(context.Context, resolver.Request) (paginate.Result, error) {
	return paginate.Result{}, nil
}

func newTestRouter() http.Handler {
	return New(handler.NewDatasets(emptyLister{}), nil, config.CORSConfig{AllowOrigin: "*"})
}

func TestRoutes(t *testing.T) {
	h := newTestRouter()
	for _, path := range []string{"/api/dataset", "/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"), path)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/dataset", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc")
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)
	require.Equal(t, "abc", w.Header().Get("X-Request-Id"))
}
