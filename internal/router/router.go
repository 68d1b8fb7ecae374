package router

import (
	"net/http"
	"strconv"
	"time"

	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/config"
	"DatasetCatalog/internal/handler"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/metrics"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	pathDatasets = "/api/dataset"
	pathHealth   = "/healthz"
	pathMetrics  = "/metrics"
)

var knownPaths = map[string]struct{}{
	pathDatasets: {},
	pathHealth:   {},
	pathMetrics:  {},
}

// New builds the HTTP handler. validator may be nil, in which case the
// gateway-injected identity is trusted.
func New(datasets *handler.Datasets, validator *auth.JWTValidator, cors config.CORSConfig) http.Handler {
	r := httprouter.New()
	r.GET(pathDatasets, datasets.List)
	r.GET(pathHealth, handler.Health)
	r.Handler(http.MethodGet, pathMetrics, promhttp.Handler())
	r.HandleOPTIONS = false

	return withCORS(cors.AllowOrigin, cors.AllowCredentials,
		withLogging(gzhttp.GzipHandler(auth.Middleware(validator, r))))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		path := r.URL.Path
		if _, ok := knownPaths[path]; !ok {
			path = "other"
		}
		metrics.RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())

		fields := map[string]any{
			"request_id":  reqID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": elapsed.Milliseconds(),
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	})
}
