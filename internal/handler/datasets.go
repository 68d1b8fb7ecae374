package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/filter"
	"DatasetCatalog/internal/join"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/paginate"
	"DatasetCatalog/internal/resolver"

	"github.com/julienschmidt/httprouter"
)

const (
	endpoint     = "/api/dataset"
	resourceType = "dataset"

	keyPageNumber = "page[number]"
	keyPageSize   = "page[size]"
	keyIncludes   = "includes"
	keyLoggedUser = "loggedUser"
)

// Lister resolves one listing request into a joined page.
type Lister interface {
	Resolve(ctx context.Context, req resolver.Request) (paginate.Result, error)
}

type Datasets struct {
	lister Lister
}

func NewDatasets(l Lister) *Datasets {
	return &Datasets{lister: l}
}

type resource struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

type meta struct {
	TotalPages int64  `json:"total-pages"`
	TotalItems int64  `json:"total-items"`
	Size       uint64 `json:"size"`
}

type listResponse struct {
	Data  []resource     `json:"data"`
	Links paginate.Links `json:"links"`
	Meta  meta           `json:"meta"`
}

type errorBody struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// List serves GET /api/dataset.
func (h *Datasets) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	includes, err := join.ParseIncludes(q.Get(keyIncludes))
	if err != nil {
		writeError(w, err)
		return
	}
	page := paginate.Page{
		Number: parseUint(q.Get(keyPageNumber)),
		Size:   parseUint(q.Get(keyPageSize)),
	}.Normalize()

	raw := filter.RawQuery{}
	for k, v := range q {
		switch k {
		case keyPageNumber, keyPageSize, keyIncludes, keyLoggedUser:
			continue
		}
		raw[k] = v
	}

	res, err := h.lister.Resolve(r.Context(), resolver.Request{
		Raw:      raw,
		Page:     page,
		Includes: includes,
		Identity: auth.IdentityFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	body := listResponse{
		Data:  make([]resource, 0, len(res.Items)),
		Links: paginate.BuildLinks(selfURL(r), res.Page, res.Pages),
		Meta:  meta{TotalPages: res.Pages, TotalItems: res.Total, Size: res.Page.Size},
	}
	for _, d := range res.Items {
		body.Data = append(body.Data, resource{ID: d.ID, Type: resourceType, Attributes: d.Attributes})
	}
	writeJSON(w, http.StatusOK, body)
}

// Health serves GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseUint(v string) uint64 {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// selfURL is the public URL of the request without the gateway-injected
// identity.
func selfURL(r *http.Request) url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	q := r.URL.Query()
	q.Del(keyLoggedUser)
	return url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	fields := map[string]any{"endpoint": endpoint, "status": status, "error": err.Error()}
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed", fields)
	} else {
		logger.Warn("request_rejected", fields)
	}
	writeJSON(w, status, map[string]any{
		"errors": []errorBody{{Status: status, Detail: apperr.Detail(err)}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
	}
}
