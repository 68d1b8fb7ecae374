package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/join"
	"DatasetCatalog/internal/paginate"
	"DatasetCatalog/internal/resolver"
	"DatasetCatalog/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	got resolver.Request
	res paginate.Result
	err error
}

func (s *stubLister) Resolve(_ context.Context, req resolver.Request) (paginate.Result, error) {
	s.got = req
	return s.res, s.err
}

func serve(h *Datasets, target string, who *auth.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if who != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), who))
	}
	w := httptest.NewRecorder()
	h.List(w, req, httprouter.Params{})
	return w
}

func TestListParsesQuery(t *testing.T) {
	l := &stubLister{res: paginate.Result{Page: paginate.Page{Number: 2, Size: 5}}}
	who := &auth.Identity{ID: "u1", Role: "ADMIN"}

	w := serve(NewDatasets(l), "/api/dataset?name=forest&sort=-name&includes=widget,layer&page[number]=2&page[size]=5&loggedUser=x", who)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, paginate.Page{Number: 2, Size: 5}, l.got.Page)
	assert.Equal(t, []join.Include{join.Widget, join.Layer}, l.got.Includes)
	assert.Equal(t, who, l.got.Identity)
	if diff := cmp.Diff(map[string][]string{"name": {"forest"}, "sort": {"-name"}}, map[string][]string(l.got.Raw)); diff != "" {
		t.Fatalf("raw query mismatch (-want +got):\n%s", diff)
	}
}

func TestListDefaultsPage(t *testing.T) {
	l := &stubLister{}
	serve(NewDatasets(l), "/api/dataset?page[size]=1000&page[number]=abc", nil)
	assert.Equal(t, paginate.Page{Number: 1, Size: paginate.MaxSize}, l.got.Page)
}

func TestListResponseShape(t *testing.T) {
	l := &stubLister{res: paginate.Result{
		Items: []store.Dataset{{ID: "d1", Attributes: map[string]any{"name": "one", "widget": []any{}}}},
		Total: 11,
		Page:  paginate.Page{Number: 2, Size: 10},
		Pages: 2,
	}}

	w := serve(NewDatasets(l), "/api/dataset?page[number]=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID         string         `json:"id"`
			Type       string         `json:"type"`
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
		Links map[string]string `json:"links"`
		Meta  map[string]int    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Data, 1)
	assert.Equal(t, "dataset", body.Data[0].Type)
	assert.Equal(t, []any{}, body.Data[0].Attributes["widget"])
	assert.Equal(t, map[string]int{"total-pages": 2, "total-items": 11, "size": 10}, body.Meta)
	assert.Equal(t, body.Links["last"], body.Links["next"])
	assert.Contains(t, body.Links["prev"], "page%5Bnumber%5D=1")
}

func TestListErrors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		err    error
		status int
		detail string
	}{
		{"bad include", "/api/dataset?includes=bogus", nil, http.StatusBadRequest, "Invalid includes value: bogus"},
		{"forbidden", "/api/dataset", apperr.Forbidden("Sorting by user name or role not authorized."), http.StatusForbidden, "Sorting by user name or role not authorized."},
		{"unauthorized", "/api/dataset", apperr.Unauthorized("Collection filter not authorized"), http.StatusUnauthorized, "Collection filter not authorized"},
		{"upstream", "/api/dataset", apperr.Upstream("widget", errors.New("timeout")), http.StatusBadGateway, "widget request failed: timeout"},
		{"internal", "/api/dataset", errors.New("pg down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(NewDatasets(&stubLister{err: tc.err}), tc.target, nil)
			require.Equal(t, tc.status, w.Code)

			var body struct {
				Errors []errorBody `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tc.detail, body.Errors[0].Detail)
			assert.Equal(t, tc.status, body.Errors[0].Status)
		})
	}
}
