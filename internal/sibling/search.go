package sibling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/rank"
)

const (
	serviceSearch = "metadata"
	serviceGraph  = "graph"
)

var rankingPaths = map[rank.Source]string{
	rank.SourceMostFavorited: "/v1/graph/query/most-liked-datasets",
	rank.SourceMostViewed:    "/v1/graph/query/most-viewed-datasets",
}

// SearchDatasetIDs runs a free-text search and returns the matching dataset
// ids in the order the search service ranked them. sort is forwarded
// verbatim; a 400 from the search service becomes an InvalidRequest
// carrying its detail.
func (c *Client) SearchDatasetIDs(ctx context.Context, terms, sort, app, env string) ([]string, error) {
	q := url.Values{"search": {terms}}
	if sort != "" {
		q.Set("sort", sort)
	}
	if app != "" {
		q.Set("application", app)
	}
	if env != "" {
		q.Set("env", env)
	}

	var doc listDocument
	if err := c.do(ctx, serviceSearch, http.MethodGet, "/v1/metadata", q, nil, &doc); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusBadRequest {
			return nil, apperr.InvalidRequest(se.Detail)
		}
		return nil, err
	}

	ids := make([]string, 0, len(doc.Data))
	seen := make(map[string]struct{}, len(doc.Data))
	for _, item := range doc.Data {
		e := toEnvelope(item)
		ids = appendUnique(ids, seen, str(e.Attributes["dataset"]))
	}
	return ids, nil
}

// RankedDatasetIDs returns dataset ids ordered by usage, most used first.
func (c *Client) RankedDatasetIDs(ctx context.Context, source rank.Source, app, env string) ([]string, error) {
	path, ok := rankingPaths[source]
	if !ok {
		return nil, fmt.Errorf("no usage ranking for %q", source)
	}
	q := url.Values{}
	if app != "" {
		q.Set("application", app)
	}
	if env != "" {
		q.Set("env", env)
	}

	var doc listDocument
	if err := c.do(ctx, serviceGraph, http.MethodGet, path, q, nil, &doc); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(doc.Data))
	seen := make(map[string]struct{}, len(doc.Data))
	for _, item := range doc.Data {
		ids = appendUnique(ids, seen, str(item["id"]))
	}
	return ids, nil
}
