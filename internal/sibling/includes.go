package sibling

import (
	"context"
	"fmt"
	"net/http"
)

var findByIDsPaths = map[string]string{
	"layer":      "/v1/layer/find-by-ids",
	"widget":     "/v1/widget/find-by-ids",
	"vocabulary": "/v1/dataset/vocabulary/find-by-ids",
	"metadata":   "/v1/dataset/metadata/find-by-ids",
	"graph":      "/v1/graph/query/list-concepts/find-by-ids",
	"user":       "/v1/user/find-by-ids",
}

type findByIDsRequest struct {
	IDs []string `json:"ids"`
	App string   `json:"app,omitempty"`
	Env string   `json:"env,omitempty"`
}

// FindByIDs fetches the resources of one sibling type related to ids.
func (c *Client) FindByIDs(ctx context.Context, resource string, ids []string, f Filter) ([]Envelope, error) {
	path, ok := findByIDsPaths[resource]
	if !ok {
		return nil, fmt.Errorf("unknown sibling resource %q", resource)
	}

	var doc listDocument
	body := findByIDsRequest{IDs: ids, App: f.App, Env: f.Env}
	if err := c.do(ctx, resource, http.MethodPost, path, nil, body, &doc); err != nil {
		return nil, err
	}

	out := make([]Envelope, 0, len(doc.Data))
	for _, item := range doc.Data {
		out = append(out, toEnvelope(item))
	}
	return out, nil
}
