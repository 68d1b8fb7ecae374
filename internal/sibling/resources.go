package sibling

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"

	"github.com/mitchellh/mapstructure"
)

const (
	serviceCollection = "collection"
	serviceFavourite  = "favourite"
	serviceVocabulary = "vocabulary"

	resourceDataset = "dataset"
)

type resourceRef struct {
	ID   string `mapstructure:"id"`
	Type string `mapstructure:"type"`
}

// CollectionDatasetIDs lists the datasets inside one of who's collections.
// A collection that does not exist resolves to no datasets.
func (c *Client) CollectionDatasetIDs(ctx context.Context, who *auth.Identity, collectionID string) ([]string, error) {
	q := url.Values{"userId": {who.ID}}
	path := "/v1/collection/" + url.PathEscape(collectionID)

	var doc objectDocument
	if err := c.do(ctx, serviceCollection, http.MethodGet, path, q, nil, &doc); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return []string{}, nil
		}
		return nil, err
	}
	if doc.Data == nil {
		return []string{}, nil
	}
	return datasetRefs(serviceCollection, toEnvelope(doc.Data).Attributes["resources"], nil, nil)
}

// FavouriteDatasetIDs lists the datasets who marked as favourite in app.
func (c *Client) FavouriteDatasetIDs(ctx context.Context, who *auth.Identity, app string) ([]string, error) {
	q := url.Values{"userId": {who.ID}}
	if app != "" {
		q.Set("application", app)
	}

	var doc listDocument
	if err := c.do(ctx, serviceFavourite, http.MethodGet, "/v1/favourite", q, nil, &doc); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(doc.Data))
	seen := make(map[string]struct{}, len(doc.Data))
	for _, item := range doc.Data {
		attrs := toEnvelope(item).Attributes
		if str(attrs["resourceType"]) != resourceDataset {
			continue
		}
		ids = appendUnique(ids, seen, str(attrs["resourceId"]))
	}
	return ids, nil
}

// DatasetIDsByTags lists datasets tagged with any of tags in vocabulary.
func (c *Client) DatasetIDsByTags(ctx context.Context, vocabulary string, tags []string, app string) ([]string, error) {
	q := url.Values{vocabulary: {strings.Join(tags, ",")}}
	if app != "" {
		q.Set("app", app)
	}

	var doc listDocument
	if err := c.do(ctx, serviceVocabulary, http.MethodGet, "/v1/dataset/vocabulary/find", q, nil, &doc); err != nil {
		return nil, err
	}

	ids := []string{}
	seen := map[string]struct{}{}
	for _, item := range doc.Data {
		var err error
		ids, err = datasetRefs(serviceVocabulary, toEnvelope(item).Attributes["resources"], ids, seen)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// datasetRefs appends the dataset ids found in a resources list.
func datasetRefs(service string, raw any, ids []string, seen map[string]struct{}) ([]string, error) {
	if ids == nil {
		ids = []string{}
	}
	if seen == nil {
		seen = map[string]struct{}{}
	}
	if raw == nil {
		return ids, nil
	}
	var refs []resourceRef
	if err := mapstructure.WeakDecode(raw, &refs); err != nil {
		return nil, apperr.Upstream(service, err)
	}
	for _, r := range refs {
		if r.Type != "" && r.Type != resourceDataset {
			continue
		}
		ids = appendUnique(ids, seen, r.ID)
	}
	return ids, nil
}
