package join

import (
	"context"
	"fmt"

	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/sibling"
	"DatasetCatalog/internal/store"

	"golang.org/x/sync/errgroup"
)

// Fetcher loads sibling resources related to a set of ids.
type Fetcher interface {
	FindByIDs(ctx context.Context, resource string, ids []string, f sibling.Filter) ([]sibling.Envelope, error)
}

// Request carries the caller-dependent parts of a join.
type Request struct {
	Privileged bool
	Filter     sibling.Filter
}

type Joiner struct {
	fetcher Fetcher
}

func New(f Fetcher) *Joiner {
	return &Joiner{fetcher: f}
}

// Join embeds every include into records. One call per include runs
// concurrently; the first failure cancels the rest and fails the join, in
// which case records are left untouched.
func (j *Joiner) Join(ctx context.Context, records []store.Dataset, includes []Include, req Request) error {
	if len(records) == 0 || len(includes) == 0 {
		return nil
	}

	datasetIDs := make([]string, len(records))
	for i, r := range records {
		datasetIDs[i] = r.ID
	}
	ownerIDs := distinctOwners(records)

	groups := make([]map[string]any, len(includes))
	g, gctx := errgroup.WithContext(ctx)
	for i, inc := range includes {
		i, inc := i, inc
		ids := datasetIDs
		if inc == User {
			ids = ownerIDs
		}
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			envs, err := j.fetcher.FindByIDs(gctx, string(inc), ids, req.Filter)
			if err != nil {
				return fmt.Errorf("include %s: %w", inc, err)
			}
			groups[i] = group(inc, envs, req.Privileged)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("join_failed", map[string]any{"error": err.Error()})
		return err
	}

	for k := range records {
		if records[k].Attributes == nil {
			records[k].Attributes = map[string]any{}
		}
		for i, inc := range includes {
			records[k].Attributes[string(inc)] = lookup(inc, groups[i], records[k])
		}
	}
	return nil
}

func distinctOwners(records []store.Dataset) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range records {
		if r.UserID == "" {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r.UserID)
	}
	return out
}

// group indexes a sibling response. Vocabulary responses are keyed by the
// nested resource id, users by their own id and every other include by the
// flat dataset field.
func group(inc Include, envs []sibling.Envelope, privileged bool) map[string]any {
	out := map[string]any{}
	switch inc {
	case Vocabulary:
		for _, e := range envs {
			res, _ := e.Attributes["resource"].(map[string]any)
			key, _ := res["id"].(string)
			if key == "" {
				continue
			}
			out[key] = append(asList(out[key]), envelopeDoc(e))
		}
	case User:
		for _, e := range envs {
			if !privileged {
				out[e.ID] = map[string]any{}
				continue
			}
			u, err := sibling.DecodeUser(e)
			if err != nil {
				continue
			}
			out[e.ID] = map[string]any{"name": u.Name, "email": u.Email, "role": u.Role}
		}
	default:
		for _, e := range envs {
			key, _ := e.Attributes["dataset"].(string)
			if key == "" {
				continue
			}
			out[key] = append(asList(out[key]), envelopeDoc(e))
		}
	}
	return out
}

func lookup(inc Include, groups map[string]any, r store.Dataset) any {
	if inc == User {
		if v, ok := groups[r.UserID]; ok {
			return v
		}
		return map[string]any{}
	}
	if v, ok := groups[r.ID]; ok {
		return v
	}
	return []any{}
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func envelopeDoc(e sibling.Envelope) map[string]any {
	return map[string]any{"id": e.ID, "type": e.Type, "attributes": e.Attributes}
}
