package filter

import (
	"context"
	"sort"

	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/schema"

	"github.com/Masterminds/squirrel"
)

// RawQuery is the unchecked query string as received.
type RawQuery map[string][]string

// First returns the first value of key, or "".
func (q RawQuery) First(key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// App is the application scope the query asks for, from `app` or
// `application`.
func (q RawQuery) App() string {
	return appScope(q)
}

type RoleResolver interface {
	UserIDsByRole(ctx context.Context, role string) ([]string, error)
}

type CollectionResolver interface {
	CollectionDatasetIDs(ctx context.Context, who *auth.Identity, collectionID string) ([]string, error)
}

type FavouriteResolver interface {
	FavouriteDatasetIDs(ctx context.Context, who *auth.Identity, app string) ([]string, error)
}

type VocabularyResolver interface {
	DatasetIDsByTags(ctx context.Context, vocabulary string, tags []string, app string) ([]string, error)
}

// Collaborators resolve the filters that depend on other services.
type Collaborators struct {
	Roles        RoleResolver
	Collections  CollectionResolver
	Favourites   FavouriteResolver
	Vocabularies VocabularyResolver
}

type Compiler struct {
	schema     *schema.Schema
	defaultEnv string
	collab     Collaborators
	rules      []rule
}

// NewCompiler builds a compiler. defaultEnv is the env membership applied
// when the query does not name one.
func NewCompiler(s *schema.Schema, defaultEnv string, collab Collaborators) *Compiler {
	return &Compiler{
		schema:     s,
		defaultEnv: defaultEnv,
		collab:     collab,
		rules:      defaultRules(),
	}
}

// Compile turns a raw query into a storage predicate. Rules run in a fixed
// order; a key claimed by one rule is not offered to later ones, and keys no
// rule claims are dropped.
func (c *Compiler) Compile(ctx context.Context, raw RawQuery, who *auth.Identity) (squirrel.Sqlizer, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	st := &state{c: c, raw: raw, who: who}
	claimed := make(map[string]bool, len(keys))
	for _, r := range c.rules {
		matched := false
		for _, k := range keys {
			if claimed[k] || !r.claims(c, k) {
				continue
			}
			claimed[k] = true
			matched = true
			if err := r.apply(ctx, st, k, raw[k]); err != nil {
				return nil, err
			}
			logger.Debug("filter_rule_applied", map[string]any{"rule": r.name(), "key": k})
		}
		if d, ok := r.(defaulter); ok && !matched {
			d.applyDefault(st)
		}
	}

	for _, k := range keys {
		if !claimed[k] {
			logger.Debug("filter_key_dropped", map[string]any{"key": k})
		}
	}
	return st.exprs, nil
}

// IDsIn restricts the result to the given dataset ids. An empty list matches
// nothing.
func IDsIn(ids []string) squirrel.Sqlizer {
	if ids == nil {
		ids = []string{}
	}
	return squirrel.Eq{"main.id": ids}
}

type state struct {
	c     *Compiler
	raw   RawQuery
	who   *auth.Identity
	exprs squirrel.And
}

func (s *state) add(e squirrel.Sqlizer) {
	s.exprs = append(s.exprs, e)
}
