package resolver

import (
	"context"
	"strings"

	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/filter"
	"DatasetCatalog/internal/join"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/paginate"
	"DatasetCatalog/internal/rank"
	"DatasetCatalog/internal/sibling"

	"github.com/Masterminds/squirrel"
)

const (
	keySearch = "search"
	keySort   = "sort"
	keyEnv    = "env"
)

// Searcher runs free-text searches over dataset metadata.
type Searcher interface {
	SearchDatasetIDs(ctx context.Context, terms, sort, app, env string) ([]string, error)
}

// Request is one dataset listing query.
type Request struct {
	Raw      filter.RawQuery
	Page     paginate.Page
	Includes []join.Include
	Identity *auth.Identity
}

type Resolver struct {
	compiler   *filter.Compiler
	ranks      *rank.Resolver
	search     Searcher
	pages      *paginate.Paginator
	joiner     *join.Joiner
	policy     auth.Policy
	defaultEnv string
}

type Options struct {
	Compiler   *filter.Compiler
	Ranks      *rank.Resolver
	Search     Searcher
	Paginator  *paginate.Paginator
	Joiner     *join.Joiner
	Policy     auth.Policy
	DefaultEnv string
}

func New(o Options) *Resolver {
	return &Resolver{
		compiler:   o.Compiler,
		ranks:      o.Ranks,
		search:     o.Search,
		pages:      o.Paginator,
		joiner:     o.Joiner,
		policy:     o.Policy,
		defaultEnv: o.DefaultEnv,
	}
}

// Resolve compiles the filters, resolves the sort, reads one page and
// embeds the requested includes. It either returns a fully joined page or
// an error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (paginate.Result, error) {
	privileged := r.policy.IsPrivileged(req.Identity)
	app := req.Raw.App()
	env := req.Raw.First(keyEnv)
	if env == "" {
		env = r.defaultEnv
	}

	in := rank.Input{
		Tokens:      rank.Parse(req.Raw.First(keySort)),
		SearchTerms: strings.TrimSpace(req.Raw.First(keySearch)),
		Privileged:  privileged,
		App:         app,
		Env:         env,
	}
	if err := rank.Check(in); err != nil {
		return paginate.Result{}, err
	}

	if in.SearchTerms != "" {
		ids, err := r.search.SearchDatasetIDs(ctx, in.SearchTerms, rank.SearchKeyword(in.Tokens), app, env)
		if err != nil {
			return paginate.Result{}, err
		}
		if ids == nil {
			ids = []string{}
		}
		in.SearchIDs = ids
	}

	plan, err := r.ranks.Resolve(ctx, in)
	if err != nil {
		return paginate.Result{}, err
	}

	pred, err := r.compiler.Compile(ctx, req.Raw, req.Identity)
	if err != nil {
		return paginate.Result{}, err
	}
	if in.SearchIDs != nil {
		pred = squirrel.And{pred, filter.IDsIn(in.SearchIDs)}
	}

	logger.Debug("query_plan", map[string]any{
		"strategy": plan.Strategy.String(),
		"source":   string(plan.Source),
		"search":   in.SearchIDs != nil,
		"page":     req.Page.Number,
	})

	res, err := r.pages.Paginate(ctx, pred, plan, req.Page)
	if err != nil {
		return paginate.Result{}, err
	}

	err = r.joiner.Join(ctx, res.Items, req.Includes, join.Request{
		Privileged: privileged,
		Filter:     sibling.Filter{App: app, Env: env},
	})
	if err != nil {
		return paginate.Result{}, err
	}
	return res, nil
}
