package app

import (
	"fmt"
	"net/http"

	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/config"
	"DatasetCatalog/internal/filter"
	"DatasetCatalog/internal/handler"
	"DatasetCatalog/internal/join"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/paginate"
	"DatasetCatalog/internal/rank"
	"DatasetCatalog/internal/resolver"
	"DatasetCatalog/internal/router"
	"DatasetCatalog/internal/schema"
	"DatasetCatalog/internal/sibling"
	"DatasetCatalog/internal/store"

	"github.com/redis/go-redis/v9"
)

// Build wires the service. rdb may be nil to run without the role cache.
func Build(cfg *config.Config, db store.Querier, rdb *redis.Client) (http.Handler, error) {
	s, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	logger.Info("schema_loaded", map[string]any{
		"table":  s.Table,
		"fields": len(s.Fields),
		"file":   cfg.SchemaFile,
	})

	siblings := sibling.New(cfg.Siblings.BaseURL, cfg.Siblings.Timeout,
		sibling.WithRateLimit(cfg.Siblings.RateLimit))

	var roles filter.RoleResolver = siblings
	if rdb != nil {
		roles = sibling.NewRoleCache(siblings, rdb, cfg.RoleCacheTTL)
	}

	compiler := filter.NewCompiler(s, cfg.DefaultEnv, filter.Collaborators{
		Roles:        roles,
		Collections:  siblings,
		Favourites:   siblings,
		Vocabularies: siblings,
	})

	res := resolver.New(resolver.Options{
		Compiler:   compiler,
		Ranks:      rank.NewResolver(s, siblings, siblings),
		Search:     siblings,
		Paginator:  paginate.New(store.NewPostgres(db, s), cfg.MaxDelegatedResults),
		Joiner:     join.New(siblings),
		Policy:     auth.Policy{PrivilegedRoles: cfg.PrivilegedRoles},
		DefaultEnv: cfg.DefaultEnv,
	})

	var validator *auth.JWTValidator
	if cfg.Auth.Enabled {
		validator, err = auth.NewJWTValidator(cfg.Auth.JWT)
		if err != nil {
			return nil, fmt.Errorf("jwt validator: %w", err)
		}
	}
	logger.Info("auth_mode", map[string]any{"jwt": cfg.Auth.Enabled})

	return router.New(handler.NewDatasets(res), validator, cfg.CORS), nil
}
