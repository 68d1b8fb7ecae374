package filter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/schema"

	"github.com/Masterminds/squirrel"
)

const (
	keyEnv          = "env"
	keyUserID       = "userId"
	keyUsersRole    = "usersRole"
	keySubscribable = "subscribable"
	keyCollection   = "collection"
	keyFavourite    = "favourite"
	keyApp          = "app"
	vocabularyKey   = "vocabulary["

	appField = "application"
)

// rule is one filter compilation strategy. The set is closed: every rule is
// declared in this file and ordered by defaultRules.
type rule interface {
	name() string
	claims(c *Compiler, key string) bool
	apply(ctx context.Context, st *state, key string, values []string) error
}

// defaulter is a rule that contributes a predicate when none of its keys
// are present.
type defaulter interface {
	applyDefault(st *state)
}

func defaultRules() []rule {
	return []rule{
		envRule{},
		userIDRule{},
		usersRoleRule{},
		subscribableRule{},
		collectionRule{},
		favouriteRule{},
		vocabularyRule{},
		appAliasRule{},
		fieldRule{},
	}
}

type envRule struct{}

func (envRule) name() string { return "env" }

func (envRule) claims(_ *Compiler, key string) bool { return key == keyEnv }

func (envRule) apply(_ context.Context, st *state, _ string, values []string) error {
	envs := splitList(strings.Join(values, ","), ",")
	if len(envs) == 0 {
		envs = []string{st.c.defaultEnv}
	}
	st.add(squirrel.Eq{"main.env": envs})
	return nil
}

func (envRule) applyDefault(st *state) {
	st.add(squirrel.Eq{"main.env": []string{st.c.defaultEnv}})
}

type userIDRule struct{}

func (userIDRule) name() string { return "userId" }

func (userIDRule) claims(_ *Compiler, key string) bool { return key == keyUserID }

func (userIDRule) apply(_ context.Context, st *state, _ string, values []string) error {
	v := strings.TrimSpace(first(values))
	if v == "" {
		return nil
	}
	st.add(squirrel.Eq{"main.user_id": v})
	return nil
}

type usersRoleRule struct{}

func (usersRoleRule) name() string { return "usersRole" }

func (usersRoleRule) claims(_ *Compiler, key string) bool { return key == keyUsersRole }

func (usersRoleRule) apply(ctx context.Context, st *state, _ string, values []string) error {
	role := strings.ToUpper(strings.TrimSpace(first(values)))
	if role == "" {
		return nil
	}
	ids, err := st.c.collab.Roles.UserIDsByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("usersRole filter: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	st.add(squirrel.Eq{"main.user_id": ids})
	return nil
}

const subscribableEmpty = "('null'::jsonb, 'false'::jsonb, '{}'::jsonb)"

type subscribableRule struct{}

func (subscribableRule) name() string { return "subscribable" }

func (subscribableRule) claims(_ *Compiler, key string) bool { return key == keySubscribable }

func (subscribableRule) apply(_ context.Context, st *state, _ string, values []string) error {
	switch strings.ToLower(strings.TrimSpace(first(values))) {
	case "true":
		st.add(squirrel.Expr("(main.subscribable IS NOT NULL AND main.subscribable NOT IN " + subscribableEmpty + ")"))
	case "false":
		st.add(squirrel.Expr("(main.subscribable IS NULL OR main.subscribable IN " + subscribableEmpty + ")"))
	}
	return nil
}

type collectionRule struct{}

func (collectionRule) name() string { return "collection" }

func (collectionRule) claims(_ *Compiler, key string) bool { return key == keyCollection }

func (collectionRule) apply(ctx context.Context, st *state, _ string, values []string) error {
	id := strings.TrimSpace(first(values))
	if id == "" {
		return nil
	}
	if !st.who.Authenticated() {
		return apperr.Unauthorized("Collection filter not authorized")
	}
	ids, err := st.c.collab.Collections.CollectionDatasetIDs(ctx, st.who, id)
	if err != nil {
		return fmt.Errorf("collection filter: %w", err)
	}
	st.add(IDsIn(ids))
	return nil
}

type favouriteRule struct{}

func (favouriteRule) name() string { return "favourite" }

func (favouriteRule) claims(_ *Compiler, key string) bool { return key == keyFavourite }

func (favouriteRule) apply(ctx context.Context, st *state, _ string, values []string) error {
	if enabled, err := strconv.ParseBool(strings.TrimSpace(first(values))); err == nil && !enabled {
		return nil
	}
	if !st.who.Authenticated() {
		return apperr.Unauthorized("Favourite filter not authorized")
	}
	ids, err := st.c.collab.Favourites.FavouriteDatasetIDs(ctx, st.who, appScope(st.raw))
	if err != nil {
		return fmt.Errorf("favourite filter: %w", err)
	}
	st.add(IDsIn(ids))
	return nil
}

// vocabularyRule handles vocabulary[<name>]=tag1,tag2.
type vocabularyRule struct{}

func (vocabularyRule) name() string { return "vocabulary" }

func (vocabularyRule) claims(_ *Compiler, key string) bool {
	return strings.HasPrefix(key, vocabularyKey) && strings.HasSuffix(key, "]") && len(key) > len(vocabularyKey)+1
}

func (vocabularyRule) apply(ctx context.Context, st *state, key string, values []string) error {
	vocab := key[len(vocabularyKey) : len(key)-1]
	tags := splitList(strings.Join(values, ","), ",")
	if len(tags) == 0 {
		return nil
	}
	ids, err := st.c.collab.Vocabularies.DatasetIDsByTags(ctx, vocab, tags, appScope(st.raw))
	if err != nil {
		return fmt.Errorf("vocabulary filter %s: %w", vocab, err)
	}
	st.add(IDsIn(ids))
	return nil
}

// appAliasRule treats `app` as the `application` array field.
type appAliasRule struct{}

func (appAliasRule) name() string { return "app" }

func (appAliasRule) claims(c *Compiler, key string) bool {
	if key != keyApp {
		return false
	}
	f, ok := c.schema.Field(appField)
	return ok && f.Kind == schema.KindArray
}

func (appAliasRule) apply(_ context.Context, st *state, _ string, values []string) error {
	f, _ := st.c.schema.Field(appField)
	if e := arrayPredicate(f.Column, first(values)); e != nil {
		st.add(e)
	}
	return nil
}

// fieldRule compiles any known schema field by its kind.
type fieldRule struct{}

func (fieldRule) name() string { return "field" }

func (fieldRule) claims(c *Compiler, key string) bool {
	_, ok := c.schema.Field(key)
	return ok
}

func (fieldRule) apply(_ context.Context, st *state, key string, values []string) error {
	f, _ := st.c.schema.Field(key)
	v := first(values)
	col := "main." + f.Column

	switch f.Kind {
	case schema.KindString:
		if v == "" {
			return nil
		}
		st.add(squirrel.ILike{col: "%" + escapeLike(v) + "%"})
	case schema.KindArray:
		if e := arrayPredicate(f.Column, v); e != nil {
			st.add(e)
		}
	case schema.KindMixed:
		st.add(squirrel.NotEq{col: nil})
	case schema.KindDate:
		// passed through as given; storage does the cast
		st.add(squirrel.Eq{col: v})
	case schema.KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		st.add(squirrel.Eq{col: b})
	}
	return nil
}

// arrayPredicate: `a@b` must contain all values, `a,b` any of them.
func arrayPredicate(column, v string) squirrel.Sqlizer {
	col := "main." + column
	if strings.Contains(v, "@") {
		parts := splitList(v, "@")
		if len(parts) == 0 {
			return nil
		}
		return squirrel.Expr(col+" @> ?", parts)
	}
	parts := splitList(v, ",")
	if len(parts) == 0 {
		return nil
	}
	return squirrel.Expr(col+" && ?", parts)
}

func appScope(raw RawQuery) string {
	if v := raw.First(keyApp); v != "" {
		return v
	}
	return raw.First(appField)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func splitList(v, sep string) []string {
	var out []string
	for _, p := range strings.Split(v, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}
