package rank

import (
	"context"
	"fmt"
	"strings"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/schema"

	"github.com/iancoleman/strcase"
)

const (
	keywordMostFavorited = "most-favorited"
	keywordMostViewed    = "most-viewed"
	keywordRelevance     = "relevance"
	keywordMetadata      = "metadata"

	fieldUserRole = "user.role"
	fieldUserName = "user.name"
)

const (
	msgRelevanceWithoutSearch = "Cannot sort by relevance without search criteria"
	msgUserSortForbidden      = "Sorting by user name or role not authorized."
)

// UsageRanker returns dataset ids ordered by a usage statistic, most first.
type UsageRanker interface {
	RankedDatasetIDs(ctx context.Context, source Source, app, env string) ([]string, error)
}

// UserDirectory resolves identity records by id.
type UserDirectory interface {
	FindUsers(ctx context.Context, ids []string) ([]auth.User, error)
}

// Input is everything the resolver needs from the request.
type Input struct {
	Tokens      []Token
	SearchTerms string
	// SearchIDs is the order returned by the search collaborator, nil when
	// no search was run.
	SearchIDs  []string
	Privileged bool
	App        string
	Env        string
}

type Resolver struct {
	schema *schema.Schema
	usage  UsageRanker
	users  UserDirectory
}

func NewResolver(s *schema.Schema, usage UsageRanker, users UserDirectory) *Resolver {
	return &Resolver{schema: s, usage: usage, users: users}
}

// Check runs the permission and precondition checks of a sort without
// calling any collaborator.
func Check(in Input) error {
	for _, t := range in.Tokens {
		if isUserField(t.Field) && !in.Privileged {
			return apperr.Forbidden(msgUserSortForbidden)
		}
		if isSearchKeyword(t.Field) && strings.TrimSpace(in.SearchTerms) == "" {
			return apperr.InvalidRequest(msgRelevanceWithoutSearch)
		}
	}
	return nil
}

// Resolve turns sort tokens into a plan. Check runs first, so a rejected
// sort never reaches storage.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Plan, error) {
	if err := Check(in); err != nil {
		return Plan{}, err
	}

	for _, t := range in.Tokens {
		switch t.Field {
		case keywordRelevance, keywordMetadata:
			src := SourceRelevance
			if t.Field == keywordMetadata {
				src = SourceMetadataOrder
			}
			ids := in.SearchIDs
			if ids == nil {
				ids = []string{}
			}
			return Plan{Strategy: DelegatedRank, Source: src, Desc: t.Desc, IDs: ids}, nil

		case keywordMostFavorited, keywordMostViewed:
			src := Source(strcase.ToLowerCamel(t.Field))
			ids, err := r.usage.RankedDatasetIDs(ctx, src, in.App, in.Env)
			if err != nil {
				return Plan{}, fmt.Errorf("sort %s: %w", t.Raw, err)
			}
			if ids == nil {
				ids = []string{}
			}
			return Plan{Strategy: DelegatedRank, Source: src, Desc: t.Desc, IDs: ids}, nil
		}
	}

	for _, t := range in.Tokens {
		if isUserField(t.Field) {
			src := SourceUserRole
			if t.Field == fieldUserName {
				src = SourceUserName
			}
			return Plan{
				Strategy: DelegatedRank,
				Source:   src,
				Desc:     t.Desc,
				Ranker:   &identityRanker{users: r.users, byRole: src == SourceUserRole, desc: t.Desc},
			}, nil
		}
	}

	plan := Plan{Strategy: NativeSort}
	for _, t := range in.Tokens {
		f, ok := r.schema.Field(t.Field)
		if !ok {
			continue
		}
		plan.Native = append(plan.Native, SortKey{Column: f.Column, Desc: t.Desc})
	}
	return plan, nil
}

func isUserField(field string) bool {
	return field == fieldUserRole || field == fieldUserName
}

func isSearchKeyword(field string) bool {
	return field == keywordRelevance || field == keywordMetadata
}
