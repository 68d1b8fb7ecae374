package rank

import (
	"context"
	"errors"
	"testing"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/auth"
	"DatasetCatalog/internal/schema"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usageStub struct {
	ids    []string
	err    error
	calls  int
	source Source
}

func (u *usageStub) RankedDatasetIDs(_ context.Context, source Source, _, _ string) ([]string, error) {
	u.calls++
	u.source = source
	return u.ids, u.err
}

type usersStub struct {
	users []auth.User
	err   error
	asked []string
}

func (u *usersStub) FindUsers(_ context.Context, ids []string) ([]auth.User, error) {
	u.asked = append(u.asked, ids...)
	return u.users, u.err
}

func newResolver(usage *usageStub, users *usersStub) *Resolver {
	return NewResolver(schema.Default(), usage, users)
}

func TestParse(t *testing.T) {
	got := Parse(" name,-createdAt,+slug,,-, ")
	want := []Token{
		{Field: "name", Raw: "name"},
		{Field: "createdAt", Desc: true, Raw: "-createdAt"},
		{Field: "slug", Raw: "+slug"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestNativeCompoundSortSkipsUnknownFields(t *testing.T) {
	r := newResolver(&usageStub{}, &usersStub{})

	plan, err := r.Resolve(context.Background(), Input{Tokens: Parse("-createdAt,bogus,name")})
	require.NoError(t, err)

	assert.Equal(t, NativeSort, plan.Strategy)
	assert.Equal(t, []SortKey{{Column: "created_at", Desc: true}, {Column: "name"}}, plan.Native)
}

func TestRelevanceWithoutSearchIsFatal(t *testing.T) {
	for _, spec := range []string{"relevance", "-relevance", "name,-metadata"} {
		usage := &usageStub{}
		r := newResolver(usage, &usersStub{})

		_, err := r.Resolve(context.Background(), Input{Tokens: Parse(spec), SearchTerms: "  "})

		require.Error(t, err, spec)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidRequest))
		assert.Equal(t, "Cannot sort by relevance without search criteria", err.Error())
		assert.Zero(t, usage.calls)
	}
}

func TestRelevanceReusesSearchOrder(t *testing.T) {
	usage := &usageStub{}
	r := newResolver(usage, &usersStub{})

	plan, err := r.Resolve(context.Background(), Input{
		Tokens:      Parse("name,-relevance"),
		SearchTerms: "forest",
		SearchIDs:   []string{"b", "a"},
	})
	require.NoError(t, err)

	assert.Equal(t, DelegatedRank, plan.Strategy)
	assert.Equal(t, SourceRelevance, plan.Source)
	assert.Equal(t, []string{"b", "a"}, plan.IDs)
	assert.Empty(t, plan.Native, "delegated plans carry no native keys")
	assert.Zero(t, usage.calls)
}

func TestMostFavoritedCallsUsageRanker(t *testing.T) {
	usage := &usageStub{ids: []string{"x", "y"}}
	r := newResolver(usage, &usersStub{})

	plan, err := r.Resolve(context.Background(), Input{Tokens: Parse("-most-favorited")})
	require.NoError(t, err)

	assert.Equal(t, 1, usage.calls)
	assert.Equal(t, SourceMostFavorited, usage.source)
	assert.Equal(t, DelegatedRank, plan.Strategy)
	assert.Equal(t, []string{"x", "y"}, plan.IDs)
}

func TestMostViewedPropagatesUpstreamFailure(t *testing.T) {
	usage := &usageStub{err: apperr.Upstream("graph", errors.New("status 500"))}
	r := newResolver(usage, &usersStub{})

	_, err := r.Resolve(context.Background(), Input{Tokens: Parse("most-viewed")})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	assert.Equal(t, SourceMostViewed, usage.source)
}

func TestUserSortRequiresPrivilege(t *testing.T) {
	for _, spec := range []string{"user.role", "-user.name", "name,user.role"} {
		r := newResolver(&usageStub{}, &usersStub{})
		_, err := r.Resolve(context.Background(), Input{Tokens: Parse(spec), Privileged: false})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		assert.Equal(t, "Sorting by user name or role not authorized.", err.Error())
	}
}

func TestUserSortPlanForPrivileged(t *testing.T) {
	r := newResolver(&usageStub{}, &usersStub{})
	plan, err := r.Resolve(context.Background(), Input{Tokens: Parse("-user.role"), Privileged: true})
	require.NoError(t, err)
	assert.Equal(t, DelegatedRank, plan.Strategy)
	assert.Equal(t, SourceUserRole, plan.Source)
	assert.NotNil(t, plan.Ranker)
	assert.Nil(t, plan.IDs)
}

func TestSearchKeyword(t *testing.T) {
	assert.Equal(t, "-relevance", SearchKeyword(Parse("name,-relevance")))
	assert.Equal(t, "+relevance", SearchKeyword(Parse("+relevance")))
	assert.Equal(t, "metadata", SearchKeyword(Parse("metadata")))
	assert.Equal(t, "", SearchKeyword(Parse("name")))
}

func TestCheckRunsWithoutCollaborators(t *testing.T) {
	err := Check(Input{Tokens: Parse("-relevance")})
	require.Error(t, err)
	assert.Equal(t, msgRelevanceWithoutSearch, apperr.Detail(err))

	err = Check(Input{Tokens: Parse("name,-user.name"), Privileged: false})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	assert.NoError(t, Check(Input{Tokens: Parse("-relevance"), SearchTerms: "forest"}))
	assert.NoError(t, Check(Input{Tokens: Parse("user.role"), Privileged: true}))
}
