package paginate

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/rank"
	"DatasetCatalog/internal/store"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) Page(ctx context.Context, pred squirrel.Sqlizer, sorts []rank.SortKey, page, size uint64) ([]store.Dataset, int64, error) {
	args := m.Called(pred, sorts, page, size)
	items, _ := args.Get(0).([]store.Dataset)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *storageMock) All(ctx context.Context, pred squirrel.Sqlizer, limit uint64) ([]store.Dataset, error) {
	args := m.Called(pred, limit)
	items, _ := args.Get(0).([]store.Dataset)
	return items, args.Error(1)
}

func datasets(ids ...string) []store.Dataset {
	out := make([]store.Dataset, len(ids))
	for i, id := range ids {
		out[i] = store.Dataset{ID: id, UserID: "owner-" + id, Attributes: map[string]any{}}
	}
	return out
}

func ids(items []store.Dataset) []string {
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.ID
	}
	return out
}

var pred = squirrel.Eq{"main.env": []string{"production"}}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: 10}, Page{}.Normalize())
	assert.Equal(t, Page{Number: 3, Size: MaxSize}, Page{Number: 3, Size: 5000}.Normalize())
}

func TestNativeUsesStorageTotals(t *testing.T) {
	st := &storageMock{}
	sorts := []rank.SortKey{{Column: "name"}}
	st.On("Page", pred, sorts, uint64(2), uint64(10)).Return(datasets("a", "b"), int64(12), nil)

	res, err := New(st, 100).Paginate(context.Background(), pred,
		rank.Plan{Strategy: rank.NativeSort, Native: sorts}, Page{Number: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(res.Items))
	assert.Equal(t, int64(12), res.Total)
	assert.Equal(t, int64(2), res.Pages)
	st.AssertExpectations(t)
}

func TestDelegatedSecondPageOfTwo(t *testing.T) {
	st := &storageMock{}
	st.On("All", pred, uint64(101)).Return(datasets("a", "b", "c"), nil)

	plan := rank.Plan{Strategy: rank.DelegatedRank, Source: rank.SourceMostViewed, IDs: []string{"b", "zz", "a"}}
	res, err := New(st, 100).Paginate(context.Background(), pred, plan, Page{Number: 2, Size: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, ids(res.Items))
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(2), res.Pages)
}

func TestDelegatedPagePastEndIsEmpty(t *testing.T) {
	st := &storageMock{}
	st.On("All", pred, uint64(0)).Return(datasets("a"), nil)

	plan := rank.Plan{Strategy: rank.DelegatedRank, IDs: []string{"a"}}
	res, err := New(st, 0).Paginate(context.Background(), pred, plan, Page{Number: 5, Size: 10})
	require.NoError(t, err)

	assert.Empty(t, res.Items)
	assert.Equal(t, int64(1), res.Total)
}

type reverseRanker struct {
	seen []rank.Ranked
}

func (r *reverseRanker) Rank(ctx context.Context, records []rank.Ranked) ([]string, error) {
	r.seen = records
	out := make([]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i].ID)
	}
	return out, nil
}

func TestDelegatedWithRanker(t *testing.T) {
	st := &storageMock{}
	st.On("All", pred, uint64(11)).Return(datasets("a", "b", "c"), nil)

	rk := &reverseRanker{}
	plan := rank.Plan{Strategy: rank.DelegatedRank, Source: rank.SourceUserName, Ranker: rk}
	res, err := New(st, 10).Paginate(context.Background(), pred, plan, Page{})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "b", "a"}, ids(res.Items))
	assert.Equal(t, "owner-a", rk.seen[0].OwnerID)
}

func TestDelegatedCap(t *testing.T) {
	st := &storageMock{}
	st.On("All", pred, uint64(3)).Return(datasets("a", "b", "c"), nil)

	plan := rank.Plan{Strategy: rank.DelegatedRank, IDs: []string{"a"}}
	_, err := New(st, 2).Paginate(context.Background(), pred, plan, Page{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidRequest))
	assert.Equal(t, msgDelegatedTooLarge, apperr.Detail(err))
}

func TestStorageErrorPropagates(t *testing.T) {
	st := &storageMock{}
	boom := errors.New("boom")
	st.On("All", pred, uint64(0)).Return(nil, boom)

	_, err := New(st, 0).Paginate(context.Background(), pred, rank.Plan{Strategy: rank.DelegatedRank}, Page{})
	assert.ErrorIs(t, err, boom)
}

func TestIntersectDropsBothSides(t *testing.T) {
	got := Intersect([]string{"x", "c", "a", "c"}, datasets("a", "b", "c"))
	assert.Equal(t, []string{"c", "a"}, ids(got))
}

func TestBuildLinksClamps(t *testing.T) {
	u, _ := url.Parse("http://api.test/api/dataset?name=forest")

	l := BuildLinks(*u, Page{Number: 1, Size: 10}, 1)
	assert.Equal(t, l.Self, l.Prev)
	assert.Equal(t, l.Self, l.Next)
	assert.Equal(t, l.First, l.Last)
	assert.Contains(t, l.Self, "name=forest")
	assert.Contains(t, l.Self, "page%5Bnumber%5D=1")

	l = BuildLinks(*u, Page{Number: 2, Size: 5}, 3)
	assert.Contains(t, l.Prev, "page%5Bnumber%5D=1")
	assert.Contains(t, l.Next, "page%5Bnumber%5D=3")
	assert.Contains(t, l.Last, "page%5Bnumber%5D=3")

	l = BuildLinks(*u, Page{Number: 1, Size: 5}, 0)
	assert.Equal(t, l.Self, l.Last)
}
