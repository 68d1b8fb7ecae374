package paginate

import (
	"context"
	"fmt"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/metrics"
	"DatasetCatalog/internal/rank"
	"DatasetCatalog/internal/store"

	"github.com/Masterminds/squirrel"
)

const (
	DefaultNumber = 1
	DefaultSize   = 10
	MaxSize       = 100

	msgDelegatedTooLarge = "Result set too large for the requested sort; narrow the filters"
)

// Page is a 1-based page request.
type Page struct {
	Number uint64
	Size   uint64
}

// Normalize fills defaults and caps the size.
func (p Page) Normalize() Page {
	if p.Number == 0 {
		p.Number = DefaultNumber
	}
	if p.Size == 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

func (p Page) offset() uint64 {
	return (p.Number - 1) * p.Size
}

// Storage is the primary record store.
type Storage interface {
	Page(ctx context.Context, pred squirrel.Sqlizer, sorts []rank.SortKey, page, size uint64) ([]store.Dataset, int64, error)
	All(ctx context.Context, pred squirrel.Sqlizer, limit uint64) ([]store.Dataset, error)
}

type Result struct {
	Items []store.Dataset
	Total int64
	Page  Page
	Pages int64
}

type Paginator struct {
	storage      Storage
	maxDelegated int64
}

// New returns a paginator. maxDelegated bounds how many records the
// delegated strategy may load; zero or less means unbounded.
func New(s Storage, maxDelegated int64) *Paginator {
	return &Paginator{storage: s, maxDelegated: maxDelegated}
}

func (p *Paginator) Paginate(ctx context.Context, pred squirrel.Sqlizer, plan rank.Plan, page Page) (Result, error) {
	page = page.Normalize()
	switch plan.Strategy {
	case rank.NativeSort:
		return p.native(ctx, pred, plan, page)
	case rank.DelegatedRank:
		return p.delegated(ctx, pred, plan, page)
	}
	return Result{}, fmt.Errorf("unknown strategy %v", plan.Strategy)
}

func (p *Paginator) native(ctx context.Context, pred squirrel.Sqlizer, plan rank.Plan, page Page) (Result, error) {
	items, total, err := p.storage.Page(ctx, pred, plan.Native, page.Number, page.Size)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: items, Total: total, Page: page, Pages: pageCount(total, page.Size)}, nil
}

func (p *Paginator) delegated(ctx context.Context, pred squirrel.Sqlizer, plan rank.Plan, page Page) (Result, error) {
	var limit uint64
	if p.maxDelegated > 0 {
		limit = uint64(p.maxDelegated) + 1
	}
	records, err := p.storage.All(ctx, pred, limit)
	if err != nil {
		return Result{}, err
	}
	metrics.DelegatedResultSize.Observe(float64(len(records)))
	if p.maxDelegated > 0 && int64(len(records)) > p.maxDelegated {
		logger.Warn("delegated_cap_exceeded", map[string]any{
			"source": string(plan.Source),
			"cap":    p.maxDelegated,
		})
		return Result{}, apperr.InvalidRequest(msgDelegatedTooLarge)
	}

	order := plan.IDs
	if plan.Ranker != nil {
		ranked := make([]rank.Ranked, len(records))
		for i, r := range records {
			ranked[i] = rank.Ranked{ID: r.ID, OwnerID: r.UserID}
		}
		order, err = plan.Ranker.Rank(ctx, ranked)
		if err != nil {
			return Result{}, err
		}
	}

	ordered := Intersect(order, records)
	total := int64(len(ordered))

	start := min(page.offset(), uint64(total))
	end := min(start+page.Size, uint64(total))

	logger.Debug("delegated_page", map[string]any{
		"source":  string(plan.Source),
		"matched": len(records),
		"ranked":  total,
	})
	return Result{
		Items: ordered[start:end],
		Total: total,
		Page:  page,
		Pages: pageCount(total, page.Size),
	}, nil
}

// Intersect orders records by ids. Ids without a record and records
// without an id are both dropped; repeated ids count once.
func Intersect(ids []string, records []store.Dataset) []store.Dataset {
	byID := make(map[string]store.Dataset, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]store.Dataset, 0, min(len(ids), len(records)))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		out = append(out, r)
	}
	return out
}

func pageCount(total int64, size uint64) int64 {
	if total <= 0 || size == 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}
