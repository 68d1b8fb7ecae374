package store

import (
	"context"
	"fmt"

	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/rank"
	"DatasetCatalog/internal/schema"

	"github.com/Masterminds/squirrel"
	"github.com/iancoleman/strcase"
	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps datasets in one table; every row is read back as a JSON
// document so that new columns surface without code changes.
type Postgres struct {
	db     Querier
	schema *schema.Schema
}

func NewPostgres(db Querier, s *schema.Schema) *Postgres {
	return &Postgres{db: db, schema: s}
}

// Page runs filter + sort + skip/limit and reports the total match count.
func (p *Postgres) Page(ctx context.Context, pred squirrel.Sqlizer, sorts []rank.SortKey, page, size uint64) ([]Dataset, int64, error) {
	sb := p.buildPageQuery(pred, sorts, page, size)
	items, err := p.query(ctx, sb)
	if err != nil {
		return nil, 0, err
	}

	countSQL, args, err := p.buildCountQuery(pred).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := p.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}
	return items, total, nil
}

// All returns every match in id order; limit 0 means unbounded.
func (p *Postgres) All(ctx context.Context, pred squirrel.Sqlizer, limit uint64) ([]Dataset, error) {
	sb := p.base().Where(pred).OrderBy("main.id ASC")
	if limit > 0 {
		sb = sb.Limit(limit)
	}
	return p.query(ctx, sb)
}

func (p *Postgres) base() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("main.id", "main.user_id", "to_jsonb(main) AS doc").
		From(fmt.Sprintf("%s AS main", p.schema.Table))
}

func (p *Postgres) buildPageQuery(pred squirrel.Sqlizer, sorts []rank.SortKey, page, size uint64) squirrel.SelectBuilder {
	sb := p.base().Where(pred)
	for _, s := range sorts {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		sb = sb.OrderBy(fmt.Sprintf("main.%s %s", s.Column, dir))
	}
	// id last keeps pages stable across identical requests
	sb = sb.OrderBy("main.id ASC")
	if size > 0 {
		sb = sb.Limit(size)
		if page > 1 {
			sb = sb.Offset((page - 1) * size)
		}
	}
	return sb
}

func (p *Postgres) buildCountQuery(pred squirrel.Sqlizer) squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From(fmt.Sprintf("%s AS main", p.schema.Table)).
		Where(pred)
}

func (p *Postgres) query(ctx context.Context, sb squirrel.SelectBuilder) ([]Dataset, error) {
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	logger.Debug("sql", map[string]any{
		"sql":  sqlStr,
		"args": args,
	})

	rows, err := p.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var (
			id     string
			userID *string
			doc    map[string]any
		)
		if err := rows.Scan(&id, &userID, &doc); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		ds := Dataset{ID: id, Attributes: p.attributes(doc)}
		if userID != nil {
			ds.UserID = *userID
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// attributes renames storage columns to public field names.
func (p *Postgres) attributes(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for col, v := range doc {
		if col == "id" {
			continue
		}
		name, ok := p.schema.NameForColumn(col)
		if !ok {
			name = strcase.ToLowerCamel(col)
		}
		out[name] = v
	}
	return out
}
