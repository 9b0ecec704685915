package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourorg/estate-api/internal/canon"
	"github.com/yourorg/estate-api/listing"
)

var propertyColumns = []string{
	"id", "title", "type", "price", "bedrooms", "bathrooms", "area",
	"location", "description", "image", "featured",
}

// Batch is one importer write: the mapped listings plus the raw feed page
// they came from.
type Batch struct {
	Provider   string
	Endpoint   string
	Payload    []byte
	Properties []listing.Property
}

func scanProperty(row pgx.Row) (listing.Property, error) {
	var (
		p    listing.Property
		kind string
	)
	err := row.Scan(&p.ID, &p.Title, &kind, &p.Price, &p.Bedrooms, &p.Bathrooms, &p.Area,
		&p.Location, &p.Description, &p.Image, &p.Featured)
	p.Type = listing.PropertyType(kind)
	return p, err
}

func collect(rows pgx.Rows) ([]listing.Property, error) {
	defer rows.Close()
	var out []listing.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAll returns every listing ordered by id.
func (s *Store) ListAll(ctx context.Context) ([]listing.Property, error) {
	query, args, err := psql.Select(propertyColumns...).From("properties").OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list properties")
	}
	props, err := collect(rows)
	return props, mapError(err, "scan properties")
}

func (s *Store) Get(ctx context.Context, id int64) (listing.Property, error) {
	query, args, err := psql.Select(propertyColumns...).From("properties").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return listing.Property{}, fmt.Errorf("build get query: %w", err)
	}
	p, err := scanProperty(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return listing.Property{}, mapError(err, fmt.Sprintf("property %d", id))
	}
	return p, nil
}

// Search answers a listing query in SQL with the same semantics as listing.Apply.
func (s *Store) Search(ctx context.Context, q listing.Query) (listing.Result, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return listing.Result{}, err
	}
	where := whereClause(q)

	aggSQL, aggArgs, err := psql.Select("COUNT(*)", "COALESCE(AVG(price), 0)::float8").
		From("properties").Where(where).ToSql()
	if err != nil {
		return listing.Result{}, fmt.Errorf("build aggregate query: %w", err)
	}
	var res listing.Result
	if err := s.db.QueryRow(ctx, aggSQL, aggArgs...).Scan(&res.Total, &res.AveragePrice); err != nil {
		return listing.Result{}, mapError(err, "aggregate properties")
	}

	pageSQL, pageArgs, err := psql.Select(propertyColumns...).From("properties").Where(where).
		OrderBy(orderBy(q.Sort)...).Limit(uint64(q.Visible)).ToSql()
	if err != nil {
		return listing.Result{}, fmt.Errorf("build search query: %w", err)
	}
	rows, err := s.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return listing.Result{}, mapError(err, "search properties")
	}
	items, err := collect(rows)
	if err != nil {
		return listing.Result{}, mapError(err, "scan properties")
	}
	if items == nil {
		items = []listing.Property{}
	}

	res.Items = items
	res.Visible = len(items)
	res.HasMore = res.Visible < res.Total
	res.NextVisible = min(res.Visible+listing.PageSize, res.Total)
	return res, nil
}

func whereClause(q listing.Query) sq.And {
	where := sq.And{}
	if q.PriceMin != nil {
		where = append(where, sq.GtOrEq{"price": *q.PriceMin})
	}
	if q.PriceMax != nil {
		where = append(where, sq.LtOrEq{"price": *q.PriceMax})
	}
	if q.MinBedrooms != nil {
		where = append(where, sq.GtOrEq{"bedrooms": *q.MinBedrooms})
	}
	if q.Type != nil {
		where = append(where, sq.Eq{"type": string(*q.Type)})
	}
	if needle := canon.SearchText(q.Search); needle != "" {
		pattern := "%" + escapeLike(needle) + "%"
		where = append(where, sq.Or{
			collapsedILike("title", pattern),
			collapsedILike("location", pattern),
			collapsedILike("description", pattern),
		})
	}
	return where
}

// collapsedILike matches col with whitespace runs folded to one space, as
// canon.SearchText does for the in-memory matcher.
func collapsedILike(col, pattern string) sq.Sqlizer {
	return sq.Expr("regexp_replace("+col+`, '\s+', ' ', 'g') ILIKE ?`, pattern)
}

func orderBy(key listing.SortKey) []string {
	switch key {
	case listing.SortPriceAsc:
		return []string{"price ASC", "id ASC"}
	case listing.SortNewest:
		return []string{"id DESC"}
	case listing.SortBedrooms:
		return []string{"bedrooms DESC", "id ASC"}
	default:
		return []string{"price DESC", "id ASC"}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// Facets reports the filter-panel bounds over the whole table. Types come
// out in the order of their lowest id, matching the in-memory index.
func (s *Store) Facets(ctx context.Context) (listing.Facets, error) {
	f := listing.Facets{Types: []listing.PropertyType{}}
	boundsSQL, _, err := psql.Select("COUNT(*)", "COALESCE(MIN(price), 0)", "COALESCE(MAX(price), 0)").
		From("properties").ToSql()
	if err != nil {
		return f, fmt.Errorf("build facets query: %w", err)
	}
	if err := s.db.QueryRow(ctx, boundsSQL).Scan(&f.Count, &f.PriceMin, &f.PriceMax); err != nil {
		return f, mapError(err, "property bounds")
	}

	typesSQL, _, err := psql.Select("type").From("properties").GroupBy("type").OrderBy("MIN(id)").ToSql()
	if err != nil {
		return f, fmt.Errorf("build types query: %w", err)
	}
	rows, err := s.db.Query(ctx, typesSQL)
	if err != nil {
		return f, mapError(err, "property types")
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return f, mapError(err, "scan type")
		}
		f.Types = append(f.Types, listing.PropertyType(kind))
	}
	return f, mapError(rows.Err(), "property types")
}

// UpsertProperties writes a batch in one transaction and records the raw
// payload, if any, as a feed snapshot. It returns the number of rows written.
func (s *Store) UpsertProperties(ctx context.Context, b Batch) (n int, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, mapError(err, "begin upsert")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	provider := b.Provider
	if provider == "" {
		provider = "catalog"
	}
	for _, p := range b.Properties {
		neighbourhood, _ := canon.Location(p.Location)
		query, args, buildErr := psql.Insert("properties").
			Columns("id", "property_key", "title", "type", "price", "bedrooms", "bathrooms", "area",
				"location", "neighbourhood", "description", "image", "featured", "provider").
			Values(p.ID, canon.Key(p.Title, p.Location), p.Title, string(p.Type), p.Price, p.Bedrooms,
				p.Bathrooms, p.Area, p.Location, neighbourhood, p.Description, p.Image, p.Featured, provider).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				property_key = EXCLUDED.property_key,
				title = EXCLUDED.title,
				type = EXCLUDED.type,
				price = EXCLUDED.price,
				bedrooms = EXCLUDED.bedrooms,
				bathrooms = EXCLUDED.bathrooms,
				area = EXCLUDED.area,
				location = EXCLUDED.location,
				neighbourhood = EXCLUDED.neighbourhood,
				description = EXCLUDED.description,
				image = EXCLUDED.image,
				featured = EXCLUDED.featured,
				provider = EXCLUDED.provider,
				updated_at = now()`).
			ToSql()
		if buildErr != nil {
			return 0, fmt.Errorf("build upsert: %w", buildErr)
		}
		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return 0, mapError(err, fmt.Sprintf("upsert property %d", p.ID))
		}
		n++
	}

	if len(b.Payload) > 0 {
		sum := sha256.Sum256(b.Payload)
		query, args, buildErr := psql.Insert("feed_snapshots").
			Columns("id", "provider", "endpoint", "payload", "payload_sha256", "record_count").
			Values(uuid.New(), provider, b.Endpoint, b.Payload, hex.EncodeToString(sum[:]), len(b.Properties)).
			ToSql()
		if buildErr != nil {
			return 0, fmt.Errorf("build snapshot insert: %w", buildErr)
		}
		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return 0, mapError(err, "insert feed snapshot")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, mapError(err, "commit upsert")
	}
	return n, nil
}
