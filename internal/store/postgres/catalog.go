package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; "?" in cond is replaced by the next placeholder.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *whereBuilder) addID(column string, id *int64) {
	if id != nil {
		w.add(column+" = ?", *id)
	}
}

func (w *whereBuilder) addSearch(column, query string) {
	query = strings.TrimSpace(query)
	if query != "" {
		w.add(column+" ILIKE ?", "%"+escapeLike(query)+"%")
	}
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// listQuery is one paginated listing. from includes the joins; alias names
// the listed table.
type listQuery struct {
	from   string
	alias  string
	fields string
}

func list[T any](ctx context.Context, db DBTX, lq listQuery, wb *whereBuilder, p core.Page, scan func(pgx.Rows) (T, error)) ([]T, int64, error) {
	where := wb.sql()

	var total int64
	if err := db.QueryRow(ctx, "SELECT count(*) FROM "+lq.from+where, wb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	args := append(append([]any{}, wb.args...), p.Size, p.Offset())
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s.name, %s.id LIMIT $%d OFFSET $%d",
		lq.fields, lq.from, where, lq.alias, lq.alias, len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return items, total, nil
}

// ListRegions implements core.Catalog.
func (s *Store) ListRegions(ctx context.Context, f core.RegionFilter, p core.Page) (core.PageResult[core.Region], error) {
	p = p.Normalize(core.DefaultPageSize)
	var wb whereBuilder
	wb.addSearch("r.name", f.Query)

	items, total, err := list(ctx, s.pool, listQuery{from: "geo_regions r", alias: "r", fields: "r.id, r.name"}, &wb, p,
		func(rows pgx.Rows) (core.Region, error) {
			var r core.Region
			err := rows.Scan(&r.ID, &r.Name)
			return r, err
		})
	if err != nil {
		return core.PageResult[core.Region]{}, fmt.Errorf("regions: %w", err)
	}
	return core.NewPageResult(items, total, p), nil
}

// ListSubRegions implements core.Catalog.
func (s *Store) ListSubRegions(ctx context.Context, f core.SubRegionFilter, p core.Page) (core.PageResult[core.SubRegionRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	var wb whereBuilder
	wb.addID("sr.region_id", f.RegionID)
	wb.addSearch("sr.name", f.Query)

	lq := listQuery{
		from:   "geo_subregions sr JOIN geo_regions r ON r.id = sr.region_id",
		alias:  "sr",
		fields: "sr.id, sr.name, sr.region_id, r.name",
	}
	items, total, err := list(ctx, s.pool, lq, &wb, p, func(rows pgx.Rows) (core.SubRegionRow, error) {
		var r core.SubRegionRow
		err := rows.Scan(&r.ID, &r.Name, &r.RegionID, &r.RegionName)
		return r, err
	})
	if err != nil {
		return core.PageResult[core.SubRegionRow]{}, fmt.Errorf("subregions: %w", err)
	}
	return core.NewPageResult(items, total, p), nil
}

// ListCountries implements core.Catalog.
func (s *Store) ListCountries(ctx context.Context, f core.CountryFilter, p core.Page) (core.PageResult[core.CountryRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	var wb whereBuilder
	wb.addID("c.region_id", f.RegionID)
	wb.addID("c.subregion_id", f.SubRegionID)
	wb.addSearch("c.name", f.Query)

	lq := listQuery{
		from: "geo_countries c " +
			"LEFT JOIN geo_regions r ON r.id = c.region_id " +
			"LEFT JOIN geo_subregions sr ON sr.id = c.subregion_id",
		alias: "c",
		fields: "c.id, c.name, c.iso3, c.iso2, c.numeric_code, c.phone_code, c.capital, c.currency, " +
			"c.currency_name, c.currency_symbol, c.tld, c.native, c.nationality, c.region_id, c.subregion_id, " +
			"COALESCE(r.name, ''), COALESCE(sr.name, '')",
	}
	items, total, err := list(ctx, s.pool, lq, &wb, p, func(rows pgx.Rows) (core.CountryRow, error) {
		var c core.CountryRow
		err := rows.Scan(
			&c.ID, &c.Name, &c.ISO3, &c.ISO2, &c.NumericCode, &c.PhoneCode, &c.Capital, &c.Currency,
			&c.CurrencyName, &c.CurrencySymbol, &c.TLD, &c.Native, &c.Nationality, &c.RegionID, &c.SubRegionID,
			&c.RegionName, &c.SubRegionName,
		)
		return c, err
	})
	if err != nil {
		return core.PageResult[core.CountryRow]{}, fmt.Errorf("countries: %w", err)
	}
	return core.NewPageResult(items, total, p), nil
}

// ListStates implements core.Catalog.
func (s *Store) ListStates(ctx context.Context, f core.StateFilter, p core.Page) (core.PageResult[core.StateRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	var wb whereBuilder
	wb.addID("s.country_id", f.CountryID)
	wb.addSearch("s.name", f.Query)

	lq := listQuery{
		from:   "geo_states s JOIN geo_countries co ON co.id = s.country_id",
		alias:  "s",
		fields: "s.id, s.name, s.code, s.country_id, s.latitude, s.longitude, co.name",
	}
	items, total, err := list(ctx, s.pool, lq, &wb, p, func(rows pgx.Rows) (core.StateRow, error) {
		var st core.StateRow
		err := rows.Scan(&st.ID, &st.Name, &st.Code, &st.CountryID, &st.Latitude, &st.Longitude, &st.CountryName)
		return st, err
	})
	if err != nil {
		return core.PageResult[core.StateRow]{}, fmt.Errorf("states: %w", err)
	}
	return core.NewPageResult(items, total, p), nil
}

// ListCities implements core.Catalog.
func (s *Store) ListCities(ctx context.Context, f core.CityFilter, p core.Page) (core.PageResult[core.CityRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	var wb whereBuilder
	wb.addID("ci.state_id", f.StateID)
	wb.addID("s.country_id", f.CountryID)
	wb.addSearch("ci.name", f.Query)

	lq := listQuery{
		from: "geo_cities ci " +
			"JOIN geo_states s ON s.id = ci.state_id " +
			"JOIN geo_countries co ON co.id = s.country_id " +
			"LEFT JOIN geo_regions r ON r.id = co.region_id",
		alias:  "ci",
		fields: "ci.id, ci.name, ci.state_id, ci.latitude, ci.longitude, s.name, co.name, COALESCE(r.name, '')",
	}
	items, total, err := list(ctx, s.pool, lq, &wb, p, func(rows pgx.Rows) (core.CityRow, error) {
		var c core.CityRow
		err := rows.Scan(&c.ID, &c.Name, &c.StateID, &c.Latitude, &c.Longitude, &c.StateName, &c.CountryName, &c.RegionName)
		return c, err
	})
	if err != nil {
		return core.PageResult[core.CityRow]{}, fmt.Errorf("cities: %w", err)
	}
	return core.NewPageResult(items, total, p), nil
}
