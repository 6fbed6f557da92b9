package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/geoentities/internal/core"
)

type table struct {
	name    string
	columns []string // id first
}

var (
	regionsTable    = table{"geo_regions", []string{"id", "name"}}
	subRegionsTable = table{"geo_subregions", []string{"id", "name", "region_id"}}
	countriesTable  = table{"geo_countries", []string{
		"id", "name", "iso3", "iso2", "numeric_code", "phone_code", "capital", "currency",
		"currency_name", "currency_symbol", "tld", "native", "nationality", "region_id", "subregion_id",
	}}
	statesTable = table{"geo_states", []string{"id", "name", "code", "country_id", "latitude", "longitude"}}
	citiesTable = table{"geo_cities", []string{"id", "name", "state_id", "latitude", "longitude"}}
)

func tableFor(e core.Entity) (table, bool) {
	switch e {
	case core.EntityRegion:
		return regionsTable, true
	case core.EntitySubRegion:
		return subRegionsTable, true
	case core.EntityCountry:
		return countriesTable, true
	case core.EntityState:
		return statesTable, true
	case core.EntityCity:
		return citiesTable, true
	}
	return table{}, false
}

func (t table) stageName() string { return "stage_" + t.name }

// insertSQL moves staged rows into the live table under policy. Duplicate
// ids inside one batch are collapsed unless the policy is to fail on them.
func (t table) insertSQL(policy core.ConflictPolicy) string {
	cols := strings.Join(t.columns, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) ", t.name, cols)

	switch policy {
	case core.ConflictError:
		fmt.Fprintf(&b, "SELECT %s FROM %s", cols, t.stageName())
	case core.ConflictUpdate:
		fmt.Fprintf(&b, "SELECT DISTINCT ON (id) %s FROM %s ORDER BY id ON CONFLICT (id) DO UPDATE SET ", cols, t.stageName())
		for i, c := range t.columns[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = EXCLUDED.%s", c, c)
		}
	default:
		fmt.Fprintf(&b, "SELECT DISTINCT ON (id) %s FROM %s ORDER BY id ON CONFLICT (id) DO NOTHING", cols, t.stageName())
	}
	return b.String()
}

type writer struct {
	tx pgx.Tx
}

// copyIn stages rows with COPY and inserts them with one statement.
func (w *writer) copyIn(ctx context.Context, e core.Entity, t table, rows [][]any, policy core.ConflictPolicy) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stage := t.stageName()

	if _, err := w.tx.Exec(ctx, "CREATE TEMP TABLE "+stage+" (LIKE "+t.name+" INCLUDING DEFAULTS) ON COMMIT DROP"); err != nil {
		return 0, fmt.Errorf("create staging table for %s: %w", t.name, err)
	}
	if _, err := w.tx.CopyFrom(ctx, pgx.Identifier{stage}, t.columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy %s: %w", t.name, err)
	}

	tag, err := w.tx.Exec(ctx, t.insertSQL(policy))
	if err != nil {
		return 0, translateError(e, err)
	}

	if _, err := w.tx.Exec(ctx, "DROP TABLE "+stage); err != nil {
		return 0, fmt.Errorf("drop staging table for %s: %w", t.name, err)
	}
	return tag.RowsAffected(), nil
}

func (w *writer) InsertRegions(ctx context.Context, rows []core.Region, policy core.ConflictPolicy) (int64, error) {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.ID, r.Name}
	}
	return w.copyIn(ctx, core.EntityRegion, regionsTable, values, policy)
}

func (w *writer) InsertSubRegions(ctx context.Context, rows []core.SubRegion, policy core.ConflictPolicy) (int64, error) {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.ID, r.Name, r.RegionID}
	}
	return w.copyIn(ctx, core.EntitySubRegion, subRegionsTable, values, policy)
}

func (w *writer) InsertCountries(ctx context.Context, rows []core.Country, policy core.ConflictPolicy) (int64, error) {
	values := make([][]any, len(rows))
	for i, c := range rows {
		values[i] = []any{
			c.ID, c.Name, c.ISO3, c.ISO2, c.NumericCode, c.PhoneCode, c.Capital, c.Currency,
			c.CurrencyName, c.CurrencySymbol, c.TLD, c.Native, c.Nationality, c.RegionID, c.SubRegionID,
		}
	}
	return w.copyIn(ctx, core.EntityCountry, countriesTable, values, policy)
}

func (w *writer) InsertStates(ctx context.Context, rows []core.State, policy core.ConflictPolicy) (int64, error) {
	values := make([][]any, len(rows))
	for i, s := range rows {
		values[i] = []any{s.ID, s.Name, s.Code, s.CountryID, s.Latitude, s.Longitude}
	}
	return w.copyIn(ctx, core.EntityState, statesTable, values, policy)
}

func (w *writer) InsertCities(ctx context.Context, rows []core.City, policy core.ConflictPolicy) (int64, error) {
	values := make([][]any, len(rows))
	for i, c := range rows {
		values[i] = []any{c.ID, c.Name, c.StateID, c.Latitude, c.Longitude}
	}
	return w.copyIn(ctx, core.EntityCity, citiesTable, values, policy)
}
