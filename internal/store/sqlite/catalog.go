package sqlite

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/JonMunkholm/geoentities/internal/core"
)

type subRegionListRow struct {
	SubRegionColumns
	RegionName string `gorm:"column:region_name"`
}

type countryListRow struct {
	CountryColumns
	RegionName    string `gorm:"column:region_name"`
	SubRegionName string `gorm:"column:subregion_name"`
}

type stateListRow struct {
	StateColumns
	CountryName string `gorm:"column:country_name"`
}

type cityListRow struct {
	CityColumns
	StateName   string `gorm:"column:state_name"`
	CountryName string `gorm:"column:country_name"`
	RegionName  string `gorm:"column:region_name"`
}

// listQuery describes one paginated listing. scope applies joins and filters
// and is reused for the count and the page query.
type listQuery struct {
	table  string
	alias  string
	fields string
	scope  func(*gorm.DB) *gorm.DB
}

func page[T any](ctx context.Context, db *gorm.DB, q listQuery, p core.Page) ([]T, int64, error) {
	base := func() *gorm.DB {
		return q.scope(db.WithContext(ctx).Table(q.table + " AS " + q.alias))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", q.table, err)
	}

	var rows []T
	err := base().
		Select(q.fields).
		Order(q.alias + ".name ASC, " + q.alias + ".id ASC").
		Limit(p.Size).
		Offset(p.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", q.table, err)
	}
	return rows, total, nil
}

func nameLike(db *gorm.DB, column, query string) *gorm.DB {
	query = strings.TrimSpace(query)
	if query == "" {
		return db
	}
	return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(query)+"%")
}

// ListRegions implements core.Catalog.
func (s *Store) ListRegions(ctx context.Context, f core.RegionFilter, p core.Page) (core.PageResult[core.Region], error) {
	p = p.Normalize(core.DefaultPageSize)
	rows, total, err := page[RegionColumns](ctx, s.db, listQuery{
		table:  "geo_regions",
		alias:  "r",
		fields: "r.*",
		scope:  func(db *gorm.DB) *gorm.DB { return nameLike(db, "r.name", f.Query) },
	}, p)
	if err != nil {
		return core.PageResult[core.Region]{}, err
	}
	items := make([]core.Region, len(rows))
	for i, r := range rows {
		items[i] = r.toCore()
	}
	return core.NewPageResult(items, total, p), nil
}

// ListSubRegions implements core.Catalog.
func (s *Store) ListSubRegions(ctx context.Context, f core.SubRegionFilter, p core.Page) (core.PageResult[core.SubRegionRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	rows, total, err := page[subRegionListRow](ctx, s.db, listQuery{
		table:  "geo_subregions",
		alias:  "sr",
		fields: "sr.*, r.name AS region_name",
		scope: func(db *gorm.DB) *gorm.DB {
			db = db.Joins("JOIN geo_regions r ON r.id = sr.region_id")
			if f.RegionID != nil {
				db = db.Where("sr.region_id = ?", *f.RegionID)
			}
			return nameLike(db, "sr.name", f.Query)
		},
	}, p)
	if err != nil {
		return core.PageResult[core.SubRegionRow]{}, err
	}
	items := make([]core.SubRegionRow, len(rows))
	for i, r := range rows {
		items[i] = core.SubRegionRow{SubRegion: r.toCore(), RegionName: r.RegionName}
	}
	return core.NewPageResult(items, total, p), nil
}

// ListCountries implements core.Catalog.
func (s *Store) ListCountries(ctx context.Context, f core.CountryFilter, p core.Page) (core.PageResult[core.CountryRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	rows, total, err := page[countryListRow](ctx, s.db, listQuery{
		table:  "geo_countries",
		alias:  "c",
		fields: "c.*, COALESCE(r.name, '') AS region_name, COALESCE(sr.name, '') AS subregion_name",
		scope: func(db *gorm.DB) *gorm.DB {
			db = db.Joins("LEFT JOIN geo_regions r ON r.id = c.region_id").
				Joins("LEFT JOIN geo_subregions sr ON sr.id = c.subregion_id")
			if f.RegionID != nil {
				db = db.Where("c.region_id = ?", *f.RegionID)
			}
			if f.SubRegionID != nil {
				db = db.Where("c.subregion_id = ?", *f.SubRegionID)
			}
			return nameLike(db, "c.name", f.Query)
		},
	}, p)
	if err != nil {
		return core.PageResult[core.CountryRow]{}, err
	}
	items := make([]core.CountryRow, len(rows))
	for i, r := range rows {
		items[i] = core.CountryRow{Country: r.toCore(), RegionName: r.RegionName, SubRegionName: r.SubRegionName}
	}
	return core.NewPageResult(items, total, p), nil
}

// ListStates implements core.Catalog.
func (s *Store) ListStates(ctx context.Context, f core.StateFilter, p core.Page) (core.PageResult[core.StateRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	rows, total, err := page[stateListRow](ctx, s.db, listQuery{
		table:  "geo_states",
		alias:  "s",
		fields: "s.*, co.name AS country_name",
		scope: func(db *gorm.DB) *gorm.DB {
			db = db.Joins("JOIN geo_countries co ON co.id = s.country_id")
			if f.CountryID != nil {
				db = db.Where("s.country_id = ?", *f.CountryID)
			}
			return nameLike(db, "s.name", f.Query)
		},
	}, p)
	if err != nil {
		return core.PageResult[core.StateRow]{}, err
	}
	items := make([]core.StateRow, len(rows))
	for i, r := range rows {
		items[i] = core.StateRow{State: r.toCore(), CountryName: r.CountryName}
	}
	return core.NewPageResult(items, total, p), nil
}

// ListCities implements core.Catalog.
func (s *Store) ListCities(ctx context.Context, f core.CityFilter, p core.Page) (core.PageResult[core.CityRow], error) {
	p = p.Normalize(core.DefaultPageSize)
	rows, total, err := page[cityListRow](ctx, s.db, listQuery{
		table:  "geo_cities",
		alias:  "ci",
		fields: "ci.*, s.name AS state_name, co.name AS country_name, COALESCE(r.name, '') AS region_name",
		scope: func(db *gorm.DB) *gorm.DB {
			db = db.Joins("JOIN geo_states s ON s.id = ci.state_id").
				Joins("JOIN geo_countries co ON co.id = s.country_id").
				Joins("LEFT JOIN geo_regions r ON r.id = co.region_id")
			if f.StateID != nil {
				db = db.Where("ci.state_id = ?", *f.StateID)
			}
			if f.CountryID != nil {
				db = db.Where("s.country_id = ?", *f.CountryID)
			}
			return nameLike(db, "ci.name", f.Query)
		},
	}, p)
	if err != nil {
		return core.PageResult[core.CityRow]{}, err
	}
	items := make([]core.CityRow, len(rows))
	for i, r := range rows {
		items[i] = core.CityRow{City: r.toCore(), StateName: r.StateName, CountryName: r.CountryName, RegionName: r.RegionName}
	}
	return core.NewPageResult(items, total, p), nil
}
