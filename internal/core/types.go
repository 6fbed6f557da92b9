package core

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Entity identifies one of the five geographic tables.
type Entity string

const (
	EntityRegion    Entity = "region"
	EntitySubRegion Entity = "subregion"
	EntityCountry   Entity = "country"
	EntityState     Entity = "state"
	EntityCity      Entity = "city"
)

// Entities lists every entity in dependency order (parents first).
var Entities = []Entity{EntityRegion, EntitySubRegion, EntityCountry, EntityState, EntityCity}

// ParseEntity resolves a user supplied entity name. Plural forms are accepted.
func ParseEntity(s string) (Entity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "region", "regions":
		return EntityRegion, nil
	case "subregion", "subregions", "sub-region", "sub-regions":
		return EntitySubRegion, nil
	case "country", "countries":
		return EntityCountry, nil
	case "state", "states":
		return EntityState, nil
	case "city", "cities":
		return EntityCity, nil
	}
	return "", fmt.Errorf("unknown entity %q", s)
}

// Resource names one CSV file published by the upstream dataset.
type Resource string

const (
	ResourceRegions    Resource = "regions.csv"
	ResourceSubRegions Resource = "subregions.csv"
	ResourceCountries  Resource = "countries.csv"
	ResourceStates     Resource = "states.csv"
	ResourceCities     Resource = "cities.csv"
)

// Region is a top-level world region (e.g. "Africa").
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubRegion is a subdivision of a Region (e.g. "Northern Africa").
type SubRegion struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

// Country is a sovereign or dependent territory.
type Country struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ISO3           string `json:"iso3"`
	ISO2           string `json:"iso2"`
	NumericCode    string `json:"numeric_code"`
	PhoneCode      string `json:"phone_code"`
	Capital        string `json:"capital"`
	Currency       string `json:"currency"`
	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `json:"currency_symbol"`
	TLD            string `json:"tld"`
	Native         string `json:"native"`
	Nationality    string `json:"nationality"`
	RegionID       *int64 `json:"region_id"`
	SubRegionID    *int64 `json:"subregion_id"`
}

// State is a first-level administrative division of a Country.
type State struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	CountryID int64    `json:"country_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// City is a named place within a State.
type City struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	StateID   int64    `json:"state_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Counts holds the number of rows stored per entity.
type Counts struct {
	Regions    int64 `json:"regions"`
	SubRegions int64 `json:"subregions"`
	Countries  int64 `json:"countries"`
	States     int64 `json:"states"`
	Cities     int64 `json:"cities"`
}

// Of returns the count for a single entity.
func (c Counts) Of(e Entity) int64 {
	switch e {
	case EntityRegion:
		return c.Regions
	case EntitySubRegion:
		return c.SubRegions
	case EntityCountry:
		return c.Countries
	case EntityState:
		return c.States
	case EntityCity:
		return c.Cities
	}
	return 0
}

// ConflictPolicy decides what happens when an imported row's primary key
// already exists.
type ConflictPolicy string

const (
	ConflictSkip   ConflictPolicy = "skip"   // leave the stored row untouched
	ConflictUpdate ConflictPolicy = "update" // overwrite the stored row
	ConflictError  ConflictPolicy = "error"  // abort with a DuplicateError
)

// ParseConflictPolicy resolves a configured policy name. Empty means skip.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictSkip:
		return ConflictSkip, nil
	case ConflictUpdate:
		return ConflictUpdate, nil
	case ConflictError:
		return ConflictError, nil
	}
	return "", fmt.Errorf("invalid conflict policy %q (want skip, update or error)", s)
}

// Fetcher opens a stream for one upstream CSV resource.
// The caller closes the returned reader.
type Fetcher interface {
	Fetch(ctx context.Context, res Resource) (io.ReadCloser, error)
}

// Writer bulk-inserts entities inside a unit of work. Each method returns the
// number of rows written (inserted or, under ConflictUpdate, overwritten).
type Writer interface {
	InsertRegions(ctx context.Context, rows []Region, policy ConflictPolicy) (int64, error)
	InsertSubRegions(ctx context.Context, rows []SubRegion, policy ConflictPolicy) (int64, error)
	InsertCountries(ctx context.Context, rows []Country, policy ConflictPolicy) (int64, error)
	InsertStates(ctx context.Context, rows []State, policy ConflictPolicy) (int64, error)
	InsertCities(ctx context.Context, rows []City, policy ConflictPolicy) (int64, error)
}

// Store is the write side of a storage backend.
type Store interface {
	// InTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back when it returns an error or panics.
	InTx(ctx context.Context, fn func(ctx context.Context, w Writer) error) error

	// Delete removes one row and everything that references it.
	Delete(ctx context.Context, e Entity, id int64) error

	Counts(ctx context.Context) (Counts, error)
}
