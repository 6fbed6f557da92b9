package core

import (
	"context"
	"math"
)

const (
	// DefaultPageSize is the number of rows per admin listing page.
	DefaultPageSize = 20
	// MaxPageSize caps any requested page size.
	MaxPageSize = 500
	// MaxPageNumber keeps Offset within 32 bits for any page size.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane values, using defaultSize when Size is unset.
func (p Page) Normalize(defaultSize int) Page {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResult assembles a PageResult for a normalized page.
func NewPageResult[T any](items []T, total int64, p Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return PageResult[T]{Items: items, Total: total, Page: p.Number, Size: p.Size, TotalPages: pages}
}

// HasNext reports whether a following page exists.
func (r PageResult[T]) HasNext() bool { return r.Page < r.TotalPages }

// HasPrev reports whether a preceding page exists.
func (r PageResult[T]) HasPrev() bool { return r.Page > 1 }

// Listing filters. Nil ids match everything; Query is a case-insensitive
// substring match on name.
type (
	RegionFilter struct {
		Query string
	}
	SubRegionFilter struct {
		RegionID *int64
		Query    string
	}
	CountryFilter struct {
		RegionID    *int64
		SubRegionID *int64
		Query       string
	}
	StateFilter struct {
		CountryID *int64
		Query     string
	}
	CityFilter struct {
		StateID   *int64
		CountryID *int64
		Query     string
	}
)

// Listing rows carry the display names of their parents.
type (
	SubRegionRow struct {
		SubRegion
		RegionName string `json:"region_name"`
	}
	CountryRow struct {
		Country
		RegionName    string `json:"region_name"`
		SubRegionName string `json:"subregion_name"`
	}
	StateRow struct {
		State
		CountryName string `json:"country_name"`
	}
	CityRow struct {
		City
		StateName   string `json:"state_name"`
		CountryName string `json:"country_name"`
		RegionName  string `json:"region_name"`
	}
)

// RegionDisplay returns the city's region name, or "-" when its country has
// no region.
func (c CityRow) RegionDisplay() string {
	if c.RegionName == "" {
		return "-"
	}
	return c.RegionName
}

// Catalog is the read side of a storage backend, used by the admin listing.
// Every listing is ordered by name.
type Catalog interface {
	ListRegions(ctx context.Context, f RegionFilter, p Page) (PageResult[Region], error)
	ListSubRegions(ctx context.Context, f SubRegionFilter, p Page) (PageResult[SubRegionRow], error)
	ListCountries(ctx context.Context, f CountryFilter, p Page) (PageResult[CountryRow], error)
	ListStates(ctx context.Context, f StateFilter, p Page) (PageResult[StateRow], error)
	ListCities(ctx context.Context, f CityFilter, p Page) (PageResult[CityRow], error)
	Counts(ctx context.Context) (Counts, error)
}
