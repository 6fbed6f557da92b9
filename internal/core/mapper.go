package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// phoneCodePattern matches a single digit or dash. Only the first match is
// kept, so "+1-242" yields "1". Multi-digit codes are truncated; this is the
// established behaviour of the dataset loader and is pinned by tests.
var phoneCodePattern = regexp.MustCompile(`[\d-]`)

// ExtractPhoneCode returns the first digit or dash in raw, or "" if none.
func ExtractPhoneCode(raw string) string {
	return phoneCodePattern.FindString(raw)
}

var (
	errEmptyValue = errors.New("value is required")
	errTooLong    = errors.New("value too long")
)

// Column widths of the stored text fields.
const (
	maxISO2Len        = 2
	maxISO3Len        = 3
	maxNumericCodeLen = 4
	maxTLDLen         = 10
	maxStateCodeLen   = 10
	maxTextLen        = 255
)

// MapRegion maps a regions.csv row.
func MapRegion(r Row) (Region, error) {
	var out Region
	var err error
	if out.ID, err = r.integer("id"); err != nil {
		return out, err
	}
	if out.Name, err = r.text("name", maxTextLen); err != nil {
		return out, err
	}
	if out.Name == "" {
		return out, r.parseErr("name", "", errEmptyValue)
	}
	return out, nil
}

// MapSubRegion maps a subregions.csv row.
func MapSubRegion(r Row) (SubRegion, error) {
	var out SubRegion
	var err error
	if out.ID, err = r.integer("id"); err != nil {
		return out, err
	}
	if out.Name, err = r.text("name", maxTextLen); err != nil {
		return out, err
	}
	if out.RegionID, err = r.integer("region_id"); err != nil {
		return out, err
	}
	return out, nil
}

// MapCountry maps a countries.csv row. Empty region_id or subregion_id
// leave the reference unset.
func MapCountry(r Row) (Country, error) {
	var out Country
	var err error
	if out.ID, err = r.integer("id"); err != nil {
		return out, err
	}

	texts := []struct {
		col   string
		limit int
		dst   *string
	}{
		{"name", maxTextLen, &out.Name},
		{"iso3", maxISO3Len, &out.ISO3},
		{"iso2", maxISO2Len, &out.ISO2},
		{"numeric_code", maxNumericCodeLen, &out.NumericCode},
		{"capital", maxTextLen, &out.Capital},
		{"currency", maxTextLen, &out.Currency},
		{"currency_name", maxTextLen, &out.CurrencyName},
		{"currency_symbol", maxTextLen, &out.CurrencySymbol},
		{"tld", maxTLDLen, &out.TLD},
		{"native", maxTextLen, &out.Native},
		{"nationality", maxTextLen, &out.Nationality},
	}
	for _, t := range texts {
		if *t.dst, err = r.text(t.col, t.limit); err != nil {
			return out, err
		}
	}

	raw, err := r.field("phone_code")
	if err != nil {
		return out, err
	}
	out.PhoneCode = ExtractPhoneCode(raw)

	if out.RegionID, err = r.optionalInteger("region_id"); err != nil {
		return out, err
	}
	if out.SubRegionID, err = r.optionalInteger("subregion_id"); err != nil {
		return out, err
	}
	return out, nil
}

// MapState maps a states.csv row.
func MapState(r Row) (State, error) {
	var out State
	var err error
	if out.ID, err = r.integer("id"); err != nil {
		return out, err
	}
	if out.Name, err = r.text("name", maxTextLen); err != nil {
		return out, err
	}
	if out.CountryID, err = r.integer("country_id"); err != nil {
		return out, err
	}
	if out.Code, err = r.text("state_code", maxStateCodeLen); err != nil {
		return out, err
	}
	if out.Latitude, err = r.optionalDecimal("latitude"); err != nil {
		return out, err
	}
	if out.Longitude, err = r.optionalDecimal("longitude"); err != nil {
		return out, err
	}
	return out, nil
}

// MapCity maps a cities.csv row.
func MapCity(r Row) (City, error) {
	var out City
	var err error
	if out.ID, err = r.integer("id"); err != nil {
		return out, err
	}
	if out.Name, err = r.text("name", maxTextLen); err != nil {
		return out, err
	}
	if out.StateID, err = r.integer("state_id"); err != nil {
		return out, err
	}
	if out.Latitude, err = r.optionalDecimal("latitude"); err != nil {
		return out, err
	}
	if out.Longitude, err = r.optionalDecimal("longitude"); err != nil {
		return out, err
	}
	return out, nil
}

func (r Row) parseErr(col, value string, err error) *ParseError {
	return &ParseError{Resource: r.Resource, Line: r.Line, Column: col, Value: value, Err: err}
}

func (r Row) text(col string, limit int) (string, error) {
	v, err := r.field(col)
	if err != nil {
		return "", err
	}
	if n := len([]rune(v)); n > limit {
		return "", r.parseErr(col, v, fmt.Errorf("%w: %d characters, limit %d", errTooLong, n, limit))
	}
	return v, nil
}

func (r Row) integer(col string) (int64, error) {
	v, err := r.field(col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, r.parseErr(col, v, fmt.Errorf("invalid integer: %w", err))
	}
	return n, nil
}

func (r Row) optionalInteger(col string) (*int64, error) {
	v, err := r.field(col)
	if err != nil || v == "" {
		return nil, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, r.parseErr(col, v, fmt.Errorf("invalid integer: %w", err))
	}
	return &n, nil
}

func (r Row) optionalDecimal(col string) (*float64, error) {
	v, err := r.field(col)
	if err != nil || v == "" {
		return nil, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, r.parseErr(col, v, fmt.Errorf("invalid number: %w", err))
	}
	return &f, nil
}
