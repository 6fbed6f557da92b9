package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header record.
// Names are trimmed and lowercased; the first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// Layout describes the upstream column layout of one resource.
// Columns is the canonical header order; Required are the columns the
// mapper reads and must be present for an import to start.
type Layout struct {
	Entity   Entity
	Resource Resource
	Columns  []string
	Required []string
}

var (
	RegionLayout = Layout{
		Entity:   EntityRegion,
		Resource: ResourceRegions,
		Columns:  []string{"id", "name"},
		Required: []string{"id", "name"},
	}
	SubRegionLayout = Layout{
		Entity:   EntitySubRegion,
		Resource: ResourceSubRegions,
		Columns:  []string{"id", "name", "region_id"},
		Required: []string{"id", "name", "region_id"},
	}
	CountryLayout = Layout{
		Entity:   EntityCountry,
		Resource: ResourceCountries,
		Columns: []string{
			"id", "name", "iso3", "iso2", "numeric_code", "phone_code", "capital",
			"currency", "currency_name", "currency_symbol", "tld", "native",
			"region", "region_id", "subregion", "subregion_id", "nationality",
		},
		Required: []string{
			"id", "name", "iso3", "iso2", "numeric_code", "phone_code", "capital",
			"currency", "currency_name", "currency_symbol", "tld", "native",
			"region_id", "subregion_id", "nationality",
		},
	}
	StateLayout = Layout{
		Entity:   EntityState,
		Resource: ResourceStates,
		Columns: []string{
			"id", "name", "country_id", "country_code", "country_name",
			"state_code", "type", "latitude", "longitude",
		},
		Required: []string{"id", "name", "country_id", "state_code", "latitude", "longitude"},
	}
	CityLayout = Layout{
		Entity:   EntityCity,
		Resource: ResourceCities,
		Columns: []string{
			"id", "name", "state_id", "state_code", "state_name", "country_id",
			"country_code", "country_name", "latitude", "longitude",
		},
		Required: []string{"id", "name", "state_id", "latitude", "longitude"},
	}
)

// Check verifies that every required column is present in idx.
func (l Layout) Check(idx HeaderIndex) error {
	var missing []string
	for _, col := range l.Required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Resource: l.Resource, Missing: missing}
	}
	return nil
}

// Row is one decoded data record together with the header it was read under.
type Row struct {
	Resource Resource
	Line     int
	Fields   []string
	Header   HeaderIndex
}

var errShortRow = errors.New("row has fewer fields than the header")

// field returns the raw value of col, trimmed.
func (r Row) field(col string) (string, error) {
	pos, ok := r.Header[col]
	if !ok {
		return "", &SchemaError{Resource: r.Resource, Missing: []string{col}}
	}
	if pos >= len(r.Fields) {
		return "", &ParseError{Resource: r.Resource, Line: r.Line, Column: col, Err: errShortRow}
	}
	return strings.TrimSpace(r.Fields[pos]), nil
}

// RowReader decodes a CSV resource into Rows. The first record is consumed
// as the header.
type RowReader struct {
	resource Resource
	csv      *csv.Reader
	names    []string
	header   HeaderIndex
}

// NewRowReader reads the header from r. A resource without a header line
// yields a ParseError wrapping ErrEmptyFile.
func NewRowReader(res Resource, r io.Reader) (*RowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Resource: res, Line: 1, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, csvParseError(res, err)
	}
	rr := &RowReader{resource: res, csv: cr, names: header, header: MakeHeaderIndex(header)}
	if err := rr.checkUTF8(1, header); err != nil {
		return nil, err
	}
	return rr, nil
}

// Header returns the header index of the resource.
func (rr *RowReader) Header() HeaderIndex { return rr.header }

// Next returns the next data row, or io.EOF when the resource is exhausted.
func (rr *RowReader) Next() (Row, error) {
	fields, err := rr.csv.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, csvParseError(rr.resource, err)
	}
	line, _ := rr.csv.FieldPos(0)
	if err := rr.checkUTF8(line, fields); err != nil {
		return Row{}, err
	}
	return Row{Resource: rr.resource, Line: line, Fields: fields, Header: rr.header}, nil
}

// checkUTF8 rejects the first field that is not valid UTF-8.
func (rr *RowReader) checkUTF8(line int, fields []string) error {
	for i, f := range fields {
		if utf8.ValidString(f) {
			continue
		}
		col := ""
		if i < len(rr.names) {
			col = rr.names[i]
		}
		return &ParseError{
			Resource: rr.resource,
			Line:     line,
			Column:   col,
			Value:    strings.ToValidUTF8(f, string(utf8.RuneError)),
			Err:      ErrInvalidUTF8,
		}
	}
	return nil
}

func csvParseError(res Resource, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Resource: res, Line: pe.Line, Err: pe.Err}
	}
	// Anything else came from the underlying stream, not the CSV syntax.
	return &FetchError{Resource: res, Err: fmt.Errorf("read body: %w", err)}
}
