package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "fetch error",
			err:      &FetchError{Resource: ResourceCities, StatusCode: 404},
			wantCode: "FETCH001",
		},
		{
			name:     "wrapped parse error",
			err:      fmt.Errorf("import Cities: %w", &ParseError{Resource: ResourceCities, Line: 3, Column: "id", Value: "x", Err: errors.New("bad")}),
			wantCode: "PARSE001",
		},
		{
			name:     "schema error",
			err:      &SchemaError{Resource: ResourceStates, Missing: []string{"latitude"}},
			wantCode: "SCHEMA001",
		},
		{
			name:     "referential error",
			err:      &ReferentialError{Entity: EntityState, ID: 9, Err: errors.New("country 1 missing")},
			wantCode: "REF001",
		},
		{
			name:     "duplicate error",
			err:      &DuplicateError{Entity: EntityRegion, ID: 1, Err: errors.New("exists")},
			wantCode: "DUP001",
		},
		{
			name:     "not found",
			err:      fmt.Errorf("delete country 4: %w", ErrNotFound),
			wantCode: "NF001",
		},
		{
			name:     "untyped foreign key falls back to pattern",
			err:      errors.New("ERROR: insert violates foreign key constraint \"fk\""),
			wantCode: "REF001",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "cancelled context",
			err:      context.Canceled,
			wantCode: "CTX001",
		},
		{
			name:     "unknown error uses default",
			err:      errors.New("something weird happened"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_SchemaBeatsWrappedFetch(t *testing.T) {
	// A schema error surfaced while reading a stream must not be reported as
	// a download problem.
	err := fmt.Errorf("import States: %w", &SchemaError{Resource: ResourceStates, Missing: []string{"id"}})
	if got := MapError(err).Code; got != "SCHEMA001" {
		t.Errorf("MapError() code = %q, want SCHEMA001", got)
	}
}

func TestFormatUserError(t *testing.T) {
	err := &DuplicateError{Entity: EntityCountry, ID: 1, Err: errors.New("exists")}
	result := FormatUserError(err)

	expected := "A record with this ID already exists (Code: DUP001). Set IMPORT_CONFLICT_POLICY to skip or update"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "typed error is user facing", err: &FetchError{Resource: ResourceRegions, Err: errors.New("x")}, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&FetchError{Resource: ResourceRegions, StatusCode: 503}, "fetch regions.csv: unexpected status 503"},
		{&FetchError{Resource: ResourceRegions, Err: errors.New("dial failed")}, "fetch regions.csv: dial failed"},
		{&SchemaError{Resource: ResourceStates, Missing: []string{"latitude", "longitude"}}, "schema mismatch in states.csv: missing required column(s) latitude, longitude"},
		{&ParseError{Resource: ResourceCities, Line: 7, Err: errors.New("bare quote")}, "parse cities.csv line 7: bare quote"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
