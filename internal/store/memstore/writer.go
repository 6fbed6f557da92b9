package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/geoentities/internal/core"
)

var errExists = errors.New("id already exists")

type writer struct {
	d *dataset
}

// insert applies policy to each row. FK checks run only for rows that are
// actually written, matching ON CONFLICT DO NOTHING semantics.
func insert[T any](
	table map[int64]T,
	entity core.Entity,
	rows []T,
	policy core.ConflictPolicy,
	id func(T) int64,
	check func(T) error,
) (int64, error) {
	var written int64
	for _, r := range rows {
		key := id(r)
		if _, exists := table[key]; exists {
			switch policy {
			case core.ConflictUpdate:
			case core.ConflictError:
				return written, &core.DuplicateError{Entity: entity, ID: key, Err: errExists}
			default:
				continue
			}
		}
		if err := check(r); err != nil {
			return written, &core.ReferentialError{Entity: entity, ID: key, Err: err}
		}
		table[key] = r
		written++
	}
	return written, nil
}

func requireParent[T any](table map[int64]T, name string, id int64) error {
	if _, ok := table[id]; !ok {
		return fmt.Errorf("%s %d does not exist", name, id)
	}
	return nil
}

func (w *writer) InsertRegions(_ context.Context, rows []core.Region, policy core.ConflictPolicy) (int64, error) {
	return insert(w.d.regions, core.EntityRegion, rows, policy,
		func(r core.Region) int64 { return r.ID },
		func(core.Region) error { return nil },
	)
}

func (w *writer) InsertSubRegions(_ context.Context, rows []core.SubRegion, policy core.ConflictPolicy) (int64, error) {
	return insert(w.d.subRegions, core.EntitySubRegion, rows, policy,
		func(r core.SubRegion) int64 { return r.ID },
		func(r core.SubRegion) error { return requireParent(w.d.regions, "region", r.RegionID) },
	)
}

func (w *writer) InsertCountries(_ context.Context, rows []core.Country, policy core.ConflictPolicy) (int64, error) {
	return insert(w.d.countries, core.EntityCountry, rows, policy,
		func(c core.Country) int64 { return c.ID },
		func(c core.Country) error {
			if c.RegionID != nil {
				if err := requireParent(w.d.regions, "region", *c.RegionID); err != nil {
					return err
				}
			}
			if c.SubRegionID != nil {
				return requireParent(w.d.subRegions, "subregion", *c.SubRegionID)
			}
			return nil
		},
	)
}

func (w *writer) InsertStates(_ context.Context, rows []core.State, policy core.ConflictPolicy) (int64, error) {
	return insert(w.d.states, core.EntityState, rows, policy,
		func(s core.State) int64 { return s.ID },
		func(s core.State) error { return requireParent(w.d.countries, "country", s.CountryID) },
	)
}

func (w *writer) InsertCities(_ context.Context, rows []core.City, policy core.ConflictPolicy) (int64, error) {
	return insert(w.d.cities, core.EntityCity, rows, policy,
		func(c core.City) int64 { return c.ID },
		func(c core.City) error { return requireParent(w.d.states, "state", c.StateID) },
	)
}
