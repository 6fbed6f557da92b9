// Package memstore is an in-memory core.Store. Transactions work on a copy
// of the dataset that replaces the live one only on commit, and foreign keys
// and cascades follow the same rules as the SQL backends.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/JonMunkholm/geoentities/internal/core"
)

type dataset struct {
	regions    map[int64]core.Region
	subRegions map[int64]core.SubRegion
	countries  map[int64]core.Country
	states     map[int64]core.State
	cities     map[int64]core.City
}

func newDataset() *dataset {
	return &dataset{
		regions:    map[int64]core.Region{},
		subRegions: map[int64]core.SubRegion{},
		countries:  map[int64]core.Country{},
		states:     map[int64]core.State{},
		cities:     map[int64]core.City{},
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		regions:    maps.Clone(d.regions),
		subRegions: maps.Clone(d.subRegions),
		countries:  maps.Clone(d.countries),
		states:     maps.Clone(d.states),
		cities:     maps.Clone(d.cities),
	}
}

// Store is safe for concurrent use; transactions are serialized.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

var _ core.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{data: newDataset()}
}

// InTx runs fn against a private copy of the dataset and publishes it only
// if fn returns nil. A panic in fn leaves the store unchanged.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, w core.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(ctx, &writer{d: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx
	return nil
}

// Delete removes a row and cascades to everything that references it.
func (s *Store) Delete(ctx context.Context, e core.Entity, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data
	var found bool
	switch e {
	case core.EntityRegion:
		_, found = d.regions[id]
	case core.EntitySubRegion:
		_, found = d.subRegions[id]
	case core.EntityCountry:
		_, found = d.countries[id]
	case core.EntityState:
		_, found = d.states[id]
	case core.EntityCity:
		_, found = d.cities[id]
	default:
		return fmt.Errorf("delete: unknown entity %q", e)
	}
	if !found {
		return fmt.Errorf("delete %s %d: %w", e, id, core.ErrNotFound)
	}

	switch e {
	case core.EntityRegion:
		d.deleteRegion(id)
	case core.EntitySubRegion:
		d.deleteSubRegion(id)
	case core.EntityCountry:
		d.deleteCountry(id)
	case core.EntityState:
		d.deleteState(id)
	case core.EntityCity:
		delete(d.cities, id)
	}
	return nil
}

func (d *dataset) deleteRegion(id int64) {
	for sid, sr := range d.subRegions {
		if sr.RegionID == id {
			d.deleteSubRegion(sid)
		}
	}
	for cid, c := range d.countries {
		if c.RegionID != nil && *c.RegionID == id {
			d.deleteCountry(cid)
		}
	}
	delete(d.regions, id)
}

func (d *dataset) deleteSubRegion(id int64) {
	for cid, c := range d.countries {
		if c.SubRegionID != nil && *c.SubRegionID == id {
			d.deleteCountry(cid)
		}
	}
	delete(d.subRegions, id)
}

func (d *dataset) deleteCountry(id int64) {
	for sid, st := range d.states {
		if st.CountryID == id {
			d.deleteState(sid)
		}
	}
	delete(d.countries, id)
}

func (d *dataset) deleteState(id int64) {
	for cid, c := range d.cities {
		if c.StateID == id {
			delete(d.cities, cid)
		}
	}
	delete(d.states, id)
}

// Counts returns the committed row counts.
func (s *Store) Counts(context.Context) (core.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Counts{
		Regions:    int64(len(s.data.regions)),
		SubRegions: int64(len(s.data.subRegions)),
		Countries:  int64(len(s.data.countries)),
		States:     int64(len(s.data.states)),
		Cities:     int64(len(s.data.cities)),
	}, nil
}

// Region returns a committed region by id.
func (s *Store) Region(id int64) (core.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.regions[id]
	return r, ok
}

// Country returns a committed country by id.
func (s *Store) Country(id int64) (core.Country, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.countries[id]
	return c, ok
}

// City returns a committed city by id.
func (s *Store) City(id int64) (core.City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.cities[id]
	return c, ok
}
