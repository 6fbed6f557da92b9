package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/geoentities/internal/core"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	err := s.InTx(ctx, func(ctx context.Context, w core.Writer) error {
		if _, err := w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Africa"}, {ID: 2, Name: "Americas"}}, core.ConflictSkip); err != nil {
			return err
		}
		if _, err := w.InsertSubRegions(ctx, []core.SubRegion{{ID: 1, Name: "Northern Africa", RegionID: 1}}, core.ConflictSkip); err != nil {
			return err
		}
		if _, err := w.InsertCountries(ctx, []core.Country{
			{ID: 3, Name: "Algeria", RegionID: ptr(int64(1)), SubRegionID: ptr(int64(1))},
			{ID: 9, Name: "Antarctica"},
		}, core.ConflictSkip); err != nil {
			return err
		}
		if _, err := w.InsertStates(ctx, []core.State{{ID: 10, Name: "Adrar", CountryID: 3}}, core.ConflictSkip); err != nil {
			return err
		}
		_, err := w.InsertCities(ctx, []core.City{{ID: 100, Name: "Adrar", StateID: 10}, {ID: 101, Name: "Reggane", StateID: 10}}, core.ConflictSkip)
		return err
	})
	require.NoError(t, err)
}

func TestInTx_CommitAndCounts(t *testing.T) {
	s := New()
	seed(t, s)

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Counts{Regions: 2, SubRegions: 1, Countries: 2, States: 1, Cities: 2}, counts)
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	err := s.InTx(context.Background(), func(ctx context.Context, w core.Writer) error {
		_, err := w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Africa"}}, core.ConflictSkip)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	counts, _ := s.Counts(context.Background())
	assert.Zero(t, counts.Regions)
}

func TestInTx_RollbackOnPanic(t *testing.T) {
	s := New()

	assert.Panics(t, func() {
		_ = s.InTx(context.Background(), func(ctx context.Context, w core.Writer) error {
			_, _ = w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Africa"}}, core.ConflictSkip)
			panic("boom")
		})
	})

	counts, _ := s.Counts(context.Background())
	assert.Zero(t, counts.Regions)
}

func TestInsert_ForeignKeys(t *testing.T) {
	s := New()
	err := s.InTx(context.Background(), func(ctx context.Context, w core.Writer) error {
		_, err := w.InsertStates(ctx, []core.State{{ID: 1, Name: "Orphan", CountryID: 42}}, core.ConflictSkip)
		return err
	})

	var refErr *core.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, core.EntityState, refErr.Entity)
	assert.Equal(t, int64(1), refErr.ID)
}

func TestInsert_ConflictPolicies(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		policy      core.ConflictPolicy
		wantWritten int64
		wantName    string
		wantDupErr  bool
	}{
		{core.ConflictSkip, 1, "Africa", false},
		{core.ConflictUpdate, 2, "Afrika", false},
		{core.ConflictError, 0, "Africa", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			s := New()
			seed(t, s)

			var written int64
			err := s.InTx(ctx, func(ctx context.Context, w core.Writer) error {
				var err error
				written, err = w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Afrika"}, {ID: 5, Name: "Oceania"}}, tt.policy)
				return err
			})

			if tt.wantDupErr {
				var dupErr *core.DuplicateError
				require.ErrorAs(t, err, &dupErr)
				assert.Equal(t, int64(1), dupErr.ID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantWritten, written)
			}

			r, ok := s.Region(1)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, r.Name)
		})
	}
}

func TestDelete_CascadesCountryToStatesAndCities(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.Delete(context.Background(), core.EntityCountry, 3))

	counts, _ := s.Counts(context.Background())
	assert.Equal(t, core.Counts{Regions: 2, SubRegions: 1, Countries: 1, States: 0, Cities: 0}, counts)
	_, ok := s.City(100)
	assert.False(t, ok)
}

func TestDelete_CascadesRegion(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.Delete(context.Background(), core.EntityRegion, 1))

	counts, _ := s.Counts(context.Background())
	assert.Equal(t, core.Counts{Regions: 1, SubRegions: 0, Countries: 1, States: 0, Cities: 0}, counts)
	_, ok := s.Country(9)
	assert.True(t, ok, "country without region survives")
}

func TestDelete_NotFound(t *testing.T) {
	s := New()
	err := s.Delete(context.Background(), core.EntityCity, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
