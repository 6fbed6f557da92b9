package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/core/coretest"
)

// openTest returns a migrated in-memory store private to t.
func openTest(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), Options{BatchSize: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = openTest(s.T())
}

func (s *StoreSuite) importFixture(opts ...core.Option) *core.ImportResult {
	res, err := core.NewImporter(coretest.NewFetcher(nil), s.store, opts...).Run(s.ctx)
	s.Require().NoError(err)
	return res
}

func (s *StoreSuite) counts() core.Counts {
	c, err := s.store.Counts(s.ctx)
	s.Require().NoError(err)
	return c
}

func (s *StoreSuite) TestImport_LoadsFixture() {
	res := s.importFixture()

	s.Equal(coretest.FullCounts, s.counts())
	_, written := res.Totals()
	s.Equal(int64(12), written)
}

func (s *StoreSuite) TestImport_IsIdempotent() {
	s.importFixture()
	res := s.importFixture()

	s.Equal(coretest.FullCounts, s.counts())
	for _, st := range res.Stages {
		s.Zero(st.Written, st.Stage.Label)
	}
}

func (s *StoreSuite) TestImport_UpdatePolicyOverwrites() {
	err := s.store.InTx(s.ctx, func(ctx context.Context, w core.Writer) error {
		_, err := w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Old Africa"}}, core.ConflictSkip)
		return err
	})
	s.Require().NoError(err)

	s.importFixture(core.WithConflictPolicy(core.ConflictUpdate))

	page, err := s.store.ListRegions(s.ctx, core.RegionFilter{Query: "africa"}, core.Page{})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Africa", page.Items[0].Name)
}

func (s *StoreSuite) TestImport_FailureRollsBack() {
	bad := coretest.CitiesCSV + "4,Ghost Town,424242,XX,Nowhere,3,DZ,Algeria,,\n"
	_, err := core.NewImporter(coretest.NewFetcher(map[core.Resource]string{core.ResourceCities: bad}), s.store).Run(s.ctx)

	var refErr *core.ReferentialError
	s.Require().ErrorAs(err, &refErr)
	s.Equal(core.EntityCity, refErr.Entity)
	s.Equal(core.Counts{}, s.counts())
}

func (s *StoreSuite) TestInsert_DuplicateUnderErrorPolicy() {
	s.importFixture()

	err := s.store.InTx(s.ctx, func(ctx context.Context, w core.Writer) error {
		_, err := w.InsertRegions(ctx, []core.Region{{ID: 1, Name: "Africa"}}, core.ConflictError)
		return err
	})

	var dupErr *core.DuplicateError
	s.Require().ErrorAs(err, &dupErr)
	s.Equal(core.EntityRegion, dupErr.Entity)
}

func (s *StoreSuite) TestDelete_CascadesCountry() {
	s.importFixture()

	s.Require().NoError(s.store.Delete(s.ctx, core.EntityCountry, 3))

	s.Equal(core.Counts{Regions: 2, SubRegions: 2, Countries: 2, States: 1, Cities: 1}, s.counts())
}

func (s *StoreSuite) TestDelete_CascadesRegion() {
	s.importFixture()

	s.Require().NoError(s.store.Delete(s.ctx, core.EntityRegion, 2))

	// Americas takes Caribbean, Bahamas, New Providence and Nassau with it.
	s.Equal(core.Counts{Regions: 1, SubRegions: 1, Countries: 2, States: 1, Cities: 2}, s.counts())
}

func (s *StoreSuite) TestDelete_NotFound() {
	err := s.store.Delete(s.ctx, core.EntityState, 77)
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestListCountries_FiltersAndOrder() {
	s.importFixture()

	all, err := s.store.ListCountries(s.ctx, core.CountryFilter{}, core.Page{})
	s.Require().NoError(err)
	s.Equal(int64(3), all.Total)
	s.Equal([]string{"Algeria", "Antarctica", "Bahamas"}, countryNames(all.Items))
	s.Equal("Africa", all.Items[0].RegionName)
	s.Equal("Northern Africa", all.Items[0].SubRegionName)
	s.Equal("", all.Items[1].RegionName)
	s.Equal("1", all.Items[2].PhoneCode)

	americas := int64(2)
	filtered, err := s.store.ListCountries(s.ctx, core.CountryFilter{RegionID: &americas}, core.Page{})
	s.Require().NoError(err)
	s.Equal([]string{"Bahamas"}, countryNames(filtered.Items))

	searched, err := s.store.ListCountries(s.ctx, core.CountryFilter{Query: "ANT"}, core.Page{})
	s.Require().NoError(err)
	s.Equal([]string{"Antarctica"}, countryNames(searched.Items))
}

func (s *StoreSuite) TestListCities_Pagination() {
	s.importFixture()

	first, err := s.store.ListCities(s.ctx, core.CityFilter{}, core.Page{Number: 1, Size: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), first.Total)
	s.Equal(2, first.TotalPages)
	s.True(first.HasNext())
	s.Require().Len(first.Items, 2)
	s.Equal("Adrar", first.Items[0].Name)
	s.Equal("Adrar", first.Items[0].StateName)
	s.Equal("Algeria", first.Items[0].CountryName)
	s.Equal("Africa", first.Items[0].RegionDisplay())
	s.Require().NotNil(first.Items[0].Latitude)
	s.InDelta(27.87429, *first.Items[0].Latitude, 1e-9)

	second, err := s.store.ListCities(s.ctx, core.CityFilter{}, core.Page{Number: 2, Size: 2})
	s.Require().NoError(err)
	s.Require().Len(second.Items, 1)
	s.Equal("Reggane", second.Items[0].Name)
	s.False(second.HasNext())
}

func (s *StoreSuite) TestListCities_FilterByCountry() {
	s.importFixture()

	bahamas := int64(17)
	res, err := s.store.ListCities(s.ctx, core.CityFilter{CountryID: &bahamas}, core.Page{})
	s.Require().NoError(err)
	s.Require().Len(res.Items, 1)
	s.Equal("Nassau", res.Items[0].Name)
	s.Equal("Americas", res.Items[0].RegionName)
}

func (s *StoreSuite) TestListStatesAndSubRegions() {
	s.importFixture()

	algeria := int64(3)
	states, err := s.store.ListStates(s.ctx, core.StateFilter{CountryID: &algeria}, core.Page{})
	s.Require().NoError(err)
	s.Require().Len(states.Items, 1)
	s.Equal("Adrar", states.Items[0].Name)
	s.Equal("01", states.Items[0].Code)
	s.Equal("Algeria", states.Items[0].CountryName)

	providence, err := s.store.ListStates(s.ctx, core.StateFilter{Query: "providence"}, core.Page{})
	s.Require().NoError(err)
	s.Require().Len(providence.Items, 1)
	s.Nil(providence.Items[0].Latitude)

	subs, err := s.store.ListSubRegions(s.ctx, core.SubRegionFilter{}, core.Page{})
	s.Require().NoError(err)
	s.Require().Len(subs.Items, 2)
	s.Equal("Caribbean", subs.Items[0].Name)
	s.Equal("Americas", subs.Items[0].RegionName)
}

func countryNames(rows []core.CountryRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func TestMigrate_ReopenedFile(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "geo.db")

	for i := 1; i <= 2; i++ {
		s, err := Open(dsn, Options{})
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("migrate #%d: %v", i, err)
		}
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("migrate #%d again: %v", i, err)
		}
		res, err := core.NewImporter(coretest.NewFetcher(nil), s).Run(ctx)
		if err != nil {
			t.Fatalf("import #%d: %v", i, err)
		}
		if _, written := res.Totals(); i == 2 && written != 0 {
			t.Errorf("import #2 wrote %d rows, want 0", written)
		}
		c, err := s.Counts(ctx)
		if err != nil {
			t.Fatalf("counts #%d: %v", i, err)
		}
		if c != coretest.FullCounts {
			t.Errorf("counts #%d = %+v, want %+v", i, c, coretest.FullCounts)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
}

func TestMigrate_Coordinates(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if _, err := core.NewImporter(coretest.NewFetcher(nil), s).Run(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	page, err := s.ListCities(ctx, core.CityFilter{Query: "Nassau"}, core.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Latitude == nil || *page.Items[0].Latitude != 25.05823 {
		t.Errorf("Nassau latitude not preserved: %+v", page.Items)
	}
}
