// Package coretest provides a small, internally consistent geo dataset and an
// in-memory Fetcher for tests of the importer and the storage backends.
package coretest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/JonMunkholm/geoentities/internal/core"
)

const (
	RegionsCSV = "id,name\n" +
		"1,Africa\n" +
		"2,Americas\n"
	SubRegionsCSV = "id,name,region_id\n" +
		"1,Northern Africa,1\n" +
		"7,Caribbean,2\n"
	CountriesCSV = "id,name,iso3,iso2,numeric_code,phone_code,capital,currency,currency_name,currency_symbol,tld,native,region,region_id,subregion,subregion_id,nationality\n" +
		"3,Algeria,DZA,DZ,012,213,Algiers,DZD,Algerian dinar,دج,.dz,الجزائر,Africa,1,Northern Africa,1,Algerian\n" +
		"17,Bahamas,BHS,BS,044,+1-242,Nassau,BSD,Bahamian dollar,B$,.bs,Bahamas,Americas,2,Caribbean,7,Bahamian\n" +
		"9,Antarctica,ATA,AQ,010,672,,AAD,Australian dollar,$,.aq,Antarctica,Polar,,,,Antarctic\n"
	StatesCSV = "id,name,country_id,country_code,country_name,state_code,type,latitude,longitude\n" +
		"1118,Adrar,3,DZ,Algeria,01,province,27.9766155,-0.2007084\n" +
		"3601,New Providence,17,BS,Bahamas,NP,district,,\n"
	CitiesCSV = "id,name,state_id,state_code,state_name,country_id,country_code,country_name,latitude,longitude\n" +
		"1,Adrar,1118,01,Adrar,3,DZ,Algeria,27.87429000,-0.29388000\n" +
		"2,Reggane,1118,01,Adrar,3,DZ,Algeria,26.71731000,0.17163000\n" +
		"3,Nassau,3601,NP,New Providence,17,BS,Bahamas,25.05823000,-77.34306000\n"
)

// FullCounts is the row count per table after loading the fixture.
var FullCounts = core.Counts{Regions: 2, SubRegions: 2, Countries: 3, States: 2, Cities: 3}

// Files returns the fixture resources keyed by name.
func Files() map[core.Resource]string {
	return map[core.Resource]string{
		core.ResourceRegions:    RegionsCSV,
		core.ResourceSubRegions: SubRegionsCSV,
		core.ResourceCountries:  CountriesCSV,
		core.ResourceStates:     StatesCSV,
		core.ResourceCities:     CitiesCSV,
	}
}

// Fetcher serves resources from memory. Missing resources answer 404.
type Fetcher struct {
	mu      sync.Mutex
	files   map[core.Resource]string
	fetched []core.Resource
}

// NewFetcher serves the fixture with overrides applied. An empty override
// removes the resource.
func NewFetcher(overrides map[core.Resource]string) *Fetcher {
	files := Files()
	for k, v := range overrides {
		if v == "" {
			delete(files, k)
			continue
		}
		files[k] = v
	}
	return &Fetcher{files: files}
}

// Fetch implements core.Fetcher.
func (f *Fetcher) Fetch(_ context.Context, res core.Resource) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, res)
	body, ok := f.files[res]
	if !ok {
		return nil, &core.FetchError{Resource: res, StatusCode: 404}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

// Fetched returns the resources requested so far, in order.
func (f *Fetcher) Fetched() []core.Resource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Resource(nil), f.fetched...)
}
