package sqlite

import "github.com/JonMunkholm/geoentities/internal/core"

// Column sets are split from the table models so listing queries can scan
// into them without dragging the relation fields along. They are exported
// only because gorm ignores unexported embedded structs.

type RegionColumns struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;size:255;not null;index"`
}

type SubRegionColumns struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name     string `gorm:"column:name;size:255;not null;index"`
	RegionID int64  `gorm:"column:region_id;not null;index"`
}

type CountryColumns struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name           string `gorm:"column:name;size:255;not null;index"`
	ISO3           string `gorm:"column:iso3;size:3"`
	ISO2           string `gorm:"column:iso2;size:2"`
	NumericCode    string `gorm:"column:numeric_code;size:4"`
	PhoneCode      string `gorm:"column:phone_code;size:10"`
	Capital        string `gorm:"column:capital;size:255"`
	Currency       string `gorm:"column:currency;size:255"`
	CurrencyName   string `gorm:"column:currency_name;size:255"`
	CurrencySymbol string `gorm:"column:currency_symbol;size:255"`
	TLD            string `gorm:"column:tld;size:10"`
	Native         string `gorm:"column:native;size:255"`
	Nationality    string `gorm:"column:nationality;size:255"`
	RegionID       *int64 `gorm:"column:region_id;index"`
	SubRegionID    *int64 `gorm:"column:subregion_id;index"`
}

type StateColumns struct {
	ID        int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string   `gorm:"column:name;size:255;not null;index"`
	Code      string   `gorm:"column:code;size:10"`
	CountryID int64    `gorm:"column:country_id;not null;index"`
	Latitude  *float64 `gorm:"column:latitude;type:numeric"`
	Longitude *float64 `gorm:"column:longitude;type:numeric"`
}

type CityColumns struct {
	ID        int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string   `gorm:"column:name;size:255;not null;index"`
	StateID   int64    `gorm:"column:state_id;not null;index"`
	Latitude  *float64 `gorm:"column:latitude;type:numeric"`
	Longitude *float64 `gorm:"column:longitude;type:numeric"`
}

type regionModel struct {
	RegionColumns
}

func (regionModel) TableName() string { return "geo_regions" }

type subRegionModel struct {
	SubRegionColumns
	Region *regionModel `gorm:"foreignKey:RegionID;constraint:OnDelete:CASCADE"`
}

func (subRegionModel) TableName() string { return "geo_subregions" }

type countryModel struct {
	CountryColumns
	Region    *regionModel    `gorm:"foreignKey:RegionID;constraint:OnDelete:CASCADE"`
	SubRegion *subRegionModel `gorm:"foreignKey:SubRegionID;constraint:OnDelete:CASCADE"`
}

func (countryModel) TableName() string { return "geo_countries" }

type stateModel struct {
	StateColumns
	Country *countryModel `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE"`
}

func (stateModel) TableName() string { return "geo_states" }

type cityModel struct {
	CityColumns
	State *stateModel `gorm:"foreignKey:StateID;constraint:OnDelete:CASCADE"`
}

func (cityModel) TableName() string { return "geo_cities" }

// allModels is the AutoMigrate set, parents first.
var allModels = []any{&regionModel{}, &subRegionModel{}, &countryModel{}, &stateModel{}, &cityModel{}}

func modelFor(e core.Entity) (any, bool) {
	switch e {
	case core.EntityRegion:
		return &regionModel{}, true
	case core.EntitySubRegion:
		return &subRegionModel{}, true
	case core.EntityCountry:
		return &countryModel{}, true
	case core.EntityState:
		return &stateModel{}, true
	case core.EntityCity:
		return &cityModel{}, true
	}
	return nil, false
}

func fromRegion(r core.Region) regionModel {
	return regionModel{RegionColumns{ID: r.ID, Name: r.Name}}
}

func (f RegionColumns) toCore() core.Region {
	return core.Region{ID: f.ID, Name: f.Name}
}

func fromSubRegion(r core.SubRegion) subRegionModel {
	return subRegionModel{SubRegionColumns: SubRegionColumns{ID: r.ID, Name: r.Name, RegionID: r.RegionID}}
}

func (f SubRegionColumns) toCore() core.SubRegion {
	return core.SubRegion{ID: f.ID, Name: f.Name, RegionID: f.RegionID}
}

func fromCountry(c core.Country) countryModel {
	return countryModel{CountryColumns: CountryColumns{
		ID:             c.ID,
		Name:           c.Name,
		ISO3:           c.ISO3,
		ISO2:           c.ISO2,
		NumericCode:    c.NumericCode,
		PhoneCode:      c.PhoneCode,
		Capital:        c.Capital,
		Currency:       c.Currency,
		CurrencyName:   c.CurrencyName,
		CurrencySymbol: c.CurrencySymbol,
		TLD:            c.TLD,
		Native:         c.Native,
		Nationality:    c.Nationality,
		RegionID:       c.RegionID,
		SubRegionID:    c.SubRegionID,
	}}
}

func (f CountryColumns) toCore() core.Country {
	return core.Country{
		ID:             f.ID,
		Name:           f.Name,
		ISO3:           f.ISO3,
		ISO2:           f.ISO2,
		NumericCode:    f.NumericCode,
		PhoneCode:      f.PhoneCode,
		Capital:        f.Capital,
		Currency:       f.Currency,
		CurrencyName:   f.CurrencyName,
		CurrencySymbol: f.CurrencySymbol,
		TLD:            f.TLD,
		Native:         f.Native,
		Nationality:    f.Nationality,
		RegionID:       f.RegionID,
		SubRegionID:    f.SubRegionID,
	}
}

func fromState(s core.State) stateModel {
	return stateModel{StateColumns: StateColumns{
		ID: s.ID, Name: s.Name, Code: s.Code, CountryID: s.CountryID,
		Latitude: s.Latitude, Longitude: s.Longitude,
	}}
}

func (f StateColumns) toCore() core.State {
	return core.State{
		ID: f.ID, Name: f.Name, Code: f.Code, CountryID: f.CountryID,
		Latitude: f.Latitude, Longitude: f.Longitude,
	}
}

func fromCity(c core.City) cityModel {
	return cityModel{CityColumns: CityColumns{
		ID: c.ID, Name: c.Name, StateID: c.StateID,
		Latitude: c.Latitude, Longitude: c.Longitude,
	}}
}

func (f CityColumns) toCore() core.City {
	return core.City{
		ID: f.ID, Name: f.Name, StateID: f.StateID,
		Latitude: f.Latitude, Longitude: f.Longitude,
	}
}
