package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/logging"
	"github.com/JonMunkholm/geoentities/internal/web/templates"
)

// listing describes one paginated table: how to read its filter from the
// query string, how to load it and how to render a row.
type listing[F, T any] struct {
	title   string
	path    string
	headers []string
	filter  func(q *query) F
	list    func(ctx context.Context, f F, p core.Page) (core.PageResult[T], error)
	row     func(T) []templates.Cell
}

// query reads filter parameters and remembers the ones that were set so
// pagination links keep them. The first bad id is kept in err.
type query struct {
	values url.Values
	params url.Values
	err    error
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query(), params: url.Values{}}
}

func (q *query) search() string {
	return strings.TrimSpace(q.values.Get("q"))
}

// id returns the named id parameter, or nil when it is absent.
func (q *query) id(name string) *int64 {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if q.err == nil {
			q.err = &paramError{Name: name, Value: raw}
		}
		return nil
	}
	q.params.Set(name, raw)
	return &v
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	i, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func serveListing[F, T any](s *Server, l listing[F, T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := newQuery(r)
		f := l.filter(q)
		if q.err != nil {
			s.respondError(w, r, q.err, http.StatusBadRequest)
			return
		}

		page := core.Page{Number: parseIntParam(r, "page", 1), Size: s.pageSize}
		res, err := l.list(r.Context(), f, page)
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}

		if wantsJSON(r) {
			writeJSON(w, r, http.StatusOK, res)
			return
		}

		rows := make([][]templates.Cell, len(res.Items))
		for i, item := range res.Items {
			rows[i] = l.row(item)
		}
		s.render(w, r, templates.ListingPage(templates.Listing{
			Title:      l.title,
			Path:       l.path,
			Params:     q.params,
			Query:      q.search(),
			Headers:    l.headers,
			Rows:       rows,
			Total:      res.Total,
			Page:       res.Page,
			TotalPages: res.TotalPages,
		}))
	}
}

// render writes c. Output may already be partly sent when it fails, so the
// error is only logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "code": core.MapError(err).Code})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, counts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, counts)
		return
	}

	cards := []templates.Card{
		{Label: "Regions", Href: "/regions", Count: counts.Regions},
		{Label: "Subregions", Href: "/subregions", Count: counts.SubRegions},
		{Label: "Countries", Href: "/countries", Count: counts.Countries},
		{Label: "States", Href: "/states", Count: counts.States},
		{Label: "Cities", Href: "/cities", Count: counts.Cities},
	}
	s.render(w, r, templates.Dashboard(cards))
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	serveListing(s, listing[core.RegionFilter, core.Region]{
		title:   "Regions",
		path:    "/regions",
		headers: []string{"ID", "Name", "Subregions", "Countries"},
		filter: func(q *query) core.RegionFilter {
			return core.RegionFilter{Query: q.search()}
		},
		list: s.store.ListRegions,
		row: func(x core.Region) []templates.Cell {
			return []templates.Cell{
				{Text: itoa(x.ID)},
				{Text: x.Name},
				{Text: "Subregions", Href: "/subregions?region=" + itoa(x.ID)},
				{Text: "Countries", Href: "/countries?region=" + itoa(x.ID)},
			}
		},
	})(w, r)
}

func (s *Server) handleSubRegions(w http.ResponseWriter, r *http.Request) {
	serveListing(s, listing[core.SubRegionFilter, core.SubRegionRow]{
		title:   "Subregions",
		path:    "/subregions",
		headers: []string{"ID", "Name", "Region"},
		filter: func(q *query) core.SubRegionFilter {
			return core.SubRegionFilter{RegionID: q.id("region"), Query: q.search()}
		},
		list: s.store.ListSubRegions,
		row: func(x core.SubRegionRow) []templates.Cell {
			return []templates.Cell{
				{Text: itoa(x.ID)},
				{Text: x.Name, Href: "/countries?subregion=" + itoa(x.ID)},
				{Text: x.RegionName, Href: "/subregions?region=" + itoa(x.RegionID)},
			}
		},
	})(w, r)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	serveListing(s, listing[core.CountryFilter, core.CountryRow]{
		title:   "Countries",
		path:    "/countries",
		headers: []string{"ID", "Name", "ISO2", "ISO3", "Phone code", "Capital", "Currency", "Region", "Subregion"},
		filter: func(q *query) core.CountryFilter {
			return core.CountryFilter{RegionID: q.id("region"), SubRegionID: q.id("subregion"), Query: q.search()}
		},
		list: s.store.ListCountries,
		row: func(x core.CountryRow) []templates.Cell {
			return []templates.Cell{
				{Text: itoa(x.ID)},
				{Text: x.Name, Href: "/states?country=" + itoa(x.ID)},
				{Text: x.ISO2},
				{Text: x.ISO3},
				{Text: x.PhoneCode},
				{Text: x.Capital},
				{Text: x.Currency},
				parentCell(x.RegionName, "/countries?region=", x.RegionID),
				parentCell(x.SubRegionName, "/countries?subregion=", x.SubRegionID),
			}
		},
	})(w, r)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	serveListing(s, listing[core.StateFilter, core.StateRow]{
		title:   "States",
		path:    "/states",
		headers: []string{"ID", "Name", "Code", "Country", "Latitude", "Longitude"},
		filter: func(q *query) core.StateFilter {
			return core.StateFilter{CountryID: q.id("country"), Query: q.search()}
		},
		list: s.store.ListStates,
		row: func(x core.StateRow) []templates.Cell {
			return []templates.Cell{
				{Text: itoa(x.ID)},
				{Text: x.Name, Href: "/cities?state=" + itoa(x.ID)},
				{Text: x.Code},
				{Text: x.CountryName, Href: "/states?country=" + itoa(x.CountryID)},
				{Text: coord(x.Latitude)},
				{Text: coord(x.Longitude)},
			}
		},
	})(w, r)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	serveListing(s, listing[core.CityFilter, core.CityRow]{
		title:   "Cities",
		path:    "/cities",
		headers: []string{"ID", "Name", "State", "Country", "Region", "Latitude", "Longitude"},
		filter: func(q *query) core.CityFilter {
			return core.CityFilter{StateID: q.id("state"), CountryID: q.id("country"), Query: q.search()}
		},
		list: s.store.ListCities,
		row: func(x core.CityRow) []templates.Cell {
			return []templates.Cell{
				{Text: itoa(x.ID)},
				{Text: x.Name},
				{Text: x.StateName, Href: "/cities?state=" + itoa(x.StateID)},
				{Text: x.CountryName},
				{Text: x.RegionDisplay()},
				{Text: coord(x.Latitude)},
				{Text: coord(x.Longitude)},
			}
		},
	})(w, r)
}

// parentCell links to a listing filtered by an optional parent, or shows "-".
func parentCell(name, prefix string, id *int64) templates.Cell {
	if id == nil {
		return templates.Cell{Text: "-"}
	}
	return templates.Cell{Text: name, Href: prefix + itoa(*id)}
}

func coord(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
