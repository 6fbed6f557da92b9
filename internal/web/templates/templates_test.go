package templates

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestListingPage_EscapesAndPaginates(t *testing.T) {
	l := Listing{
		Title:   "Cities",
		Path:    "/cities",
		Params:  url.Values{"country": {"17"}},
		Query:   `<script>`,
		Headers: []string{"Name", "State"},
		Rows: [][]Cell{
			{{Text: "Nassau"}, {Text: "New Providence", Href: "/states?country=17"}},
		},
		Total:      41,
		Page:       2,
		TotalPages: 3,
	}

	out := render(t, ListingPage(l))

	assert.Contains(t, out, "<title>Cities | Geo data</title>")
	assert.Contains(t, out, `&lt;script&gt;`)
	assert.NotContains(t, out, `value="<script>"`)
	assert.Contains(t, out, `<a href="/states?country=17">New Providence</a>`)
	assert.Contains(t, out, `<a rel="prev" href="/cities?country=17&amp;q=%3Cscript%3E">`)
	assert.Contains(t, out, `<a rel="next" href="/cities?country=17&amp;page=3&amp;q=%3Cscript%3E">`)
	assert.Contains(t, out, `<input type="hidden" name="country" value="17">`)
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, `<a href="/cities" class="active">Cities</a>`)
}

func TestListingPage_Empty(t *testing.T) {
	out := render(t, ListingPage(Listing{Title: "States", Path: "/states", Page: 1}))
	assert.Contains(t, out, "No rows.")
	assert.Contains(t, out, "Page 1 of 1")
	assert.NotContains(t, out, `rel="next"`)
	assert.NotContains(t, out, `rel="prev"`)
}

func TestPageURL(t *testing.T) {
	l := Listing{Path: "/regions"}
	assert.Equal(t, "/regions", l.PageURL(1))
	assert.Equal(t, "/regions?page=2", l.PageURL(2))
}

func TestDashboard(t *testing.T) {
	out := render(t, Dashboard([]Card{{Label: "Regions", Href: "/regions", Count: 6}}))
	assert.Contains(t, out, `<a class="card" href="/regions"><strong>6</strong>Regions</a>`)
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage("Not found", "Check the id", "NF001"))
	assert.Contains(t, out, "Not found")
	assert.Contains(t, out, "Check the id")
	assert.Contains(t, out, "Error code: NF001")
}

func TestUnsafeHrefIsNeutralised(t *testing.T) {
	out := render(t, ListingPage(Listing{
		Path: "/regions", Page: 1, Headers: []string{"x"},
		Rows: [][]Cell{{{Text: "x", Href: "javascript:alert(1)"}}},
	}))
	assert.NotContains(t, out, "javascript:")
}
