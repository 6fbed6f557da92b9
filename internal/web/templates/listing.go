package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
)

// Card is one dashboard tile.
type Card struct {
	Label string
	Href  string
	Count int64
}

// Dashboard shows the row count of every table.
func Dashboard(cards []Card) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="cards">`)
		for _, c := range cards {
			h.raw(`<a class="card" href="`)
			h.attrURL(c.Href)
			h.raw(`"><strong>`)
			h.int(c.Count)
			h.raw(`</strong>`)
			h.text(c.Label)
			h.raw(`</a>`)
		}
		h.raw(`</div>`)
		return h.err
	})
	return Page("Dashboard", "/", body)
}

// Cell is one table cell; Href makes it a link.
type Cell struct {
	Text string
	Href string
}

// Listing is one page of a table.
type Listing struct {
	Title   string
	Path    string     // page URL without query
	Params  url.Values // active filters, kept across paging and search
	Query   string
	Headers []string
	Rows    [][]Cell

	Total      int64
	Page       int
	TotalPages int
}

// PageURL returns the listing URL for page n, keeping filters and search.
func (l Listing) PageURL(n int) string {
	v := url.Values{}
	for k, vals := range l.Params {
		v[k] = vals
	}
	if l.Query != "" {
		v.Set("q", l.Query)
	}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if len(v) == 0 {
		return l.Path
	}
	return l.Path + "?" + v.Encode()
}

// ListingPage renders a search box, the table and pagination links.
func ListingPage(l Listing) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}

		h.raw(`<form method="get" action="`)
		h.attrURL(l.Path)
		h.raw(`">`)
		for k, vals := range l.Params {
			for _, v := range vals {
				h.raw(`<input type="hidden" name="`)
				h.text(k)
				h.raw(`" value="`)
				h.text(v)
				h.raw(`">`)
			}
		}
		h.raw(`<input type="search" name="q" placeholder="Search by name" value="`)
		h.text(l.Query)
		h.raw(`"> <button type="submit">Search</button></form>`)

		h.raw(`<p class="muted">`)
		h.int(l.Total)
		h.raw(` result(s)</p>`)

		if len(l.Rows) == 0 {
			h.raw(`<p>No rows.</p>`)
		} else {
			h.raw(`<table><thead><tr>`)
			for _, col := range l.Headers {
				h.raw(`<th>`)
				h.text(col)
				h.raw(`</th>`)
			}
			h.raw(`</tr></thead><tbody>`)
			for _, row := range l.Rows {
				h.raw(`<tr>`)
				for _, cell := range row {
					h.raw(`<td>`)
					if cell.Href != "" {
						h.raw(`<a href="`)
						h.attrURL(cell.Href)
						h.raw(`">`)
						h.text(cell.Text)
						h.raw(`</a>`)
					} else {
						h.text(cell.Text)
					}
					h.raw(`</td>`)
				}
				h.raw(`</tr>`)
			}
			h.raw(`</tbody></table>`)
		}

		h.raw(`<div class="pager">`)
		if l.Page > 1 {
			h.raw(`<a rel="prev" href="`)
			h.attrURL(l.PageURL(l.Page - 1))
			h.raw(`">&larr; Previous</a>`)
		}
		h.raw(`<span>Page `)
		h.int(int64(l.Page))
		h.raw(` of `)
		h.int(int64(max(l.TotalPages, 1)))
		h.raw(`</span>`)
		if l.Page < l.TotalPages {
			h.raw(` <a rel="next" href="`)
			h.attrURL(l.PageURL(l.Page + 1))
			h.raw(`">Next &rarr;</a>`)
		}
		h.raw(`</div>`)
		return h.err
	})
	return Page(l.Title, l.Path, body)
}
