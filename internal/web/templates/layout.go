// Package templates renders the admin listing pages as templ components.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label string
	Href  string
}

// Nav lists the pages in display order.
var Nav = []NavItem{
	{"Dashboard", "/"},
	{"Regions", "/regions"},
	{"Subregions", "/subregions"},
	{"Countries", "/countries"},
	{"States", "/states"},
	{"Cities", "/cities"},
}

// html writes markup and keeps the first error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *html) attrURL(u string) { h.raw(templ.EscapeString(string(templ.URL(u)))) }

func (h *html) int(n int64) { h.raw(strconv.FormatInt(n, 10)) }

func (h *html) child(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

const style = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2933}
nav{background:#243b53;padding:.75rem 1.5rem}nav a{color:#d9e2ec;margin-right:1rem;text-decoration:none}
nav a.active{color:#fff;font-weight:600}main{padding:1.5rem}
table{border-collapse:collapse;width:100%}th,td{text-align:left;padding:.4rem .6rem;border-bottom:1px solid #d9e2ec}
th{background:#f0f4f8}.cards{display:flex;gap:1rem;flex-wrap:wrap}
.card{border:1px solid #d9e2ec;border-radius:6px;padding:1rem 1.5rem;min-width:10rem;text-decoration:none;color:inherit}
.card strong{display:block;font-size:1.8rem}.pager{margin-top:1rem}.pager a{margin-right:1rem}
.alert{border:1px solid #e12d39;background:#ffe3e3;padding:1rem;border-radius:6px}.muted{color:#829ab1}`

// Page wraps body in the document shell. active is the href of the current
// navigation entry.
func Page(title, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(` | Geo data</title><meta name="viewport" content="width=device-width, initial-scale=1"><style>`)
		h.raw(style)
		h.raw(`</style></head><body><nav>`)
		for _, item := range Nav {
			h.raw(`<a href="`)
			h.attrURL(item.Href)
			h.raw(`"`)
			if item.Href == active {
				h.raw(` class="active"`)
			}
			h.raw(`>`)
			h.text(item.Label)
			h.raw(`</a>`)
		}
		h.raw(`</nav><main><h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.child(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its code and suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="alert" role="alert"><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="muted">Error code: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
}

// ErrorPage is ErrorAlert inside the page shell.
func ErrorPage(message, action, code string) templ.Component {
	return Page("Error", "", ErrorAlert(message, action, code))
}
