// Package templates renders the web UI's pages. Components are plain templ components, so handlers render them
// the same way whether they are whole pages or fragments pushed over server-sent events.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

type Place string

const (
	PlaceDashboard  Place = "dashboard"
	PlaceCampaigns  Place = "campaigns"
	PlaceCharacters Place = "characters"
	PlacePlaces     Place = "places"
	PlaceItems      Place = "items"
	PlaceQuests     Place = "quests"
	PlaceImport     Place = "import"
	Auth            Place = "auth"
)

var nav = []struct {
	place Place
	label string
	href  string
}{
	{PlaceDashboard, "Dashboard", "/"},
	{PlaceCampaigns, "Campaigns", "/campaigns"},
	{PlaceCharacters, "Characters", "/characters"},
	{PlacePlaces, "Places", "/places"},
	{PlaceItems, "Items", "/items"},
	{PlaceQuests, "Quests", "/quests"},
	{PlaceImport, "D&D Beyond", "/import"},
}

type PageData struct {
	Authenticated bool
	Username      string
	PageTitle     string
	Place         Place
	// Flash is a one time message left by the previous request, e.g. after a redirect.
	Flash string
	Err   error
	Child templ.Component
}

// page accumulates the first write error so components can be written as a flat sequence of writes.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) rawf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) render(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

func component(f func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{ctx: ctx, w: w}
		f(p)
		return p.err
	})
}

func Layout(d PageData) templ.Component {
	return component(func(p *page) {
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text(d.PageTitle)
		p.raw(` | Tabletop</title></head><body>`)

		p.raw(`<nav>`)
		if d.Authenticated {
			for _, item := range nav {
				class := ""
				if item.place == d.Place {
					class = ` class="current"`
				}
				p.rawf(`<a href="%s"%s>`, item.href, class)
				p.text(item.label)
				p.raw(`</a> `)
			}
			p.raw(`<form method="post" action="/logout"><span>`)
			p.text(d.Username)
			p.raw(`</span> <button type="submit">Log out</button></form>`)
		} else {
			p.raw(`<a href="/login">Log in</a> <a href="/signup">Sign up</a>`)
		}
		p.raw(`</nav><main>`)

		if d.Flash != "" {
			p.raw(`<p class="flash">`)
			p.text(d.Flash)
			p.raw(`</p>`)
		}
		if d.Err != nil {
			p.raw(`<p class="error">`)
			p.text(d.Err.Error())
			p.raw(`</p>`)
		}
		p.render(d.Child)
		p.raw(`</main></body></html>`)
	})
}

// Errors maps form field names to messages.
type Errors map[string]string

func (p *page) fieldError(errs Errors, name string) {
	if msg := errs[name]; msg != "" {
		p.raw(`<span class="field-error">`)
		p.text(msg)
		p.raw(`</span>`)
	}
}

func (p *page) input(errs Errors, label, name, kind, value string) {
	p.raw(`<label>`)
	p.text(label)
	p.rawf(` <input type="%s" name="%s" value="`, kind, name)
	p.text(value)
	p.raw(`"></label>`)
	p.fieldError(errs, name)
}

func (p *page) selectInput(errs Errors, label, name string, options []string, selected string) {
	p.raw(`<label>`)
	p.text(label)
	p.rawf(` <select name="%s">`, name)
	for _, o := range options {
		if o == selected {
			p.raw(`<option selected>`)
		} else {
			p.raw(`<option>`)
		}
		p.text(o)
		p.raw(`</option>`)
	}
	p.raw(`</select></label>`)
	p.fieldError(errs, name)
}

// live marks an element to be replaced by the fragments streamed for a cache key.
func (p *page) live(key string) {
	p.raw(`<div data-live="/events?key=`)
	p.text(key)
	p.raw(`">`)
}

func (p *page) list(loading bool, err error, empty bool, emptyMessage string) bool {
	if err != nil {
		p.raw(`<p class="error">`)
		p.text(err.Error())
		p.raw(`</p>`)
	}
	if loading {
		p.raw(`<p class="loading">Loading…</p>`)
	}
	if empty && !loading {
		p.raw(`<p>`)
		p.text(emptyMessage)
		p.raw(`</p>`)
		return false
	}
	return !empty
}
