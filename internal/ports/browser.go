package ports

import (
	"context"
	"net/url"
)

// Browser fetches panel pages and submits their HTML forms. A non-success
// HTTP status is reported through Page.StatusCode, not as an error; an error
// means the request itself failed.
type Browser interface {
	Get(ctx context.Context, rawURL string) (*Page, error)
	Submit(ctx context.Context, form Form, actionURL string) (*Page, error)
	PostForm(ctx context.Context, rawURL string, values url.Values) (*Page, error)
}

type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Document   Document
}

func (p *Page) OK() bool {
	return p != nil && p.StatusCode >= 200 && p.StatusCode < 300
}

// Document is a parsed HTML page. Selectors are CSS selectors.
type Document interface {
	Form(selector string) (Form, bool)
	// LinkHref returns the href of the first anchor whose visible text equals text.
	LinkHref(text string) (string, bool)
	Attr(selector, attr string) (string, bool)
	Text(selector string) (string, bool)
}

// Form is a mutable copy of an HTML form. Changes never leak back into the
// Document it came from.
type Form interface {
	Action() string
	Method() string
	// Set assigns the value of the field matched by selector.
	Set(selector, value string) bool
	// SetFile attaches content to the file input matched by selector.
	SetFile(selector, filename, content string) bool
	AddHidden(name, value string)
	Values() url.Values
}
