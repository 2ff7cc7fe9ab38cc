package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bnema/stwcert/internal/ports"
)

type document struct {
	doc *goquery.Document
}

var _ ports.Document = (*document)(nil)

func (d *document) Form(selector string) (ports.Form, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 || !sel.Is("form") {
		return nil, false
	}

	return newForm(sel), true
}

func (d *document) LinkHref(text string) (string, bool) {
	var href string
	var found bool

	d.doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != text {
			return true
		}
		href, found = a.Attr("href")
		return !found
	})

	return href, found
}

func (d *document) Attr(selector, attr string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	return sel.Attr(attr)
}

func (d *document) Text(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	return sel.Text(), true
}
