package browser

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bnema/stwcert/internal/ports"
)

type formPair struct {
	name  string
	value string
}

type fileField struct {
	name     string
	filename string
	content  string
}

// htmlForm works on a detached clone of the form element, so edits stay local.
type htmlForm struct {
	sel   *goquery.Selection
	files map[string]fileField
}

var _ ports.Form = (*htmlForm)(nil)

func newForm(sel *goquery.Selection) *htmlForm {
	return &htmlForm{
		sel:   sel.Clone(),
		files: map[string]fileField{},
	}
}

func (f *htmlForm) Action() string {
	action, _ := f.sel.Attr("action")
	return strings.TrimSpace(action)
}

func (f *htmlForm) Method() string {
	method, ok := f.sel.Attr("method")
	if !ok || strings.TrimSpace(method) == "" {
		return "GET"
	}
	return strings.ToUpper(strings.TrimSpace(method))
}

func (f *htmlForm) Set(selector, value string) bool {
	field := f.sel.Find(selector).First()
	if field.Length() == 0 {
		return false
	}

	switch goquery.NodeName(field) {
	case "textarea":
		field.SetText(value)
	case "select":
		field.Find("option").Each(func(_ int, option *goquery.Selection) {
			if optionValue(option) == value {
				option.SetAttr("selected", "selected")
			} else {
				option.RemoveAttr("selected")
			}
		})
	default:
		if inputType(field) == "file" {
			return f.SetFile(selector, value, "")
		}
		field.SetAttr("value", value)
	}

	return true
}

// SetFile attaches content to a file input. Text inputs and textareas take the
// content as their value instead.
func (f *htmlForm) SetFile(selector, filename, content string) bool {
	field := f.sel.Find(selector).First()
	if field.Length() == 0 {
		return false
	}

	if goquery.NodeName(field) != "input" || inputType(field) != "file" {
		return f.Set(selector, content)
	}

	name, ok := field.Attr("name")
	if !ok || name == "" {
		return false
	}
	f.files[name] = fileField{name: name, filename: filename, content: content}

	return true
}

func (f *htmlForm) AddHidden(name, value string) {
	f.sel.AppendHtml(`<input type="hidden" name="` + html.EscapeString(name) + `" id="` + html.EscapeString(name) + `" value="` + html.EscapeString(value) + `">`)
}

func (f *htmlForm) Values() url.Values {
	values := url.Values{}
	for _, pair := range f.pairs() {
		values.Add(pair.name, pair.value)
	}
	return values
}

func (f *htmlForm) multipart() bool {
	if len(f.files) > 0 {
		return true
	}
	enctype, _ := f.sel.Attr("enctype")
	return strings.EqualFold(strings.TrimSpace(enctype), "multipart/form-data")
}

func (f *htmlForm) encodeMultipart() (io.Reader, string, error) {
	var files []fileField
	f.sel.Find("input").Each(func(_ int, field *goquery.Selection) {
		if inputType(field) != "file" || isDisabled(field) {
			return
		}
		name, _ := field.Attr("name")
		if name == "" {
			return
		}
		if attached, ok := f.files[name]; ok {
			files = append(files, attached)
			return
		}
		files = append(files, fileField{name: name})
	})

	body, contentType, err := multipartBody(f.pairs(), files)
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

// pairs serializes the successful controls of the form in document order.
// File inputs are left to encodeMultipart.
func (f *htmlForm) pairs() []formPair {
	var pairs []formPair

	f.sel.Find("input, textarea, select").Each(func(_ int, field *goquery.Selection) {
		name, _ := field.Attr("name")
		if name == "" || isDisabled(field) {
			return
		}

		switch goquery.NodeName(field) {
		case "textarea":
			pairs = append(pairs, formPair{name: name, value: field.Text()})
		case "select":
			pairs = append(pairs, selectPairs(name, field)...)
		default:
			switch inputType(field) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := field.Attr("checked"); !checked {
					return
				}
				value, ok := field.Attr("value")
				if !ok {
					value = "on"
				}
				pairs = append(pairs, formPair{name: name, value: value})
			default:
				value, _ := field.Attr("value")
				pairs = append(pairs, formPair{name: name, value: value})
			}
		}
	})

	return pairs
}

func selectPairs(name string, field *goquery.Selection) []formPair {
	var pairs []formPair
	options := field.Find("option")
	options.Each(func(_ int, option *goquery.Selection) {
		if _, selected := option.Attr("selected"); selected {
			pairs = append(pairs, formPair{name: name, value: optionValue(option)})
		}
	})

	_, multiple := field.Attr("multiple")
	if len(pairs) == 0 && !multiple && options.Length() > 0 {
		pairs = append(pairs, formPair{name: name, value: optionValue(options.First())})
	}

	return pairs
}

func optionValue(option *goquery.Selection) string {
	if value, ok := option.Attr("value"); ok {
		return value
	}
	return strings.TrimSpace(option.Text())
}

func inputType(field *goquery.Selection) string {
	kind, _ := field.Attr("type")
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return "text"
	}
	return kind
}

func isDisabled(field *goquery.Selection) bool {
	_, disabled := field.Attr("disabled")
	return disabled
}

func multipartBody(pairs []formPair, files []fileField) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, pair := range pairs {
		if err := writer.WriteField(pair.name, pair.value); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", pair.name, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.name, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", file.name, err)
		}
		if _, err := io.WriteString(part, file.content); err != nil {
			return nil, "", fmt.Errorf("write form file %q: %w", file.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}
