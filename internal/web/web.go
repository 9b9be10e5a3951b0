package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Table is one popularity breakdown rendered on a page.
type Table struct {
	Dimension v1.Dimension
	Rows      []v1.PopularityRow
}

// IndexPage is the data behind the landing page.
type IndexPage struct {
	WindowDays  int
	Total       int64
	Tables      []Table
	GeneratedAt time.Time
}

// DetailPage is the data behind /view/:field/:value.
type DetailPage struct {
	Field       v1.Dimension
	Value       string
	WindowDays  int
	Total       int64
	Tables      []Table
	GeneratedAt time.Time
}

// Renderer executes the embedded page templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	titler := cases.Title(language.English)

	funcs := template.FuncMap{
		"count": func(n int64) string {
			return printer.Sprintf("%d", n)
		},
		"title": func(v interface{}) string {
			return titler.String(fmt.Sprint(v))
		},
		"pathEscape": url.PathEscape,
	}

	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Index renders the landing page.
func (r *Renderer) Index(p IndexPage) ([]byte, error) {
	return r.execute("index.html", p)
}

// Detail renders one value's detail page.
func (r *Renderer) Detail(p DetailPage) ([]byte, error) {
	return r.execute("detail.html", p)
}

// Pending renders the placeholder shown before a detail page is generated.
func (r *Renderer) Pending(field, value string) ([]byte, error) {
	return r.execute("pending.html", struct {
		Field string
		Value string
	}{field, value})
}

func (r *Renderer) execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
