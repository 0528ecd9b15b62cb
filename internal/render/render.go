// Package render draws calculation history into the page document.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/document"
	"go-chi-calculator/web"
)

// Region ids and marker classes in the page template.
const (
	DetailedRegion = "detailedResults"
	SummaryRegion  = "summaryResults"
	NoticeRegion   = "notices"

	BackHomeClass = "back-to-home-section"
	NoticeClass   = "notice"
)

// NoticeKind selects the toast colour.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown once on the next page load.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type rowView struct {
	X       string
	Symbol  string
	Y       string
	Result  string
	IsError bool
}

type summaryView struct {
	Min     string
	Max     string
	Average string
	Total   string
	Count   int
}

// Renderer writes history views into a document.
type Renderer struct {
	tmpl    *template.Template
	homeURL string
}

// New parses the fragment templates. homeURL is the target of the
// navigation link appended after every render.
func New(homeURL string) (*Renderer, error) {
	tmpl, err := template.ParseFS(web.Templates, web.FragmentTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse fragment templates: %w", err)
	}
	if homeURL == "" {
		homeURL = "/"
	}
	return &Renderer{tmpl: tmpl, homeURL: homeURL}, nil
}

// Reset empties both result regions and removes the navigation link.
func (r *Renderer) Reset(doc *document.Document) error {
	if err := doc.ReplaceChildren(DetailedRegion, ""); err != nil {
		return err
	}
	if err := doc.ReplaceChildren(SummaryRegion, ""); err != nil {
		return err
	}
	doc.RemoveByClass(BackHomeClass)
	return nil
}

// Render redraws the detailed log and the summary from h. The detail table
// is followed by one live row per record, so the log reads the same as it
// did while the session was open. Calling it again with the same history
// yields the same document.
func (r *Renderer) Render(doc *document.Document, h *calculator.History) error {
	if err := r.Reset(doc); err != nil {
		return err
	}

	records := h.Records()
	if len(records) > 0 {
		rows := make([]rowView, 0, len(records))
		for _, rec := range records {
			rows = append(rows, newRowView(rec))
		}
		if err := r.fill(doc.ReplaceChildren, DetailedRegion, "detail", rows); err != nil {
			return err
		}
		for _, rec := range records {
			if err := r.AppendRow(doc, rec); err != nil {
				return err
			}
		}
	}

	if s, ok := h.Summary(); ok {
		view := summaryView{
			Min:     calculator.FormatNumber(s.Min),
			Max:     calculator.FormatNumber(s.Max),
			Average: s.AverageText(),
			Total:   calculator.FormatNumber(s.Total),
			Count:   s.Count,
		}
		if err := r.fill(doc.ReplaceChildren, SummaryRegion, "summary", view); err != nil {
			return err
		}
	} else {
		if err := r.fill(doc.ReplaceChildren, SummaryRegion, "no-results", nil); err != nil {
			return err
		}
	}

	return r.fill(doc.InsertAfter, SummaryRegion, "back-home", r.homeURL)
}

// AppendRow adds a single live log line for rec to the detailed region.
func (r *Renderer) AppendRow(doc *document.Document, rec calculator.Record) error {
	return r.fill(doc.AppendChild, DetailedRegion, "calculation-row", newRowView(rec))
}

// Notify queues a toast in the notice region.
func (r *Renderer) Notify(doc *document.Document, n Notice) error {
	return r.fill(doc.AppendChild, NoticeRegion, "notice", n)
}

// ClearNotices removes all toasts and returns how many were shown.
func (r *Renderer) ClearNotices(doc *document.Document) int {
	return doc.RemoveByClass(NoticeClass)
}

func (r *Renderer) fill(op func(id, fragment string) error, region, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute %s template: %w", name, err)
	}
	if err := op(region, buf.String()); err != nil {
		return fmt.Errorf("render %s into #%s: %w", name, region, err)
	}
	return nil
}

func newRowView(rec calculator.Record) rowView {
	return rowView{
		X:       rec.X,
		Symbol:  rec.Symbol(),
		Y:       rec.Y,
		Result:  rec.Outcome.String(),
		IsError: rec.Outcome.IsError(),
	}
}
