package render

import (
	"bytes"
	"fmt"
	"html/template"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/document"
	"go-chi-calculator/web"
)

// OperatorSelect is the id of the operator picker in the page template.
const OperatorSelect = "operator"

// LoadPage parses the embedded page template into a fresh document and
// fills the operator picker with every supported operator, the default one
// preselected.
func LoadPage() (*document.Document, error) {
	f, err := web.Templates.Open(web.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("open page template: %w", err)
	}
	defer f.Close()

	doc, err := document.Parse(f)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(web.Templates, web.FragmentTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse fragment templates: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "operator-options", calculator.Operators()); err != nil {
		return nil, fmt.Errorf("execute operator-options template: %w", err)
	}
	if err := doc.ReplaceChildren(OperatorSelect, buf.String()); err != nil {
		return nil, fmt.Errorf("fill operator picker: %w", err)
	}
	if err := doc.SetSelected(OperatorSelect, calculator.DefaultToken); err != nil {
		return nil, err
	}
	return doc, nil
}
