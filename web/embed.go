// Package web provides the embedded page, fragment templates and assets of
// the calculator UI.
package web

import "embed"

// Static contains the embedded static files (CSS, JS).
//
//go:embed static/*
var Static embed.FS

// Templates contains the embedded HTML templates.
//
//go:embed templates/*
var Templates embed.FS

// PageTemplate is the path of the full page inside Templates.
const PageTemplate = "templates/index.html"

// FragmentTemplates is the path of the region fragments inside Templates.
const FragmentTemplates = "templates/fragments.html"
