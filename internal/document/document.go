// Package document is the server-side presentation surface: a parsed HTML
// tree whose named regions are rewritten in place and rendered back to the
// browser on every page load.
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when no element carries the requested id.
var ErrNotFound = errors.New("element not found")

// Document wraps the root of an HTML tree. It is not safe for concurrent use.
type Document struct {
	root *html.Node
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, mostly for tests and logging.
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	return &Document{root: cloneNode(d.root)}
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	return htmlquery.FindOne(d.root, "//*[@id='"+id+"']")
}

// ByClass returns all elements carrying class, in document order.
func (d *Document) ByClass(class string) []*html.Node {
	return htmlquery.Find(d.root, classXPath(class))
}

// Query returns all nodes matching an XPath expression.
func (d *Document) Query(expr string) ([]*html.Node, error) {
	return htmlquery.QueryAll(d.root, expr)
}

// CountByClass returns the number of elements carrying class.
func (d *Document) CountByClass(class string) int {
	return len(d.ByClass(class))
}

// Text returns the text content of the element with the given id.
func (d *Document) Text(id string) string {
	n := d.ByID(id)
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

func (d *Document) mustFind(id string) (*html.Node, error) {
	n := d.ByID(id)
	if n == nil {
		return nil, fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	return n, nil
}

// SetVisible toggles the inline display style of an element.
func (d *Document) SetVisible(id string, visible bool) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	if visible {
		setAttr(n, "style", "display: block")
	} else {
		setAttr(n, "style", "display: none")
	}
	return nil
}

// Visible reports whether the element is not hidden by its inline style.
func (d *Document) Visible(id string) bool {
	n := d.ByID(id)
	if n == nil {
		return false
	}
	style := strings.ReplaceAll(getAttr(n, "style"), " ", "")
	return !strings.Contains(style, "display:none")
}

// SetValue sets the value attribute of an input.
func (d *Document) SetValue(id, value string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	setAttr(n, "value", value)
	return nil
}

// Value returns the value attribute of an input.
func (d *Document) Value(id string) string {
	n := d.ByID(id)
	if n == nil {
		return ""
	}
	return getAttr(n, "value")
}

// SetSelected marks the option with the given value as selected in a
// select element. Unknown values leave nothing selected.
func (d *Document) SetSelected(id, value string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	for _, opt := range htmlquery.Find(n, ".//option") {
		if getAttr(opt, "value") == value {
			setAttr(opt, "selected", "")
		} else {
			removeAttr(opt, "selected")
		}
	}
	return nil
}

// Selected returns the value of the selected option, or of the first option
// when none is marked.
func (d *Document) Selected(id string) string {
	n := d.ByID(id)
	if n == nil {
		return ""
	}
	options := htmlquery.Find(n, ".//option")
	for _, opt := range options {
		if hasAttr(opt, "selected") {
			return getAttr(opt, "value")
		}
	}
	if len(options) > 0 {
		return getAttr(options[0], "value")
	}
	return ""
}

// Focus moves the autofocus attribute to the element with the given id.
func (d *Document) Focus(id string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	for _, other := range htmlquery.Find(d.root, "//*[@autofocus]") {
		removeAttr(other, "autofocus")
	}
	setAttr(n, "autofocus", "")
	return nil
}

// FocusedID returns the id of the element holding autofocus.
func (d *Document) FocusedID() string {
	n := htmlquery.FindOne(d.root, "//*[@autofocus]")
	if n == nil {
		return ""
	}
	return getAttr(n, "id")
}

// ReplaceChildren empties the element and fills it with the parsed fragment.
func (d *Document) ReplaceChildren(id, fragment string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	return appendFragment(n, fragment)
}

// AppendChild appends the parsed fragment to the element's children.
func (d *Document) AppendChild(id, fragment string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	return appendFragment(n, fragment)
}

// InsertAfter inserts the parsed fragment as the element's next siblings.
func (d *Document) InsertAfter(id, fragment string) error {
	n, err := d.mustFind(id)
	if err != nil {
		return err
	}
	parent := n.Parent
	if parent == nil {
		return fmt.Errorf("insert after #%s: element has no parent", id)
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	next := n.NextSibling
	for _, c := range nodes {
		parent.InsertBefore(c, next)
	}
	return nil
}

// RemoveByClass detaches every element carrying class and returns how many
// were removed.
func (d *Document) RemoveByClass(class string) int {
	nodes := d.ByClass(class)
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return len(nodes)
}

func appendFragment(n *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

func classXPath(class string) string {
	return "//*[contains(concat(' ', normalize-space(@class), ' '), ' " + class + " ')]"
}
