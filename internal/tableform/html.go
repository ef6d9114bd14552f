package tableform

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	jsWarningClass = DefaultClassPrefix + "_jswarning"
	statusYesClass = DefaultClassPrefix + "status-yes"
	statusNoClass  = DefaultClassPrefix + "status-no"
	cellNamePrefix = DefaultClassPrefix + "key-"
)

// HTMLRow is an existing row found in annotated markup.
type HTMLRow struct {
	ID   string
	Data RowData
}

// HTMLOption configures ReadHTML.
type HTMLOption func(*htmlReader)

// WithTableID selects the table element with the given id attribute.
// Without it the first table in the document is used.
func WithTableID(id string) HTMLOption {
	return func(r *htmlReader) { r.tableID = id }
}

type htmlReader struct {
	tableID string
}

// ReadHTML parses an annotated table. The schema comes from the class tokens
// of the thead cells; rows come from tbody rows named "jstableform-<ID>" whose
// cells are named "jstableform-key-<KEY>". Boolean cells carry their state in
// the status-yes/status-no classes. Rows holding the JavaScript warning cell
// are skipped, as are markup rows with the NewRowID sentinel.
func ReadHTML(r io.Reader, opts ...HTMLOption) (*Schema, []HTMLRow, error) {
	hr := &htmlReader{}
	for _, opt := range opts {
		opt(hr)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}

	table := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && (hr.tableID == "" || attr(n, "id") == hr.tableID)
	})
	if table == nil {
		if hr.tableID != "" {
			return nil, nil, fmt.Errorf("table %q not found", hr.tableID)
		}
		return nil, nil, errors.New("no table found")
	}

	var cells []HeaderCell
	var body []*html.Node
	for _, section := range children(table) {
		switch section.DataAtom {
		case atom.Thead:
			for _, tr := range elementChildren(section, atom.Tr) {
				if isWarningRow(tr) {
					continue
				}
				for _, td := range children(tr) {
					if td.DataAtom == atom.Td || td.DataAtom == atom.Th {
						cells = append(cells, ParseClassList(attr(td, "class")))
					}
				}
			}
		case atom.Tbody:
			body = append(body, elementChildren(section, atom.Tr)...)
		}
	}

	schema, err := ReadSchema(cells, WithClassPrefix(DefaultClassPrefix))
	if err != nil {
		return nil, nil, err
	}

	var rows []HTMLRow
	for _, tr := range body {
		name := attr(tr, "name")
		if isWarningRow(tr) || !strings.HasPrefix(name, DefaultClassPrefix) {
			continue
		}
		id := name[len(DefaultClassPrefix):]
		if id == NewRowID {
			continue
		}
		data := make(RowData)
		for _, td := range elementChildren(tr, atom.Td) {
			key, ok := strings.CutPrefix(attr(td, "name"), cellNamePrefix)
			if !ok {
				continue
			}
			col, ok := schema.Column(key)
			if !ok || col.Kind.IsControl() {
				continue
			}
			data[key] = cellValue(td, col.Kind)
		}
		rows = append(rows, HTMLRow{ID: id, Data: data})
	}
	return schema, rows, nil
}

// LoadHTML reads annotated markup into a table of Viewing rows.
func LoadHTML(r io.Reader, opts ...HTMLOption) (*Table, error) {
	schema, rows, err := ReadHTML(r, opts...)
	if err != nil {
		return nil, err
	}
	t := NewTable(schema)
	for _, row := range rows {
		if _, err := t.Load(row.ID, row.Data); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func cellValue(td *html.Node, kind Kind) Value {
	v := Value{Text: textContent(td)}
	if kind == KindBoolean {
		for _, c := range ParseClassList(attr(td, "class")) {
			switch c {
			case statusYesClass:
				v.Bool = BoolTrue
			case statusNoClass:
				v.Bool = BoolFalse
			}
		}
	}
	return v
}

func isWarningRow(tr *html.Node) bool {
	for _, td := range elementChildren(tr, atom.Td) {
		if attr(td, "class") == jsWarningClass {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func elementChildren(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for _, c := range children(n) {
		if c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
