// Package xmlrecord turns namespace-qualified XML responses into flat
// domain records using XPath lookups.
package xmlrecord

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

var ErrEmptyDocument = errors.New("empty xml document")

// Field describes one value to pull out of an element. Path is an XPath
// expression relative to the element, or "@name" for an attribute.
type Field struct {
	Name     string
	Path     string
	Fallback domain.Optional[string]
}

// Required declares a field whose absence fails the extraction.
func Required(name, path string) Field {
	return Field{Name: name, Path: path}
}

// Defaulted declares a field that takes fallback when absent.
func Defaulted(name, path, fallback string) Field {
	return Field{Name: name, Path: path, Fallback: domain.Some(fallback)}
}

type Document struct {
	root       *xmlquery.Node
	namespaces map[string]string
}

// Parse reads data with the given prefix to namespace URI table.
func Parse(data []byte, namespaces map[string]string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	return &Document{root: root, namespaces: namespaces}, nil
}

// Elements returns the nodes matching path in document order.
func (d *Document) Elements(path string) ([]Element, error) {
	expr, err := d.compile(path)
	if err != nil {
		return nil, err
	}

	nodes := xmlquery.QuerySelectorAll(d.root, expr)
	out := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, Element{node: node, doc: d, path: path})
	}

	return out, nil
}

// Records extracts one record per element matched by path.
func (d *Document) Records(path string, fields ...Field) ([]domain.Record, error) {
	elements, err := d.Elements(path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(elements))
	for _, element := range elements {
		record, err := element.Record(fields...)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (d *Document) compile(path string) (*xpath.Expr, error) {
	expr, err := xpath.CompileWithNS(path, d.namespaces)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", path, err)
	}
	return expr, nil
}

type Element struct {
	node *xmlquery.Node
	doc  *Document
	path string
}

// LocalName is the element name without its namespace prefix.
func (e Element) LocalName() string {
	return e.node.Data
}

// Lookup returns the text at path, or None when nothing matches.
func (e Element) Lookup(path string) (domain.Optional[string], error) {
	if name, ok := strings.CutPrefix(path, "@"); ok {
		for _, attr := range e.node.Attr {
			if attr.Name.Local == name {
				return domain.Some(attr.Value), nil
			}
		}
		return domain.None[string](), nil
	}

	expr, err := e.doc.compile(path)
	if err != nil {
		return domain.None[string](), err
	}

	node := xmlquery.QuerySelector(e.node, expr)
	if node == nil {
		return domain.None[string](), nil
	}

	return domain.Some(strings.TrimSpace(node.InnerText())), nil
}

// Children returns sub-elements of e matching path.
func (e Element) Children(path string) ([]Element, error) {
	expr, err := e.doc.compile(path)
	if err != nil {
		return nil, err
	}

	nodes := xmlquery.QuerySelectorAll(e.node, expr)
	out := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, Element{node: node, doc: e.doc, path: e.path + "/" + path})
	}

	return out, nil
}

func (e Element) Record(fields ...Field) (domain.Record, error) {
	record := domain.NewRecord()
	for _, field := range fields {
		value, err := e.Lookup(field.Path)
		if err != nil {
			return domain.Record{}, err
		}

		text, found := value.Get()
		if !found {
			fallback, hasFallback := field.Fallback.Get()
			if !hasFallback {
				return domain.Record{}, &domain.FieldMissingError{Field: field.Name, Path: e.path}
			}
			text = fallback
		}

		record.Set(field.Name, text)
	}

	return record, nil
}
