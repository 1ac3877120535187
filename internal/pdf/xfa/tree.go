package xfa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	pdferrors "github.com/a3tai/draw-parser/internal/pdf/errors"
)

// DataNamespace is the XFA data namespace holding the form's field values
const DataNamespace = "http://www.xfa.org/schema/xfa-data/1.0/"

// Element is a branch of the decoded dataset. Children keep document order
// and are one of: string (leaf text), *Element, or []any when a tag repeats
// under the same parent.
type Element struct {
	keys   []string
	values map[string]any
}

// NewElement creates an empty branch
func NewElement() *Element {
	return &Element{values: make(map[string]any)}
}

// Get returns the child stored under tag
func (e *Element) Get(tag string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.values[tag]
	return v, ok
}

// Keys returns child tags in first-seen order
func (e *Element) Keys() []string {
	if e == nil {
		return nil
	}
	return e.keys
}

// Len returns the number of distinct child tags
func (e *Element) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Add stores a child. The first repetition of a tag promotes the existing
// value into a list.
func (e *Element) Add(tag string, value any) {
	existing, ok := e.values[tag]
	if !ok {
		e.keys = append(e.keys, tag)
		e.values[tag] = value
		return
	}
	if list, isList := existing.([]any); isList {
		e.values[tag] = append(list, value)
		return
	}
	e.values[tag] = []any{existing, value}
}

// Child returns the child under tag when it is a branch
func (e *Element) Child(tag string) *Element {
	v, _ := e.Get(tag)
	child, _ := v.(*Element)
	return child
}

// ParseDatasets decodes an XFA datasets packet, or a whole XDP document,
// and returns the converted xfa:data node.
func ParseDatasets(data []byte) (*Element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	root, err := nextStart(decoder)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "no root element in datasets packet", err)
	}
	if isDataNode(root.Name) {
		return decodeData(decoder)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "malformed datasets XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isDataNode(t.Name):
				return decodeData(decoder)
			case isDatasetsNode(t.Name):
				// xdp:xdp > xfa:datasets > xfa:data
				continue
			}
			if err := decoder.Skip(); err != nil {
				return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "malformed datasets XML", err)
			}
		case xml.EndElement:
			if t.Name == root.Name {
				return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "datasets packet has no xfa:data node")
			}
		}
	}

	return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "datasets packet has no xfa:data node")
}

func isDataNode(name xml.Name) bool {
	return name.Space == DataNamespace && name.Local == "data"
}

func isDatasetsNode(name xml.Name) bool {
	return name.Space == DataNamespace && name.Local == "datasets"
}

// decodeData converts the xfa:data element whose start tag was just consumed
func decodeData(decoder *xml.Decoder) (*Element, error) {
	node, err := decodeNode(decoder)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "malformed xfa:data node", err)
	}
	if branch, ok := node.(*Element); ok {
		return branch, nil
	}
	return NewElement(), nil
}

func nextStart(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// decodeNode converts the element whose start tag was just consumed. A leaf
// becomes its trimmed text, a branch becomes an *Element.
func decodeNode(decoder *xml.Decoder) (any, error) {
	var text strings.Builder
	var branch *Element

	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("unexpected end of element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeNode(decoder)
			if err != nil {
				return nil, err
			}
			if branch == nil {
				branch = NewElement()
			}
			branch.Add(t.Name.Local, child)
		case xml.CharData:
			if branch == nil {
				text.Write(t)
			}
		case xml.EndElement:
			if branch != nil {
				return branch, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}
