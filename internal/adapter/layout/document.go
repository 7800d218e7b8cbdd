// Package layout normalizes the JSON emitted by the upstream layout-analysis
// service into one canonical document shape and flattens it into elements in
// reading order. The upstream parser is inconsistent about field naming
// (camelCase vs snake_case) and about int64 encoding (number vs string), so
// all decoding goes through lookup-with-fallback helpers here; the rest of
// the package works against the canonical types only.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is the canonical parsed-document shape: the full extracted text
// plus per-page structure referencing it by offset.
type Document struct {
	Text  string
	Pages []Page
}

// Page holds the structured content of one page. Layout-aware parses fill
// Paragraphs/Blocks/Tables; OCR-only parses fill Lines.
type Page struct {
	PageNumber int
	Paragraphs []Block
	Blocks     []Block
	Tables     []Table
	Lines      []Block
}

// Block is any text-bearing element addressed by a span into Document.Text.
type Block struct {
	Anchor TextAnchor
}

// Table is a grid of cells with optional dedicated header rows.
type Table struct {
	HeaderRows []TableRow
	BodyRows   []TableRow
	Anchor     TextAnchor
}

// TableRow is one row of table cells.
type TableRow struct {
	Cells []Block
}

// TextAnchor references one or more sub-ranges of the document text.
type TextAnchor struct {
	Segments []Segment
}

// Segment is a half-open [Start, End) range into the document text.
type Segment struct {
	Start int64
	End   int64
}

// ParseDocument decodes layout-analysis JSON into a Document. Batch output
// wrappers ({"document": ...} or {"results": [{"document": ...}]}) are
// unwrapped transparently.
func ParseDocument(data []byte) (*Document, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("malformed layout JSON: %w", err)
	}
	m = unwrap(m)

	doc := &Document{}
	if raw, ok := pick(m, "text", "Text"); ok {
		if err := json.Unmarshal(raw, &doc.Text); err != nil {
			return nil, fmt.Errorf("document text: %w", err)
		}
	}
	if raw, ok := pick(m, "pages", "Pages"); ok {
		if err := json.Unmarshal(raw, &doc.Pages); err != nil {
			return nil, fmt.Errorf("document pages: %w", err)
		}
	}
	return doc, nil
}

// unwrap peels batch-output wrappers until the document object is reached.
func unwrap(m map[string]json.RawMessage) map[string]json.RawMessage {
	if raw, ok := pick(m, "document"); ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(raw, &inner) == nil {
			return inner
		}
	}
	if raw, ok := pick(m, "results"); ok {
		var results []map[string]json.RawMessage
		if json.Unmarshal(raw, &results) == nil && len(results) > 0 {
			if docRaw, ok := pick(results[0], "document"); ok {
				var inner map[string]json.RawMessage
				if json.Unmarshal(docRaw, &inner) == nil {
					return inner
				}
			}
		}
	}
	return m
}

// pick returns the first raw value present under any of the given keys.
func pick(m map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && !bytes.Equal(v, []byte("null")) {
			return v, true
		}
	}
	return nil, false
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := pick(m, "pageNumber", "page_number"); ok {
		var n flexInt
		if err := json.Unmarshal(raw, &n); err == nil {
			p.PageNumber = int(n)
		}
	}
	if raw, ok := pick(m, "paragraphs", "Paragraphs"); ok {
		if err := json.Unmarshal(raw, &p.Paragraphs); err != nil {
			return err
		}
	}
	if raw, ok := pick(m, "blocks", "Blocks"); ok {
		if err := json.Unmarshal(raw, &p.Blocks); err != nil {
			return err
		}
	}
	if raw, ok := pick(m, "tables", "Tables"); ok {
		if err := json.Unmarshal(raw, &p.Tables); err != nil {
			return err
		}
	}
	if raw, ok := pick(m, "lines", "Lines"); ok {
		if err := json.Unmarshal(raw, &p.Lines); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	raw, ok := anchorOf(m)
	if !ok {
		return nil // no anchor, element resolves to empty text
	}
	return json.Unmarshal(raw, &b.Anchor)
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := pick(m, "headerRows", "header_rows"); ok {
		if err := json.Unmarshal(raw, &t.HeaderRows); err != nil {
			return err
		}
	}
	if raw, ok := pick(m, "bodyRows", "body_rows"); ok {
		if err := json.Unmarshal(raw, &t.BodyRows); err != nil {
			return err
		}
	}
	if raw, ok := anchorOf(m); ok {
		if err := json.Unmarshal(raw, &t.Anchor); err != nil {
			return err
		}
	}
	return nil
}

func (r *TableRow) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := pick(m, "cells", "Cells"); ok {
		return json.Unmarshal(raw, &r.Cells)
	}
	return nil
}

func (a *TextAnchor) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := pick(m, "textSegments", "text_segments"); ok {
		return json.Unmarshal(raw, &a.Segments)
	}
	return nil
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := pick(m, "startIndex", "start_index"); ok {
		var n flexInt
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		s.Start = int64(n)
	}
	if raw, ok := pick(m, "endIndex", "end_index"); ok {
		var n flexInt
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		s.End = int64(n)
	}
	return nil
}

// anchorOf finds an element's text anchor, either at the top level or nested
// inside its layout object.
func anchorOf(m map[string]json.RawMessage) (json.RawMessage, bool) {
	if raw, ok := pick(m, "textAnchor", "text_anchor"); ok {
		return raw, true
	}
	if layoutRaw, ok := pick(m, "layout", "Layout"); ok {
		var lm map[string]json.RawMessage
		if json.Unmarshal(layoutRaw, &lm) == nil {
			return pick(lm, "textAnchor", "text_anchor")
		}
	}
	return nil, false
}

// flexInt accepts int64 values encoded either as JSON numbers or as quoted
// strings, which is how the upstream parser serializes proto int64 fields.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", data, err)
	}
	*f = flexInt(v)
	return nil
}
