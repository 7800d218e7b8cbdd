// Package corpus persists chunks and serves the id -> text lookup that
// retrieval resolves neighbor ids against. The interchange format is
// newline-delimited JSON, one chunk per line; a bbolt database provides the
// O(1) lookup used at query time.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"docrag/internal/domain"
)

// Record is one corpus line. Fields this version does not know about are
// carried through a read-modify-write cycle untouched, at both the record
// and metadata level, so older and newer writers can share a corpus file.
type Record struct {
	Chunk domain.Chunk

	extra     map[string]json.RawMessage
	metaExtra map[string]json.RawMessage
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := m["id"]; ok {
		if err := json.Unmarshal(raw, &r.Chunk.ID); err != nil {
			return err
		}
		delete(m, "id")
	}
	if raw, ok := m["text"]; ok {
		if err := json.Unmarshal(raw, &r.Chunk.Text); err != nil {
			return err
		}
		delete(m, "text")
	}
	if raw, ok := m["metadata"]; ok {
		var mm map[string]json.RawMessage
		if err := json.Unmarshal(raw, &mm); err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &r.Chunk.Metadata); err != nil {
			return err
		}
		for _, known := range []string{"source_name", "page_number", "section_title", "is_table"} {
			delete(mm, known)
		}
		if len(mm) > 0 {
			r.metaExtra = mm
		}
		delete(m, "metadata")
	}
	if len(m) > 0 {
		r.extra = m
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	meta := map[string]any{
		"source_name":   r.Chunk.Metadata.SourceName,
		"page_number":   r.Chunk.Metadata.PageNumber,
		"section_title": r.Chunk.Metadata.SectionTitle,
		"is_table":      r.Chunk.Metadata.IsTable,
	}
	for k, v := range r.metaExtra {
		meta[k] = v
	}
	obj := map[string]any{
		"id":       r.Chunk.ID,
		"text":     r.Chunk.Text,
		"metadata": meta,
	}
	for k, v := range r.extra {
		obj[k] = v
	}
	return json.Marshal(obj)
}

// WriteJSONL writes records one per line.
func WriteJSONL(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for i := range records {
		data, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("marshal chunk %s: %w", records[i].Chunk.ID, err)
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadJSONL parses records from newline-delimited JSON, skipping blank
// lines. A malformed line fails the read: a corpus file is written by this
// tool, so damage means the file should be rebuilt, not silently trimmed.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// NewRecords wraps chunks as records with no extra fields.
func NewRecords(chunks []domain.Chunk) []Record {
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = Record{Chunk: c}
	}
	return records
}
