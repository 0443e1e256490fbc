package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/gatecompass/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Document is a decoded corpus file. A file is either a bare list of records
// or an object carrying a version label, records and per-year series.
type Document struct {
	Version string           `yaml:"version" json:"version"`
	Records []map[string]any `yaml:"records" json:"records"`
	Series  []Series         `yaml:"series" json:"series"`
}

// Series is a compact form for a topic observed across several years.
// Each year expands to one record carrying that year's marks.
type Series struct {
	Subject    string          `yaml:"subject" json:"subject"`
	Topic      string          `yaml:"topic" json:"topic"`
	Difficulty string          `yaml:"difficulty" json:"difficulty"`
	Marks      map[int]float64 `yaml:"marks" json:"marks"`
}

// DecodeYAML decodes a YAML corpus document.
func DecodeYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(root.Content) == 0 {
		return Document{}, nil
	}

	var doc Document
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&doc.Records); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case yaml.MappingNode:
		if err := node.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return Document{}, fmt.Errorf("%w: unexpected top-level yaml node", ErrDecode)
	}
	return doc, nil
}

// DecodeJSON decodes a JSON corpus document. Each record is checked against
// the record schema and fields that fail validation are dropped so that the
// usual defaults apply to them.
func DecodeJSON(data []byte) (Document, error) {
	var doc Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return doc, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var err error
	if trimmed[0] == '[' {
		err = dec.Decode(&doc.Records)
	} else {
		err = dec.Decode(&doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	for i, rec := range doc.Records {
		doc.Records[i] = repairRecord(rec)
	}
	return doc, nil
}

// Raws flattens the document into raw records: series first, ordered by
// year, then the explicit records in file order.
func (d Document) Raws() []model.Raw {
	out := make([]model.Raw, 0, len(d.Records)+len(d.Series)*6)
	for _, s := range d.Series {
		years := make([]int, 0, len(s.Marks))
		for y := range s.Marks {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			out = append(out, model.Raw{
				Subject:    s.Subject,
				Topic:      s.Topic,
				Year:       y,
				Marks:      s.Marks[y],
				Difficulty: s.Difficulty,
			})
		}
	}
	for _, rec := range d.Records {
		out = append(out, rawFromMap(rec))
	}
	return out
}

// normalizeAll applies model defaults and drops records that cannot be placed.
func normalizeAll(raws []model.Raw) (records []model.Record, skipped int) {
	records = make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := model.Normalize(raw)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func rawFromMap(m map[string]any) model.Raw {
	year, _ := number(lookup(m, "year", "year_appeared"))
	marks, ok := number(lookup(m, "marks"))
	if !ok {
		marks = 0
	}
	return model.Raw{
		ID:         text(lookup(m, "id")),
		Subject:    text(lookup(m, "subject", "category")),
		Topic:      text(lookup(m, "topic", "concept")),
		Year:       int(year),
		Marks:      marks,
		Difficulty: text(lookup(m, "difficulty")),
	}
}

func lookup(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// number accepts any numeric decoding plus numeric strings. Fractional
// years are truncated by the caller.
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
