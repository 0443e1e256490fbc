package repository

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads the first sheet of a workbook. The first row names the
// columns (subject, topic, year, marks, difficulty, id); unknown columns are
// ignored and blank rows are dropped.
func DecodeXLSX(data []byte) (Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Document{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(rows) == 0 {
		return Document{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var doc Document
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			rec[header[i]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}
