package repository

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/record.json
var recordSchemaJSON []byte

var recordSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(recordSchemaJSON))
})

// InvalidFields returns the top-level record fields that fail the record schema.
// Root-level failures such as a missing required field are not reported; those
// records are rejected later during normalisation.
func InvalidFields(rec map[string]any) []string {
	schema, err := recordSchema()
	if err != nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(rec))
	if err != nil || result.Valid() {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	for _, e := range result.Errors() {
		field, _, _ := strings.Cut(e.Field(), ".")
		if field == "" || field == "(root)" || seen[field] {
			continue
		}
		seen[field] = true
		fields = append(fields, field)
	}
	return fields
}

func repairRecord(rec map[string]any) map[string]any {
	for _, f := range InvalidFields(rec) {
		delete(rec, f)
	}
	return rec
}
