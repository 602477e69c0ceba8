package export

import (
	"fmt"

	"schemalens/domain/schema"
	"schemalens/internal"
	"schemalens/internal/errors"
)

// FormatJSONSchema is the supported interchange format.
const FormatJSONSchema = "json-schema"

// SupportedFormats lists every export format the converter understands.
var SupportedFormats = []string{FormatJSONSchema}

// Options control the schema export.
type Options struct {
	// RequiredByDefault marks every field required regardless of the
	// inferred null percentage.
	RequiredByDefault bool
	// Format selects the interchange format; defaults to json-schema.
	Format string
}

// Exporter converts an inferred schema into an interchange schema document.
type Exporter struct {
	log *internal.Logger
}

// NewExporter creates a schema exporter
func NewExporter(log *internal.Logger) *Exporter {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Exporter{log: log}
}

// Convert maps a DatasetSchema onto a JSON-Schema-shaped document. Every
// property carries the inferred type and confidence as non-normative x-
// annotations; a per-field conversion failure degrades that property to a
// plain string constraint annotated with the error.
func (e *Exporter) Convert(sch *schema.DatasetSchema, opts Options) (map[string]interface{}, error) {
	if sch == nil {
		return nil, errors.InvalidInput("schema is required")
	}
	format := opts.Format
	if format == "" {
		format = FormatJSONSchema
	}
	if format != FormatJSONSchema {
		return nil, errors.UnsupportedFormat(format, SupportedFormats)
	}

	properties := make(map[string]interface{}, len(sch.Fields))
	required := make([]string, 0)

	for _, field := range sch.Fields {
		prop := e.convertField(field)
		properties[field.Name] = prop
		if opts.RequiredByDefault || field.Required {
			required = append(required, field.Name)
		}
	}

	doc := map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc, nil
}

// convertField builds one property constraint. Panics while converting a
// single field are contained; the property degrades rather than aborting
// the export.
func (e *Exporter) convertField(field schema.FieldSchema) (prop map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("export of field %q degraded: %v", field.Name, r)
			prop = map[string]interface{}{
				"type":    "string",
				"x-error": fmt.Sprintf("%v", r),
			}
		}
	}()

	prop = constraintFor(field)

	prop["x-inferred-type"] = string(field.Type)
	prop["x-confidence"] = field.Confidence
	if len(field.AlternativeTypes) > 0 {
		alts := make([]map[string]interface{}, len(field.AlternativeTypes))
		for i, alt := range field.AlternativeTypes {
			alts[i] = map[string]interface{}{
				"type":       string(alt.Type),
				"confidence": alt.Confidence,
			}
		}
		prop["x-alternative-types"] = alts
	}
	if field.IsPrimaryKeyCandidate {
		prop["x-primary-key-candidate"] = true
	}
	return prop
}

func constraintFor(field schema.FieldSchema) map[string]interface{} {
	switch {
	case field.Type == schema.TypeInteger:
		return numericConstraint("integer", field)
	case field.Type.IsNumericFamily():
		return numericConstraint("number", field)
	case field.Type == schema.TypeBoolean:
		return map[string]interface{}{"type": "boolean"}
	case field.Type == schema.TypeDate:
		return map[string]interface{}{"type": "string", "format": "date"}
	case field.Type == schema.TypeDateTime:
		return map[string]interface{}{"type": "string", "format": "date-time"}
	case field.Type == schema.TypeTime:
		return map[string]interface{}{"type": "string", "format": "time"}
	case field.Type == schema.TypeArray:
		return map[string]interface{}{"type": "array"}
	case field.Type == schema.TypeObject:
		return map[string]interface{}{"type": "object"}
	case field.Type == schema.TypeNull:
		return map[string]interface{}{"type": "null"}
	default:
		return stringConstraint(field)
	}
}

func numericConstraint(jsonType string, field schema.FieldSchema) map[string]interface{} {
	c := map[string]interface{}{"type": jsonType}
	if field.Statistics != nil && field.Statistics.Numeric != nil {
		c["minimum"] = field.Statistics.Numeric.Min
		c["maximum"] = field.Statistics.Numeric.Max
	}
	return c
}

// formatHints maps specialized string types to JSON Schema format names
var formatHints = map[schema.FieldType]string{
	schema.TypeEmail:     "email",
	schema.TypeURL:       "uri",
	schema.TypeIPAddress: "ipv4",
}

func stringConstraint(field schema.FieldSchema) map[string]interface{} {
	c := map[string]interface{}{"type": "string"}
	if hint, ok := formatHints[field.Type]; ok {
		c["format"] = hint
	}
	if field.Statistics != nil && field.Statistics.String != nil {
		c["minLength"] = field.Statistics.String.MinLength
		c["maxLength"] = field.Statistics.String.MaxLength
	}
	return c
}
