package export

import (
	"fmt"
	"strings"

	"resumebuilder/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks exported resume documents against the embedded schema.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles the embedded resume schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	raw, err := loadSchema()
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeSchemaViolation, "Embedded resume schema missing", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeSchemaViolation, "Embedded resume schema is invalid", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks a JSON document.
func (v *SchemaValidator) Validate(doc []byte) error {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.NewFileGenerationError(errors.ErrCodeSchemaViolation, "Resume JSON could not be validated", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.NewFileGenerationError(errors.ErrCodeSchemaViolation,
		fmt.Sprintf("Resume JSON failed schema validation: %s", strings.Join(msgs, "; ")), nil)
}
