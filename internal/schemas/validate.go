// Package schemas validates roles input files and saved snapshots against the
// bundled JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/resume-review/schemas"
)

// FieldError is one schema violation. Field is a dotted path such as
// "roles.0.title", or "(root)" for the document itself.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	noun := "problems"
	if len(parts) == 1 {
		noun = "problem"
	}
	return fmt.Sprintf("%s: %d %s: %s", e.Schema, len(parts), noun, strings.Join(parts, "; "))
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Schema is a compiled JSON Schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a draft-07 schema document. name labels errors.
func Compile(name string, schema []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// Validate checks a JSON document. Malformed JSON is an error of its own;
// schema violations come back as *ValidationError.
func (s *Schema) Validate(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%s: document is not valid JSON: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Rule: desc.Type(), Message: desc.Description()})
	}
	sort.SliceStable(verr.Errors, func(i, j int) bool { return verr.Errors[i].Field < verr.Errors[j].Field })
	return verr
}

// ValidateFile reads path and validates it.
func (s *Schema) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Validate(data)
}

var compiled sync.Map // schema file name -> *Schema

// Embedded returns a bundled schema, compiling it on first use.
func Embedded(name string) (*Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*Schema), nil
	}
	raw, err := schemafiles.FS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %s: %w", name, err)
	}
	s, err := Compile(name, raw)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(name, s)
	return actual.(*Schema), nil
}

func validateEmbedded(name string, data []byte) error {
	s, err := Embedded(name)
	if err != nil {
		return err
	}
	return s.Validate(data)
}

// ValidateRoles validates a roles input document.
func ValidateRoles(data []byte) error {
	return validateEmbedded(schemafiles.Roles, data)
}

// ValidateSnapshot validates a saved snapshot document.
func ValidateSnapshot(data []byte) error {
	return validateEmbedded(schemafiles.Snapshot, data)
}
