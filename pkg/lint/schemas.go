package lint

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaRegistry holds optional per-entity JSON Schemas for create-record
// payloads. Entities without a registered schema are only checked for being a
// JSON object.
type SchemaRegistry struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]*gojsonschema.Schema)}
}

// Register compiles and stores the schema for an entity logical name,
// replacing any previous one.
func (r *SchemaRegistry) Register(entityLogicalName string, schema []byte) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return fmt.Errorf("failed to compile schema for entity %q: %w", entityLogicalName, err)
	}

	r.schemas[entityLogicalName] = compiled

	return nil
}

// Check validates the decoded record payload against the entity's schema and
// returns one message per violation. No registered schema means no findings.
func (r *SchemaRegistry) Check(entityLogicalName string, data map[string]any) []string {
	schema, ok := r.schemas[entityLogicalName]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return []string{fmt.Sprintf("failed to validate record data: %v", err)}
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		messages = append(messages, fmt.Sprintf("record data: %s", resultError.String()))
	}

	return messages
}
