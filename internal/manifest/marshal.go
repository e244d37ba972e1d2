package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://spm-release.local/schemas/"

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// compiled holds one validator per schema, built on first use.
//
//nolint:gochecknoglobals // Compiled once from embedded files.
var compiled = sync.OnceValues(compileSchemas)

func compileSchemas() (map[Schema]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	files, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		data, err := schemaFS.ReadFile("schemas/" + f.Name())
		if err != nil {
			return nil, err
		}

		if err = c.AddResource(schemaBaseURL+f.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("load %s: %w", f.Name(), err)
		}
	}

	result := make(map[Schema]*jsonschema.Schema, 3) //nolint:mnd // One per schema.

	for _, s := range []Schema{SchemaFlat, SchemaSplit, SchemaExtensions} {
		schema, err := c.Compile(schemaBaseURL + string(s) + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", s, err)
		}

		result[s] = schema
	}

	return result, nil
}

// Marshal encodes doc as JSON after validating it against its schema.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	if err = Validate(doc.Schema(), data); err != nil {
		return nil, err
	}

	return data, nil
}

// Validate checks encoded JSON against the schema.
func Validate(schema Schema, data []byte) error {
	schemas, err := compiled()
	if err != nil {
		return fmt.Errorf("load manifest schemas: %w", err)
	}

	validator, ok := schemas[schema]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownSchema, schema)
	}

	var value any
	if err = json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}

	if err = validator.Validate(value); err != nil {
		return fmt.Errorf("manifest does not match %s schema: %w", schema, err)
	}

	return nil
}
