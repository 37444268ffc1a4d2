package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid configuration")

const schemaURL = "directus-tools-config.json"

var (
	compileOnce sync.Once
	compiled    *validator.Schema
	compileErr  error
)

// Schema returns the JSON Schema of Config.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	return r.Reflect(&Config{})
}

func compiledSchema() (*validator.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(Schema())
		if err != nil {
			compileErr = err
			return
		}
		doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = err
			return
		}
		c := validator.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Validate checks c against Schema().
func (c Config) Validate() error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = []string{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	inst, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
