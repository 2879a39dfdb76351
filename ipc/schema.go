package ipc

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "https://vimy.local/schemas/"

// schemaFiles maps message types to the schema their data must satisfy.
var schemaFiles = map[string]string{
	TypeHello:       "hello.schema.json",
	TypeObservation: "observation.schema.json",
}

// Validator checks inbound message data against the embedded JSON schemas
// before it is decoded, so a malformed observation is rejected at the edge
// instead of surfacing as zeroed fields in the agent.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	for _, name := range schemaFiles {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(schemaFiles))}
	for msgType, name := range schemaFiles {
		s, err := c.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[msgType] = s
	}
	return v, nil
}

// Validate checks env.Data. Message types without a schema always pass.
func (v *Validator) Validate(env Envelope) error {
	s, ok := v.schemas[env.Type]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("invalid %s: %w", env.Type, err)
	}
	return nil
}

// Validated wraps h so envelopes failing validation never reach it.
func (v *Validator) Validated(h Handler) Handler {
	return func(env Envelope) (*Envelope, error) {
		if err := v.Validate(env); err != nil {
			return nil, err
		}
		return h(env)
	}
}
