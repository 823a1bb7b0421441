// Package planschema validates the JSON forms of planner.OrderedPlan and
// applyengine.ApplyResult before they cross the CLI boundary: compile the
// schema once, validate each decoded document at the serialization
// boundary itself rather than only in tests.
package planschema

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const planSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["statements"],
	"properties": {
		"statements": {"type": "array", "items": {"type": "string"}},
		"role": {"type": "string"}
	}
}`

const applyResultSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["status", "total_rounds", "total_applied", "total_skipped", "rounds"],
	"properties": {
		"status": {"enum": ["success", "partial_failure", "validation_failed"]},
		"total_rounds": {"type": "integer", "minimum": 0},
		"total_applied": {"type": "integer", "minimum": 0},
		"total_skipped": {"type": "integer", "minimum": 0},
		"rounds": {"type": "array"},
		"validation_errors": {"type": "array"},
		"cancelled": {"type": "boolean"}
	}
}`

var planSchema, applyResultSchema *jsonschema.Schema

func init() {
	planSchema = mustCompile("pgdelta://plan.schema.json", planSchemaJSON)
	applyResultSchema = mustCompile("pgdelta://apply-result.schema.json", applyResultSchemaJSON)
}

func mustCompile(url, schemaJSON string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaJSON)))
	if err != nil {
		panic(fmt.Sprintf("planschema: invalid embedded schema %s: %v", url, err))
	}
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("planschema: AddResource %s: %v", url, err))
	}
	sch, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("planschema: compile %s: %v", url, err))
	}
	return sch
}

// ValidatePlan checks a JSON-encoded planner.OrderedPlan against its schema.
func ValidatePlan(jsonBytes []byte) error {
	return validate(planSchema, jsonBytes)
}

// ValidateApplyResult checks a JSON-encoded applyengine.ApplyResult against
// its schema.
func ValidateApplyResult(jsonBytes []byte) error {
	return validate(applyResultSchema, jsonBytes)
}

func validate(sch *jsonschema.Schema, jsonBytes []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("planschema: decode: %w", err)
	}
	return sch.Validate(inst)
}
