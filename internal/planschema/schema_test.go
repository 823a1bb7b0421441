package planschema

import (
	"encoding/json"
	"testing"
)

func TestValidatePlanAcceptsWellFormedPlan(t *testing.T) {
	data, _ := json.Marshal(map[string]any{
		"statements": []string{"CREATE SCHEMA app;"},
		"role":       "migrator",
	})
	if err := ValidatePlan(data); err != nil {
		t.Errorf("expected a well-formed plan to validate, got %v", err)
	}
}

func TestValidatePlanRejectsMissingStatements(t *testing.T) {
	data, _ := json.Marshal(map[string]any{"role": "migrator"})
	if err := ValidatePlan(data); err == nil {
		t.Errorf("expected a plan with no statements field to fail validation")
	}
}

func TestValidateApplyResultRejectsUnknownStatus(t *testing.T) {
	data, _ := json.Marshal(map[string]any{
		"status":        "bogus",
		"total_rounds":  1,
		"total_applied": 1,
		"total_skipped": 0,
		"rounds":        []any{},
	})
	if err := ValidateApplyResult(data); err == nil {
		t.Errorf("expected an unrecognized status to fail validation")
	}
}

func TestValidateApplyResultAcceptsWellFormedResult(t *testing.T) {
	data, _ := json.Marshal(map[string]any{
		"status":        "success",
		"total_rounds":  1,
		"total_applied": 2,
		"total_skipped": 0,
		"rounds":        []any{},
	})
	if err := ValidateApplyResult(data); err != nil {
		t.Errorf("expected a well-formed apply result to validate, got %v", err)
	}
}
