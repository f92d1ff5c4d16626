package schema_test

import (
	"errors"
	"testing"

	"github.com/sean-lockwood/crimson-ins-submit/schema"
)

func TestValidateCaseInsensitiveChoices(t *testing.T) {
	def := schema.FieldDefinition{Key: "confirm", Kind: schema.KindText, Choices: []string{"Yes", "No"}}

	v, err := schema.Validate(def, "yes")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v != "Yes" {
		t.Fatalf("expected canonical casing Yes, got %v", v)
	}

	_, err = schema.Validate(def, "MAYBE")
	var invalid *schema.InvalidChoiceError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidChoiceError, got %v", err)
	}
}

func TestValidateEmptyChoiceRejected(t *testing.T) {
	// empty string is not a member of the choice list; only record
	// construction may leave a choice field empty
	def := schema.FieldDefinition{Key: "replacing_badfiles", Kind: schema.KindText, Choices: []string{"Yes", "No", "N/A"}}
	_, err := schema.Validate(def, "")
	var invalid *schema.InvalidChoiceError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidChoiceError for empty value, got %v", err)
	}

	// on a required choice field the emptiness error wins
	def.Required = true
	_, err = schema.Validate(def, "")
	var empty *schema.EmptyRequiredError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRequiredError for required empty, got %v", err)
	}
}

func TestValidateBooleanCoercion(t *testing.T) {
	def := schema.FieldDefinition{Key: "confirm", Kind: schema.KindText, Choices: []string{"Yes", "No"}}

	v, err := schema.Validate(def, true)
	if err != nil || v != "Yes" {
		t.Fatalf("expected Yes, got v=%v err=%v", v, err)
	}
	v, err = schema.Validate(def, false)
	if err != nil || v != "No" {
		t.Fatalf("expected No, got v=%v err=%v", v, err)
	}
}

func TestValidateRequiredEmptiness(t *testing.T) {
	// false is a legitimate boolean, never "empty"
	boolDef := schema.FieldDefinition{Key: "history_updated", Kind: schema.KindBool, Required: true}
	v, err := schema.Validate(boolDef, false)
	if err != nil || v != false {
		t.Fatalf("required false bool should pass, got v=%v err=%v", v, err)
	}

	textDef := schema.FieldDefinition{Key: "deliverer", Kind: schema.KindText, Required: true}
	_, err = schema.Validate(textDef, "")
	var empty *schema.EmptyRequiredError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRequiredError, got %v", err)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	textDef := schema.FieldDefinition{Key: "deliverer", Kind: schema.KindText, Required: true}
	_, err := schema.Validate(textDef, true)
	var mismatch *schema.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError for bool into text, got %v", err)
	}

	boolDef := schema.FieldDefinition{Key: "history_updated", Kind: schema.KindBool, Required: true}
	_, err = schema.Validate(boolDef, "true")
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError for string into bool, got %v", err)
	}
}

func TestValidatePlainText(t *testing.T) {
	def := schema.FieldDefinition{Key: "notes", Kind: schema.KindText}
	v, err := schema.Validate(def, "anything Goes")
	if err != nil || v != "anything Goes" {
		t.Fatalf("plain text should be stored as given, got v=%v err=%v", v, err)
	}
	// optional text may be empty
	if _, err := schema.Validate(def, ""); err != nil {
		t.Fatalf("optional empty text should pass: %v", err)
	}
}
