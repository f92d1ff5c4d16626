package schema

import "strings"

// Yes/No text used when a boolean is supplied for a choice field. This is
// the only implicit conversion the validator performs.
const (
	ChoiceYes = "Yes"
	ChoiceNo  = "No"
)

// Validate checks a candidate value against a field definition and returns
// the canonical value to store. It is a pure function applied on every
// record write.
//
// Rules, in order: a boolean supplied for a choice field is coerced to
// "Yes"/"No"; the value's kind must match the field's kind; a required text
// field may not be empty (false is a non-empty boolean); a choice field's
// value must match one choice case-insensitively, empty string included,
// and is stored with the choice list's canonical casing. Only record
// construction bypasses these rules, for the zero value.
func Validate(def FieldDefinition, value any) (any, error) {
	if b, ok := value.(bool); ok && def.HasChoices() {
		if b {
			value = ChoiceYes
		} else {
			value = ChoiceNo
		}
	}

	switch def.Kind {
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, &TypeMismatchError{Key: def.Key, Want: def.Kind, Got: value}
		}
		return b, nil

	case KindText:
		s, ok := value.(string)
		if !ok {
			return nil, &TypeMismatchError{Key: def.Key, Want: def.Kind, Got: value}
		}
		if def.Required && s == "" {
			return nil, &EmptyRequiredError{Key: def.Key}
		}
		if def.HasChoices() {
			for _, choice := range def.Choices {
				if strings.EqualFold(choice, s) {
					return choice, nil
				}
			}
			return nil, &InvalidChoiceError{Key: def.Key, Value: s, Choices: def.Choices}
		}
		return s, nil
	}

	return nil, &TypeMismatchError{Key: def.Key, Want: def.Kind, Got: value}
}
