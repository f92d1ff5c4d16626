// Package schema models the remote form description that drives a CRIMSON
// submission: an ordered list of typed field definitions fetched from the
// server, plus the per-field validation applied on every record write.
package schema

// Kind is the resolved value type of a field, fixed once at load time.
type Kind int

const (
	KindBool Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Zero returns the empty value for the kind.
func (k Kind) Zero() any {
	if k == KindBool {
		return false
	}
	return ""
}

// Wire field types understood by the loader.
const (
	TypeBoolean     = "BooleanField"
	TypeChar        = "CharField"
	TypeTypedChoice = "TypedChoiceField"
)

var wireKinds = map[string]Kind{
	TypeBoolean:     KindBool,
	TypeChar:        KindText,
	TypeTypedChoice: KindText,
}

// FieldDefinition describes a single form field. Immutable once loaded.
type FieldDefinition struct {
	Key      string
	Kind     Kind
	Required bool
	Label    string
	HelpText string

	// Choices is the ordered set of allowed values for choice fields.
	// Its casing is canonical: a matching value is stored with the casing
	// found here, not the caller's.
	Choices []string

	// Initial is the field's default value, or nil when the description
	// does not supply one.
	Initial any
}

// HasChoices reports whether the field restricts values to a choice list.
func (d FieldDefinition) HasChoices() bool { return len(d.Choices) > 0 }

// Schema is an ordered mapping of field key to definition. Source order is
// preserved and significant: records iterate and serialize in this order.
type Schema struct {
	order  []string
	fields map[string]FieldDefinition
}

// New builds a schema from definitions, preserving their order.
func New(defs ...FieldDefinition) (*Schema, error) {
	s := &Schema{fields: make(map[string]FieldDefinition, len(defs))}
	for _, d := range defs {
		if d.Key == "" {
			return nil, &UnavailableError{Err: errMissingKey}
		}
		if _, dup := s.fields[d.Key]; dup {
			return nil, &UnavailableError{Err: errDuplicateKey(d.Key)}
		}
		s.order = append(s.order, d.Key)
		s.fields[d.Key] = d
	}
	return s, nil
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.order) }

// Keys returns all field keys in source order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the definition for key.
func (s *Schema) Get(key string) (FieldDefinition, bool) {
	d, ok := s.fields[key]
	return d, ok
}

// Has reports whether key is part of the schema.
func (s *Schema) Has(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// All returns every definition in source order.
func (s *Schema) All() []FieldDefinition {
	out := make([]FieldDefinition, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.fields[k])
	}
	return out
}

// Required returns the keys of required fields, in source order.
func (s *Schema) Required() []string {
	var out []string
	for _, k := range s.order {
		if s.fields[k].Required {
			out = append(out, k)
		}
	}
	return out
}

// Optional returns the keys of optional fields, in source order.
func (s *Schema) Optional() []string {
	var out []string
	for _, k := range s.order {
		if !s.fields[k].Required {
			out = append(out, k)
		}
	}
	return out
}
