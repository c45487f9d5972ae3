package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind describes how a raw field value is interpreted when rendered.
type FieldKind string

const (
	KindText FieldKind = "text"
	KindDate FieldKind = "date"
	KindTime FieldKind = "time"
)

// Valid reports whether the kind is one of the supported enumerations.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindDate, KindTime:
		return true
	default:
		return false
	}
}

// DateLayout is the wire format for date fields (HTML date inputs).
const DateLayout = "2006-01-02"

// DisplayPrefix is prepended to a field key to obtain its preview slot.
const DisplayPrefix = "cert-"

// Well-known keys of the bundled birth certificate catalog.
const (
	KeyFullName           = "fullName"
	KeyDateOfBirth        = "dateOfBirth"
	KeyTimeOfBirth        = "timeOfBirth"
	KeyRegistrationDate   = "registrationDate"
	KeyRegistrationNumber = "registrationNumber"
	KeyCertificateNumber  = "certificateNumber"
	KeyIssuingAuthority   = "issuingAuthority"
)

// Preview slots that are not backed by a form field of the same behaviour.
var (
	SlotIssueDate        = DisplayKey("issueDate")
	SlotIssuingAuthority = DisplayKey(KeyIssuingAuthority)
)

// DisplayKey maps a field key onto its preview slot name.
func DisplayKey(key string) string {
	return DisplayPrefix + key
}

// FieldDescriptor is the static description of a single form field.
type FieldDescriptor struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	// ReadOnly marks fields written by the identifier generator rather than
	// typed by the user.
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// DisplayKey returns the preview slot for the descriptor.
func (d FieldDescriptor) DisplayKey() string {
	return DisplayKey(d.Key)
}

// Schema is the immutable, ordered field catalog.
type Schema struct {
	title  string
	fields []FieldDescriptor
	index  map[string]int
}

// Option configures a Schema during construction.
type Option func(*Schema)

// WithTitle sets the document title rendered on the certificate.
func WithTitle(title string) Option {
	return func(s *Schema) {
		s.title = strings.TrimSpace(title)
	}
}

// New validates the descriptors and returns a Schema preserving their order.
// Missing kinds default to text.
func New(fields []FieldDescriptor, options ...Option) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errors.New("schema: at least one field is required")
	}

	s := &Schema{
		fields: make([]FieldDescriptor, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	for i, field := range fields {
		field.Key = strings.TrimSpace(field.Key)
		if field.Key == "" {
			return nil, fmt.Errorf("schema: field %d has an empty key", i)
		}
		if _, exists := s.index[field.Key]; exists {
			return nil, fmt.Errorf("schema: duplicate field %q", field.Key)
		}
		if field.Kind == "" {
			field.Kind = KindText
		}
		field.Kind = FieldKind(strings.ToLower(string(field.Kind)))
		if !field.Kind.Valid() {
			return nil, fmt.Errorf("schema: field %q has unsupported kind %q", field.Key, field.Kind)
		}
		if field.Label == "" {
			field.Label = field.Key
		}
		s.index[field.Key] = len(s.fields)
		s.fields = append(s.fields, field)
	}
	return s, nil
}

// MustNew panics when the descriptors are invalid. Useful for tests and
// package-level catalogs.
func MustNew(fields []FieldDescriptor, options ...Option) *Schema {
	s, err := New(fields, options...)
	if err != nil {
		panic(err)
	}
	return s
}

// Title returns the configured document title.
func (s *Schema) Title() string {
	if s == nil {
		return ""
	}
	return s.title
}

// Fields returns a copy of the ordered descriptors.
func (s *Schema) Fields() []FieldDescriptor {
	if s == nil {
		return nil
	}
	return append([]FieldDescriptor(nil), s.fields...)
}

// Keys returns the field keys in catalog order.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.fields))
	for i, field := range s.fields {
		keys[i] = field.Key
	}
	return keys
}

// Lookup returns the descriptor registered under key.
func (s *Schema) Lookup(key string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	idx, ok := s.index[key]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[idx], true
}

// Has reports whether key names a catalog field.
func (s *Schema) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Required returns the descriptors flagged as required, in order.
func (s *Schema) Required() []FieldDescriptor {
	if s == nil {
		return nil
	}
	var out []FieldDescriptor
	for _, field := range s.fields {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}
