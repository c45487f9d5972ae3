package validity_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/validity"
)

func complete(s *schema.Schema) schema.Values {
	values := schema.Values{}
	for _, field := range s.Required() {
		values[field.Key] = "x"
	}
	return values
}

func TestIsValidWithAllRequiredFields(t *testing.T) {
	s := schema.Default()
	gate := validity.New(s)

	values := complete(s)
	if !gate.IsValid(values) {
		t.Fatalf("expected complete values to be valid, missing %v", gate.Missing(values))
	}

	for _, field := range s.Required() {
		t.Run(field.Key, func(t *testing.T) {
			for _, blank := range []string{"", "   ", "\t\n"} {
				broken := values.Clone()
				broken[field.Key] = blank
				if gate.IsValid(broken) {
					t.Fatalf("expected invalid when %s is %q", field.Key, blank)
				}
				if diff := cmp.Diff([]string{field.Key}, gate.Missing(broken)); diff != "" {
					t.Fatalf("missing mismatch (-want +got):\n%s", diff)
				}
			}
			removed := values.Clone()
			delete(removed, field.Key)
			if gate.IsValid(removed) {
				t.Fatalf("expected invalid when %s is absent", field.Key)
			}
		})
	}
}

func TestOptionalFieldsDoNotAffectValidity(t *testing.T) {
	s := schema.Default()
	gate := validity.New(s)

	values := complete(s)
	values[schema.KeyTimeOfBirth] = ""
	values[schema.KeyIssuingAuthority] = ""
	if !gate.IsValid(values) {
		t.Fatalf("optional blanks should not invalidate the form")
	}
}

func TestMissingPreservesCatalogOrder(t *testing.T) {
	gate := validity.New(schema.Default())
	got := gate.Missing(schema.Values{"gender": "F"})
	want := []string{"fullName", "dateOfBirth", "placeOfBirth", "motherName", "registrationDate"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}
