package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/schema"
)

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/values/fullName":      {"Name is too short"},
		"$.body.dateOfBirth":    {"Date is in the future", " Date is in the future "},
		"motherName":            {"  "},
		"/values/nickname":      {"Unknown field"},
		"":                      {"Unscoped error"},
		"#/body/placeOfBirth~1": {"Should fall back to form errors"},
	}

	mapped := render.MapErrorPayload(schema.Default(), payload)

	wantFields := map[string][]string{
		"fullName":    {"Name is too short"},
		"dateOfBirth": {"Date is in the future"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Should fall back to form errors", "Unknown field", "Unscoped error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingFieldErrors(t *testing.T) {
	got := render.MissingFieldErrors(schema.Default(), []string{"fullName", "registrationDate"})
	want := map[string][]string{
		"fullName":         {"Full Name is required."},
		"registrationDate": {"Date of Registration is required."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("missing errors mismatch (-want +got):\n%s", diff)
	}
	if render.MissingFieldErrors(schema.Default(), nil) != nil {
		t.Fatalf("expected nil for no missing fields")
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
