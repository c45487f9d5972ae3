package preview_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-certgen/pkg/format"
	"github.com/goliatone/go-certgen/pkg/preview"
	"github.com/goliatone/go-certgen/pkg/schema"
)

func testSchema() *schema.Schema {
	return schema.MustNew([]schema.FieldDescriptor{
		{Key: "fullName", Required: true},
		{Key: "dateOfBirth", Kind: schema.KindDate, Required: true},
		{Key: "timeOfBirth", Kind: schema.KindTime},
		{Key: "issuingAuthority"},
	})
}

func clock() time.Time {
	return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
}

func TestRefreshFormatsEveryTarget(t *testing.T) {
	sync := preview.New(testSchema(), preview.WithClock(clock))

	sync.Refresh(schema.Values{
		"fullName":         " Jane Ann Doe ",
		"dateOfBirth":      "2024-01-05",
		"timeOfBirth":      "14:30",
		"issuingAuthority": "  County Clerk  ",
	})

	want := preview.Model{
		"cert-fullName":         "Jane Ann Doe",
		"cert-dateOfBirth":      "January 5, 2024",
		"cert-timeOfBirth":      "2:30 PM",
		"cert-issuingAuthority": "  County Clerk  ",
		"cert-issueDate":        "October 19, 2026",
	}
	if diff := cmp.Diff(want, sync.Model()); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	sync := preview.New(testSchema(), preview.WithClock(clock))
	values := schema.Values{"fullName": "Jane", "dateOfBirth": "garbage"}

	sync.Refresh(values)
	first := sync.Model()
	sync.Refresh(values)
	second := sync.Model()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("refresh not idempotent (-first +second):\n%s", diff)
	}
	if second["cert-dateOfBirth"] != format.ShortPlaceholder {
		t.Fatalf("expected unparsable date to render placeholder, got %q", second["cert-dateOfBirth"])
	}
	if second["cert-timeOfBirth"] != format.ShortPlaceholder {
		t.Fatalf("expected empty time to render placeholder, got %q", second["cert-timeOfBirth"])
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	sync := preview.New(testSchema(), preview.WithClock(clock))
	sync.Refresh(schema.Values{"fullName": "Jane", "issuingAuthority": "Clerk"})

	sync.Reset()

	want := preview.Model{
		"cert-fullName":         format.TextPlaceholder,
		"cert-dateOfBirth":      format.TextPlaceholder,
		"cert-timeOfBirth":      format.TextPlaceholder,
		"cert-issuingAuthority": preview.DefaultAuthority,
		"cert-issueDate":        "October 19, 2026",
	}
	if diff := cmp.Diff(want, sync.Model()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingTargetsAreSkipped(t *testing.T) {
	sync := preview.New(testSchema(),
		preview.WithClock(clock),
		preview.WithTargets("cert-fullName"),
	)
	sync.Refresh(schema.Values{"fullName": "Jane", "dateOfBirth": "2024-01-05", "issuingAuthority": "Clerk"})

	want := preview.Model{"cert-fullName": "Jane"}
	if diff := cmp.Diff(want, sync.Model()); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestModelIsACopy(t *testing.T) {
	sync := preview.New(testSchema(), preview.WithClock(clock))
	model := sync.Model()
	model["cert-fullName"] = "tampered"

	if sync.Model()["cert-fullName"] == "tampered" {
		t.Fatalf("expected Model to return a copy")
	}
}
