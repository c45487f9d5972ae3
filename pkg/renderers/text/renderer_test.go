package text_test

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-certgen/pkg/preview"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/renderers/text"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/testsupport"
)

func TestRenderAlignsLabels(t *testing.T) {
	s := schema.Default()
	sync := preview.New(s, preview.WithClock(testsupport.FixedClock(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))))
	sync.Refresh(schema.Values{
		"fullName":         "Jane Doe",
		"dateOfBirth":      "2024-01-05",
		"issuingAuthority": "County Clerk",
	})

	out, err := text.New().Render(testsupport.Context(), render.NewCertificate(s, sync.Model()), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(string(out), "\n")

	if lines[0] != "CERTIFICATE OF LIVE BIRTH" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	// "Date of Registration" is the longest body label.
	if lines[3] != "Full Name:            Jane Doe" {
		t.Fatalf("unexpected first field line %q", lines[3])
	}
	if !strings.Contains(string(out), "Date of Birth:        January 5, 2024\n") {
		t.Fatalf("date not formatted:\n%s", out)
	}
	if !strings.HasSuffix(string(out), "Date Issued: October 19, 2026\nCounty Clerk\n") {
		t.Fatalf("unexpected footer:\n%s", out)
	}
	if strings.Contains(string(out), "Issuing Authority:") {
		t.Fatalf("authority belongs to the footer only:\n%s", out)
	}
}
