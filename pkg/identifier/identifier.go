// Package identifier derives the registration and certificate numbers from
// other field values. Randomness is intentional: every qualifying edit
// yields a new number and no uniqueness is promised.
package identifier

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-certgen/pkg/schema"
)

const minNameLength = 3

// RandomSource returns a uniform integer in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Option configures a Generator.
type Option func(*Generator)

// WithRandom injects the random source, typically a fixed sequence in tests.
func WithRandom(r RandomSource) Option {
	return func(g *Generator) {
		if r != nil {
			g.rand = r
		}
	}
}

// WithClock overrides the clock used for the registration year.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator produces derived identifiers.
type Generator struct {
	rand RandomSource
	now  func() time.Time
}

// New constructs a Generator backed by math/rand/v2 and time.Now.
func New(options ...Option) *Generator {
	g := &Generator{rand: globalRand{}, now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// RegistrationNumber returns INITIALS + YYYY + NNNN. It reports false when
// the name is shorter than three characters so callers keep the prior value.
func (g *Generator) RegistrationNumber(fullName string) (string, bool) {
	if utf8.RuneCountInString(fullName) < minNameLength {
		return "", false
	}

	var initials strings.Builder
	for _, token := range strings.Fields(fullName) {
		r, _ := utf8.DecodeRuneInString(token)
		initials.WriteRune(unicode.ToUpper(r))
	}

	year := g.now().Year()
	return fmt.Sprintf("%s%04d%04d", initials.String(), year, g.rand.IntN(10000)), true
}

// CertificateNumber returns BC + YYYYMMDD + NNN. It reports false when the
// date of birth is empty or not a YYYY-MM-DD calendar date.
func (g *Generator) CertificateNumber(dateOfBirth string) (string, bool) {
	trimmed := strings.TrimSpace(dateOfBirth)
	if trimmed == "" {
		return "", false
	}
	dob, err := time.Parse(schema.DateLayout, trimmed)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("BC%04d%02d%02d%03d", dob.Year(), int(dob.Month()), dob.Day(), g.rand.IntN(1000)), true
}

// Bindings names the trigger fields and the fields their identifiers are
// written to.
type Bindings struct {
	NameField         string
	RegistrationField string
	BirthDateField    string
	CertificateField  string
}

// DefaultBindings matches the bundled birth certificate catalog.
func DefaultBindings() Bindings {
	return Bindings{
		NameField:         schema.KeyFullName,
		RegistrationField: schema.KeyRegistrationNumber,
		BirthDateField:    schema.KeyDateOfBirth,
		CertificateField:  schema.KeyCertificateNumber,
	}
}

// Derive runs the generator matching the changed field. It returns the
// target key and value, or ok=false when key is not a trigger or the input
// does not qualify.
func (g *Generator) Derive(b Bindings, key, value string) (target, derived string, ok bool) {
	switch key {
	case "":
		return "", "", false
	case b.NameField:
		derived, ok = g.RegistrationNumber(value)
		return b.RegistrationField, derived, ok && b.RegistrationField != ""
	case b.BirthDateField:
		derived, ok = g.CertificateNumber(value)
		return b.CertificateField, derived, ok && b.CertificateField != ""
	default:
		return "", "", false
	}
}
