// Package preview keeps the certificate preview in sync with the form
// values. The preview Model is a projection: it is recomputed from the
// current values and formatting rules and never edited on its own.
package preview

import (
	"sort"
	"time"

	"github.com/goliatone/go-certgen/pkg/format"
	"github.com/goliatone/go-certgen/pkg/schema"
)

// DefaultAuthority is shown in the footer until the user supplies one.
const DefaultAuthority = "Department of Vital Records"

// Model maps display keys to rendered strings.
type Model map[string]string

// Clone returns an independent copy.
func (m Model) Clone() Model {
	out := make(Model, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Slots returns the display keys in sorted order.
func (m Model) Slots() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Option configures a Sync.
type Option func(*Sync)

// WithTargets restricts the preview to the given display keys. Fields
// without a target are skipped.
func WithTargets(slots ...string) Option {
	return func(s *Sync) {
		s.targets = make(map[string]struct{}, len(slots))
		for _, slot := range slots {
			s.targets[slot] = struct{}{}
		}
	}
}

// WithAuthorityField names the field mirrored verbatim into the footer.
func WithAuthorityField(key string) Option {
	return func(s *Sync) {
		s.authorityField = key
	}
}

// WithClock overrides the clock used for the issue date.
func WithClock(now func() time.Time) Option {
	return func(s *Sync) {
		if now != nil {
			s.now = now
		}
	}
}

// Sync projects form values into a preview Model.
type Sync struct {
	schema         *schema.Schema
	targets        map[string]struct{}
	authorityField string
	now            func() time.Time
	model          Model
}

// New builds a Sync whose model starts in the reset state. Unless
// WithTargets is supplied every schema field plus the issue date and
// authority footer slots is a target.
func New(s *schema.Schema, options ...Option) *Sync {
	sync := &Sync{
		schema:         s,
		authorityField: schema.KeyIssuingAuthority,
		now:            time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(sync)
		}
	}
	if sync.targets == nil {
		sync.targets = make(map[string]struct{})
		for _, field := range s.Fields() {
			sync.targets[field.DisplayKey()] = struct{}{}
		}
		sync.targets[schema.SlotIssueDate] = struct{}{}
		sync.targets[schema.SlotIssuingAuthority] = struct{}{}
	}
	sync.Reset()
	return sync
}

// Refresh overwrites every targeted slot from values. Slots that no field
// maps to (the issue date) keep their current content.
func (s *Sync) Refresh(values schema.Values) {
	for _, field := range s.schema.Fields() {
		slot := field.DisplayKey()
		if !s.hasTarget(slot) {
			continue
		}
		s.model[slot] = format.Format(field.Kind, values.Get(field.Key))
	}
	if s.authorityField != "" && s.hasTarget(schema.SlotIssuingAuthority) && s.schema.Has(s.authorityField) {
		s.model[schema.SlotIssuingAuthority] = values.Get(s.authorityField)
	}
}

// Reset restores every slot to its placeholder, the issue date to today and
// the authority footer to DefaultAuthority.
func (s *Sync) Reset() {
	model := make(Model, len(s.targets))
	for slot := range s.targets {
		switch slot {
		case schema.SlotIssueDate:
			model[slot] = format.Today(s.now())
		case schema.SlotIssuingAuthority:
			model[slot] = DefaultAuthority
		default:
			model[slot] = format.TextPlaceholder
		}
	}
	s.model = model
}

// Model returns a copy of the current preview.
func (s *Sync) Model() Model {
	return s.model.Clone()
}

func (s *Sync) hasTarget(slot string) bool {
	_, ok := s.targets[slot]
	return ok
}
