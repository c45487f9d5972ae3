package render

import (
	"github.com/goliatone/go-certgen/pkg/format"
	"github.com/goliatone/go-certgen/pkg/preview"
	"github.com/goliatone/go-certgen/pkg/schema"
)

// CertificateField is one labelled line of the certificate.
type CertificateField struct {
	Key   string           `json:"key"`
	Slot  string           `json:"slot"`
	Label string           `json:"label"`
	Kind  schema.FieldKind `json:"kind"`
	Value string           `json:"value"`
	// Filled is false while the slot still shows a placeholder.
	Filled bool `json:"filled"`
	// Footer marks slots printed in the certificate footer rather than the
	// body.
	Footer bool `json:"footer"`
}

// Certificate is the view model handed to renderers. It is a read-only
// projection of the preview; renderers never see raw form values.
type Certificate struct {
	Title     string             `json:"title"`
	Fields    []CertificateField `json:"fields"`
	Values    map[string]string  `json:"values"`
	IssueDate string             `json:"issueDate"`
	Authority string             `json:"authority"`
}

// NewCertificate projects the preview model onto the schema's field order.
// Fields without a preview slot are left out.
func NewCertificate(s *schema.Schema, model preview.Model) Certificate {
	cert := Certificate{
		Title:     s.Title(),
		Values:    make(map[string]string),
		IssueDate: model[schema.SlotIssueDate],
		Authority: model[schema.SlotIssuingAuthority],
	}
	for _, field := range s.Fields() {
		slot := field.DisplayKey()
		value, ok := model[slot]
		if !ok {
			continue
		}
		cert.Fields = append(cert.Fields, CertificateField{
			Key:    field.Key,
			Slot:   slot,
			Label:  field.Label,
			Kind:   field.Kind,
			Value:  value,
			Filled: !isPlaceholder(value),
			Footer: slot == schema.SlotIssuingAuthority || slot == schema.SlotIssueDate,
		})
		cert.Values[field.Key] = value
	}
	return cert
}

// Field returns the certificate line for key.
func (c Certificate) Field(key string) (CertificateField, bool) {
	for _, field := range c.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return CertificateField{}, false
}

func isPlaceholder(value string) bool {
	return value == "" || value == format.TextPlaceholder || value == format.ShortPlaceholder
}
