// Package schema describes the static field catalog of a certificate form:
// each field's key, label, kind (text, date, time) and whether it is
// required. Catalogs load from JSON/YAML documents or from an OpenAPI
// component schema, and the bundled birth certificate catalog is available
// through Default. The package also defines Values, the raw key/value
// mapping owned by a form session, and the display-key convention used to
// address preview slots.
package schema
