package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	dErrors "kycore/pkg/domain-errors"
)

var emptyDocument = []byte("{}")

// Document is an immutable JSON object stored in canonical form (sorted keys, no
// insignificant whitespace), so equal documents have equal bytes.
type Document struct {
	raw []byte
}

// NewDocument encodes v, which must marshal to a JSON object.
func NewDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "document is not serializable")
	}
	return ParseDocument(raw)
}

// ParseDocument canonicalizes raw JSON. Empty input yields the empty object.
//
// Errors: returns CodeArgumentInvalid for malformed JSON and non-object values.
func ParseDocument(raw []byte) (Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, nil
	}
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "document must be a JSON object")
	}
	if obj == nil {
		return Document{}, nil
	}
	canonical, err := json.Marshal(obj)
	if err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "document is not serializable")
	}
	return Document{raw: canonical}, nil
}

// Bytes returns a copy of the canonical encoding.
func (d Document) Bytes() []byte {
	if len(d.raw) == 0 {
		return bytes.Clone(emptyDocument)
	}
	return bytes.Clone(d.raw)
}

// Decode unmarshals the document into dst.
func (d Document) Decode(dst any) error {
	return json.Unmarshal(d.Bytes(), dst)
}

func (d Document) IsZero() bool {
	return len(d.raw) == 0 || bytes.Equal(d.raw, emptyDocument)
}

func (d Document) Equal(other Document) bool {
	return bytes.Equal(d.Bytes(), other.Bytes())
}

func (d Document) String() string {
	return string(d.Bytes())
}

func (d Document) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	return d.Bytes(), nil
}
