package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396).
// A *string cannot tell "absent" from "null", which matters for parent_id:
//   - Present=false: field absent from JSON (don't move)
//   - Present=true, Value=nil: field is JSON null (move to root)
//   - Present=true, Value=&"id": move under that folder
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// IsNull reports whether the field was sent as an explicit null
func (o OptionalString) IsNull() bool {
	return o.Present && o.Value == nil
}
