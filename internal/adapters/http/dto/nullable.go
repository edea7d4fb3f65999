package dto

import "encoding/json"

// NullableString is a JSON field that distinguishes three states: omitted
// from the payload, present as null, and present with a value. PATCH bodies
// need this so that `"due_date": null` clears the field while an omitted
// due_date leaves it alone.
//
// encoding/json only invokes UnmarshalJSON for keys that appear in the
// payload, so Present is false exactly when the field was omitted.
type NullableString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Present = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}
