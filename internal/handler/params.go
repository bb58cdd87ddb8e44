package handler

import (
	"bytes"
	"encoding/json"
)

// rawNumber captures a numeric field as text without judging it. JSON
// strings are unquoted, any other JSON value is kept verbatim, and form
// values are taken as is. Parsing is left to the domain services.
type rawNumber string

func (n *rawNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = rawNumber(s)
		return nil
	}
	*n = rawNumber(b)
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form input.
func (n *rawNumber) UnmarshalParam(param string) error {
	*n = rawNumber(param)
	return nil
}
