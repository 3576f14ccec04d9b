package validation

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Text is a string field that also accepts JSON numbers.
// Values of any other JSON type decode to the empty string so that the
// field's own rules report them instead of the decoder.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = ""
			return nil
		}
		*t = Text(s)
	case c == '-' || (c >= '0' && c <= '9'):
		*t = Text(data)
	default:
		*t = ""
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}
