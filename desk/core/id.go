package core

import (
	"bytes"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigFastest

// ErrInvalidID is returned when an identifier is neither a JSON string nor a JSON number.
var ErrInvalidID = errors.New("identifier must be a string or a number")

// ID is an opaque backend-assigned identifier.
// It decodes from JSON strings and numbers alike and always encodes as a string.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool { return id == "" }

func (id *ID) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*id = ""
		return nil

	case trimmed[0] == '"':
		var s string
		if err := jsonAPI.Unmarshal(trimmed, &s); err != nil {
			return errors.Join(ErrInvalidID, err)
		}

		*id = ID(s)

		return nil

	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		var n jsoniter.Number
		if err := jsonAPI.Unmarshal(trimmed, &n); err != nil {
			return errors.Join(ErrInvalidID, err)
		}

		*id = ID(n.String())

		return nil

	default:
		return ErrInvalidID
	}
}
