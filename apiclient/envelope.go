package apiclient

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigFastest

// envelope is the response shape shared by all backend endpoints.
type envelope struct {
	StatusType bool                `json:"statusType"`
	Message    string              `json:"message"`
	Data       jsoniter.RawMessage `json:"data,omitempty"`
}

// errorDetails holds what an error envelope's data field can carry:
// an array of field messages or an object with a discriminator code.
type errorDetails struct {
	fieldErrors []FieldError
	code        string
}

type errorCode struct {
	Code string `json:"code"`
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := jsonAPI.Unmarshal(body, &env); err != nil {
		return envelope{}, err
	}

	return env, nil
}

func (e envelope) hasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (e envelope) decodeData(out any) error {
	if out == nil || !e.hasData() {
		return nil
	}

	return jsonAPI.Unmarshal(e.Data, out)
}

// errorDetails never fails: unknown shapes simply carry no details.
func (e envelope) errorDetails() errorDetails {
	if !e.hasData() {
		return errorDetails{}
	}

	trimmed := bytes.TrimSpace(e.Data)

	switch trimmed[0] {
	case '[':
		var fieldErrors []FieldError
		if err := jsonAPI.Unmarshal(trimmed, &fieldErrors); err != nil {
			return errorDetails{}
		}

		nonEmpty := make([]FieldError, 0, len(fieldErrors))
		for _, fieldErr := range fieldErrors {
			if fieldErr.Msg != "" {
				nonEmpty = append(nonEmpty, fieldErr)
			}
		}

		return errorDetails{fieldErrors: nonEmpty}

	case '{':
		var code errorCode
		if err := jsonAPI.Unmarshal(trimmed, &code); err != nil {
			return errorDetails{}
		}

		return errorDetails{code: code.Code}
	}

	return errorDetails{}
}
