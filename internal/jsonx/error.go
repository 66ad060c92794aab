package jsonx

import (
	"encoding/json"
	"io"
	"strings"
)

// IsParseError returns true if err indicates a JSON parse failure of some
// kind, whether the JSON text itself was malformed or it was well-formed
// JSON that did not match the shape the caller expected.
func IsParseError(err error) bool {
	switch err.(type) {
	case nil:
		return false
	case *json.SyntaxError:
		return true
	case *json.UnmarshalTypeError:
		return true
	default:
		if err == io.ErrUnexpectedEOF {
			return true
		}

		// Unfortunately, some JSON errors do not have distinct types. For
		// example, when parsing using a decoder with DisallowUnknownFields()
		// enabled an unexpected field is reported using the equivalent of:
		//
		//   errors.New(`json: unknown field "<field name>"`)
		return strings.HasPrefix(err.Error(), "json:")
	}
}

// IsMalformedJSON returns true if err indicates that the JSON text itself
// could not be tokenized, as opposed to well-formed JSON that simply did not
// describe a value of the shape the caller expected.
func IsMalformedJSON(err error) bool {
	switch err.(type) {
	case nil:
		return false
	case *json.SyntaxError:
		return true
	default:
		return err == io.ErrUnexpectedEOF
	}
}
