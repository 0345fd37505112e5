package graphql

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type graphResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

// Response is the data of a successful GraphQL response. Result fields are
// extracted by name with Get.
type Response struct {
	data   json.RawMessage
	fields map[string]json.RawMessage
}

// NewResponse wraps the raw data object of a response. Transports and test
// doubles other than Client use it to build a Response.
func NewResponse(data json.RawMessage) (*Response, error) {
	resp := &Response{data: data}
	if isNull(data) {
		return resp, nil
	}
	if err := json.Unmarshal(data, &resp.fields); err != nil {
		return nil, &ResponseShapeError{Field: "data", Err: errors.Wrap(err, "decoding data")}
	}

	return resp, nil
}

// Data returns the raw data object.
func (r *Response) Data() json.RawMessage {
	return r.data
}

// Has reports whether the data object carries field, even as null.
func (r *Response) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// Get unmarshals the named result field into v. A field that is absent,
// null, or cannot be decoded into v yields a *ResponseShapeError.
func (r *Response) Get(field string, v interface{}) error {
	raw, ok := r.fields[field]
	if !ok || isNull(raw) {
		return &ResponseShapeError{Field: field, Err: errMissingField}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ResponseShapeError{Field: field, Err: errors.Wrap(err, "decoding field")}
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
