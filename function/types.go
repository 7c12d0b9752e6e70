package function

import "fmt"

// RequestDataType describes how Event.Data is shaped.
type RequestDataType string

const (
	// RequestText carries a JSON string.
	RequestText RequestDataType = "text"
	// RequestBinary carries one file (or a list of files) as FileData.
	RequestBinary RequestDataType = "binary"
	// RequestObject carries an arbitrary JSON value.
	RequestObject RequestDataType = "object"
	// RequestMixed carries a list of FileData, typically a multipart form.
	RequestMixed RequestDataType = "mixed"
)

// ResponseType tells the engine how Response.Data is shaped.
type ResponseType string

const (
	ResponseText   ResponseType = "text"
	ResponseBinary ResponseType = "binary"
	ResponseObject ResponseType = "object"
)

// UnknownTypeError is returned when a type literal on the wire is not one
// of the known values.
type UnknownTypeError struct {
	Kind    string
	Literal string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown %s type %q", e.Kind, e.Literal)
}

func (t RequestDataType) Valid() bool {
	switch t {
	case RequestText, RequestBinary, RequestObject, RequestMixed:
		return true
	}
	return false
}

func (t RequestDataType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnknownTypeError{Kind: "request data", Literal: string(t)}
	}
	return []byte(t), nil
}

func (t *RequestDataType) UnmarshalText(b []byte) error {
	v := RequestDataType(b)
	if !v.Valid() {
		return &UnknownTypeError{Kind: "request data", Literal: string(b)}
	}
	*t = v
	return nil
}

func (t ResponseType) Valid() bool {
	switch t {
	case ResponseText, ResponseBinary, ResponseObject:
		return true
	}
	return false
}

func (t ResponseType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnknownTypeError{Kind: "response", Literal: string(t)}
	}
	return []byte(t), nil
}

func (t *ResponseType) UnmarshalText(b []byte) error {
	v := ResponseType(b)
	if !v.Valid() {
		return &UnknownTypeError{Kind: "response", Literal: string(b)}
	}
	*t = v
	return nil
}
