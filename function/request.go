// Package function holds the data exchanged between the e5e engine and a
// user function: the request envelope, its event and context, and the
// response.
package function

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultContextType is used when the engine does not name the trigger.
const DefaultContextType = "generic"

// Request is the envelope the engine sends for every invocation.
type Request struct {
	// Event carries the user payload. A request without an event is
	// rejected by the codec.
	Event *Event `json:"event"`

	// Context describes the invocation itself.
	Context Context `json:"context"`
}

// Event is the user payload of an invocation.
type Event struct {
	Type           RequestDataType `json:"type"`
	Data           json.RawMessage `json:"data,omitempty"`
	RequestHeaders Headers         `json:"request_headers,omitempty"`
	Params         Params          `json:"params,omitempty"`
}

// Context carries invocation metadata.
type Context struct {
	// Type names the trigger, e.g. "http" or "generic".
	Type string `json:"type"`

	// Date is when the engine received the invocation.
	Date time.Time `json:"date"`

	// Async is set when nobody waits for the response.
	Async bool `json:"async,omitempty"`

	// Data is trigger specific and optional.
	Data json.RawMessage `json:"data,omitempty"`
}

func (c *Context) UnmarshalJSON(b []byte) error {
	type plain Context
	v := plain{Type: DefaultContextType}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Type == "" {
		v.Type = DefaultContextType
	}
	*c = Context(v)
	return nil
}

// NewRequest builds a request around data, marshalled as the event payload.
func NewRequest(dataType RequestDataType, data any) (Request, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Event: &Event{
			Type: dataType,
			Data: raw,
		},
		Context: Context{
			Type: DefaultContextType,
			Date: time.Now().UTC(),
		},
	}, nil
}

// ConversionError is returned when an event is read as a type it does not
// carry.
type ConversionError struct {
	Expected []RequestDataType
	Actual   RequestDataType
}

func (e *ConversionError) Error() string {
	if len(e.Expected) == 1 {
		return fmt.Sprintf("cannot convert data of type %s into the type %s", e.Actual, e.Expected[0])
	}
	return fmt.Sprintf("cannot convert data of type %s into any of the types %v", e.Actual, e.Expected)
}

func (e *Event) expect(types ...RequestDataType) error {
	for _, t := range types {
		if e.Type == t {
			return nil
		}
	}
	return &ConversionError{Expected: types, Actual: e.Type}
}

// As unmarshals the payload into v. An absent payload leaves v untouched.
func (e *Event) As(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// AsText returns the payload of a text event.
func (e *Event) AsText() (string, error) {
	if err := e.expect(RequestText); err != nil {
		return "", err
	}
	var s string
	if err := e.As(&s); err != nil {
		return "", err
	}
	return s, nil
}

// AsBytes returns the content of the single file of a binary event, or nil
// if the event carries no file.
func (e *Event) AsBytes() ([]byte, error) {
	if err := e.expect(RequestBinary); err != nil {
		return nil, err
	}
	files, err := e.AsFiles()
	if err != nil {
		return nil, err
	}
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		return files[0].Bytes, nil
	default:
		return nil, fmt.Errorf("expected a single file, got %d", len(files))
	}
}

// AsFiles returns the files of a binary or mixed event. A single object is
// returned as a one-element slice.
func (e *Event) AsFiles() ([]FileData, error) {
	if err := e.expect(RequestBinary, RequestMixed); err != nil {
		return nil, err
	}

	switch firstByte(e.Data) {
	case '{':
		var f FileData
		if err := json.Unmarshal(e.Data, &f); err != nil {
			return nil, err
		}
		return []FileData{f}, nil
	case '[':
		var files []FileData
		if err := json.Unmarshal(e.Data, &files); err != nil {
			return nil, err
		}
		return files, nil
	}
	return []FileData{}, nil
}

func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}
