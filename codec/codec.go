// Package codec converts between wire lines and the function package types.
//
// Field names on the wire are lower_snake_case. They are fixed by struct
// tags and cannot be configured.
package codec

import (
	"encoding/json"
	"errors"

	"e5e/function"
)

var (
	errMissingEvent     = errors.New("request has no event")
	errMissingEventType = errors.New("event has no type")
)

// DecodeRequest parses one input line into a request. Invalid JSON, unknown
// type literals, a missing or null event and an event without a type all
// fail with a *DecodeError.
func DecodeRequest(line string) (function.Request, error) {
	var req function.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return function.Request{}, &DecodeError{Line: line, Err: err}
	}

	if req.Event == nil {
		return function.Request{}, &DecodeError{Line: line, Err: errMissingEvent}
	}

	// an absent "type" never reaches UnmarshalText
	if req.Event.Type == "" {
		return function.Request{}, &DecodeError{Line: line, Err: errMissingEventType}
	}

	if req.Context.Type == "" {
		req.Context.Type = function.DefaultContextType
	}

	return req, nil
}

// EncodeResponse serializes resp as written in keep-alive mode.
func EncodeResponse(resp *function.Response) (string, error) {
	if resp == nil {
		return "", &EncodeError{Err: errors.New("response is nil")}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	return string(b), nil
}

// result is the single-shot framing of a response.
type result struct {
	Result *function.Response `json:"result"`
}

// EncodeResult serializes resp wrapped as {"result": ...}, the framing used
// when the process serves a single invocation.
func EncodeResult(resp *function.Response) (string, error) {
	if resp == nil {
		return "", &EncodeError{Err: errors.New("response is nil")}
	}

	b, err := json.Marshal(result{Result: resp})
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	return string(b), nil
}
