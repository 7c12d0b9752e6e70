package main

import (
	"context"
	"errors"

	"e5e/function"
	"e5e/handler"
)

func newRegistry() *handler.Registry {
	return handler.NewRegistry().
		MustRegister("Hello", handler.FunctionFunc(hello)).
		MustRegister("Binary", handler.FunctionFunc(binaryLength)).
		MustRegister("ReturnFirstFile", handler.FunctionFunc(returnFirstFile)).
		MustRegister("Echo", handler.FunctionFunc(echo))
}

func hello(ctx context.Context, req function.Request) (*function.Response, error) {
	return function.From("test"), nil
}

type fileLength struct {
	FileLength *int `json:"file_length"`
}

// binaryLength receives a single file and answers with its length.
func binaryLength(ctx context.Context, req function.Request) (*function.Response, error) {
	b, err := req.Event.AsBytes()
	if err != nil {
		return nil, err
	}
	var res fileLength
	if b != nil {
		n := len(b)
		res.FileLength = &n
	}
	return function.From(res), nil
}

// returnFirstFile receives several files as a mixed request and returns the
// first one.
func returnFirstFile(ctx context.Context, req function.Request) (*function.Response, error) {
	files, err := req.Event.AsFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no files received")
	}
	return function.From(files[0]), nil
}

// echo returns the event payload with its original type, along with the
// request headers.
func echo(ctx context.Context, req function.Request) (*function.Response, error) {
	var resp *function.Response
	switch req.Event.Type {
	case function.RequestText:
		s, err := req.Event.AsText()
		if err != nil {
			return nil, err
		}
		resp = function.Text(s)
	case function.RequestBinary, function.RequestMixed:
		files, err := req.Event.AsFiles()
		if err != nil {
			return nil, err
		}
		if len(files) == 1 {
			resp = function.Binary(files[0])
		} else {
			resp = function.Object(files)
		}
	default:
		var v any
		if err := req.Event.As(&v); err != nil {
			return nil, err
		}
		resp = function.Object(v)
	}

	if ct, ok := req.Event.RequestHeaders.Get("content-type"); ok {
		resp.WithHeader("content-type", ct)
	}
	return resp, nil
}
