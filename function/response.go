package function

// BinaryResponseName is the file name given to raw bytes returned from a
// handler.
const BinaryResponseName = "e5e-binary-response.blob"

// Response is what a handler returns for one invocation.
type Response struct {
	Data            any          `json:"data,omitempty"`
	Type            ResponseType `json:"type"`
	Status          int          `json:"status,omitempty"`
	ResponseHeaders Headers      `json:"response_headers,omitempty"`
}

// Text returns a text response.
func Text(s string) *Response {
	return &Response{Data: s, Type: ResponseText}
}

// Binary returns a binary response carrying f.
func Binary(f FileData) *Response {
	return &Response{Data: f, Type: ResponseBinary}
}

// Object returns a response carrying v as a structured JSON value.
func Object(v any) *Response {
	return &Response{Data: v, Type: ResponseObject}
}

// From infers the response type from v: strings become text, raw bytes and
// files become binary, everything else an object.
func From(v any) *Response {
	switch d := v.(type) {
	case string:
		return Text(d)
	case []byte:
		f := NewFileData(d)
		f.Name = BinaryResponseName
		f.ContentType = "application/octet-stream"
		return Binary(f)
	case FileData:
		return Binary(d)
	case *FileData:
		if d == nil {
			return Object(nil)
		}
		return Binary(*d)
	case *Response:
		return d
	default:
		return Object(v)
	}
}

// WithStatus sets the HTTP status code and returns r.
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WithHeader appends a response header and returns r.
func (r *Response) WithHeader(name, value string) *Response {
	if r.ResponseHeaders == nil {
		r.ResponseHeaders = Headers{}
	}
	r.ResponseHeaders.Add(name, value)
	return r
}
