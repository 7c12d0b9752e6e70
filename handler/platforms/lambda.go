package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"e5e/codec"
	"e5e/function"
	"e5e/handler"
	"e5e/observability"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

const (
	lambdaComponent = "lambda"

	// HTTPContextType is the context type of requests built from API Gateway
	// HTTP events.
	HTTPContextType = "http"
)

// ErrUnsupportedEvent is returned for Lambda payloads that are neither an
// e5e request envelope nor an API Gateway HTTP event.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// LambdaAdapter serves a handler through the AWS Lambda runtime API. It
// accepts the same request envelope as the stdio loop, as well as API
// Gateway HTTP API (payload 2.0) events.
type LambdaAdapter struct {
	handler *handler.Handler
	logger  observability.Logger
	metrics observability.Metrics
}

// NewLambdaAdapter creates a new Lambda adapter.
func NewLambdaAdapter(h *handler.Handler, provider observability.Provider) *LambdaAdapter {
	return &LambdaAdapter{
		handler: h,
		logger:  provider.Logger(lambdaComponent),
		metrics: provider.Metrics(lambdaComponent),
	}
}

// Start begins the Lambda runtime handler. It never returns.
func (a *LambdaAdapter) Start() {
	lambda.Start(a.HandleEvent)
}

// probe holds the fields used to tell the supported payloads apart.
type probe struct {
	Event    json.RawMessage `json:"event"`
	RouteKey string          `json:"routeKey"`
	RawPath  string          `json:"rawPath"`
}

// HandleEvent routes a raw Lambda payload to the handler.
func (a *LambdaAdapter) HandleEvent(ctx context.Context, event json.RawMessage) (json.RawMessage, error) {
	ctx = observability.WithInvocationID(ctx, invocationID(ctx))
	a.metrics.RecordPayloadSize("in", int64(len(event)))

	var p probe
	if err := json.Unmarshal(event, &p); err != nil {
		a.metrics.RecordError("decode", "decode_failure")
		return nil, &codec.DecodeError{Line: string(event), Err: err}
	}

	var (
		out []byte
		err error
	)
	switch {
	case len(p.Event) > 0:
		out, err = a.handleEnvelope(ctx, event)
	case p.RouteKey != "" || p.RawPath != "":
		out, err = a.handleHTTP(ctx, event)
	default:
		a.metrics.RecordError("decode", "unsupported_event")
		return nil, ErrUnsupportedEvent
	}
	if err != nil {
		return nil, err
	}

	a.metrics.RecordPayloadSize("out", int64(len(out)))
	return out, nil
}

func (a *LambdaAdapter) handleEnvelope(ctx context.Context, event json.RawMessage) ([]byte, error) {
	req, err := codec.DecodeRequest(string(event))
	if err != nil {
		a.logger.Error(ctx, "Failed to decode request", err, nil)
		a.metrics.RecordError("decode", "decode_failure")
		return nil, err
	}

	resp, err := a.handler.Handle(ctx, req)
	if err != nil {
		a.metrics.RecordError("invoke", "function_execution")
		return nil, &FunctionExecutionError{Request: req, Err: err}
	}

	out, err := codec.EncodeResponse(resp)
	if err != nil {
		a.logger.Error(ctx, "Failed to encode response", err, nil)
		a.metrics.RecordError("encode", "encode_failure")
		return nil, err
	}
	return []byte(out), nil
}

func (a *LambdaAdapter) handleHTTP(ctx context.Context, event json.RawMessage) ([]byte, error) {
	var httpEvent events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &httpEvent); err != nil {
		a.metrics.RecordError("decode", "decode_failure")
		return nil, &codec.DecodeError{Line: string(event), Err: err}
	}

	req, err := requestFromHTTP(httpEvent)
	if err != nil {
		a.logger.Error(ctx, "Failed to convert HTTP event", err, observability.Fields{
			"route_key": httpEvent.RouteKey,
		})
		a.metrics.RecordError("decode", "decode_failure")
		return json.Marshal(events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusBadRequest,
			Body:       http.StatusText(http.StatusBadRequest),
		})
	}

	var httpResp events.APIGatewayV2HTTPResponse
	resp, err := a.handler.Handle(ctx, req)
	if err == nil && resp == nil {
		err = errors.New("function returned no response")
	}
	if err == nil {
		httpResp, err = responseToHTTP(resp)
	}
	if err != nil {
		// API Gateway only understands a response object, so a failed
		// invocation becomes a 500 instead of a Lambda error.
		a.logger.Error(ctx, "Function execution failed", &FunctionExecutionError{Request: req, Err: err}, observability.Fields{
			"route_key": httpEvent.RouteKey,
		})
		a.metrics.RecordError("invoke", "function_execution")
		httpResp = events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       http.StatusText(http.StatusInternalServerError),
		}
	}

	return json.Marshal(httpResp)
}

// requestFromHTTP maps an API Gateway event onto an e5e request. Base64
// bodies become a binary event, JSON bodies an object event and everything
// else a text event.
func requestFromHTTP(e events.APIGatewayV2HTTPRequest) (function.Request, error) {
	headers := make(function.Headers, len(e.Headers))
	for k, v := range e.Headers {
		headers.Add(k, v)
	}
	if len(e.Cookies) > 0 {
		headers.Set("cookie", strings.Join(e.Cookies, "; "))
	}

	params := make(function.Params, len(e.QueryStringParameters))
	for k, v := range e.QueryStringParameters {
		params[k] = strings.Split(v, ",")
	}

	contentType, _ := headers.Get("content-type")

	var (
		dataType function.RequestDataType
		data     any
	)
	switch {
	case e.IsBase64Encoded:
		b, err := base64.StdEncoding.DecodeString(e.Body)
		if err != nil {
			return function.Request{}, fmt.Errorf("failed to decode body: %w", err)
		}
		file := function.NewFileData(b)
		file.Size = int64(len(b))
		file.ContentType = contentType
		dataType, data = function.RequestBinary, file
	case strings.HasPrefix(contentType, "application/json") && json.Valid([]byte(e.Body)):
		dataType, data = function.RequestObject, json.RawMessage(e.Body)
	default:
		dataType, data = function.RequestText, e.Body
	}

	req, err := function.NewRequest(dataType, data)
	if err != nil {
		return function.Request{}, err
	}
	req.Event.RequestHeaders = headers
	req.Event.Params = params
	req.Context.Type = HTTPContextType
	if e.RequestContext.TimeEpoch > 0 {
		req.Context.Date = time.UnixMilli(e.RequestContext.TimeEpoch).UTC()
	}

	return req, nil
}

// responseToHTTP renders resp as an API Gateway response. A zero status
// means 200.
func responseToHTTP(resp *function.Response) (events.APIGatewayV2HTTPResponse, error) {
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.Status,
		Headers:    make(map[string]string, len(resp.ResponseHeaders)),
	}
	if out.StatusCode == 0 {
		out.StatusCode = http.StatusOK
	}
	for k, v := range resp.ResponseHeaders {
		out.Headers[k] = strings.Join(v, ", ")
	}

	switch resp.Type {
	case function.ResponseText:
		s, ok := resp.Data.(string)
		if !ok {
			return out, fmt.Errorf("text response carries %T", resp.Data)
		}
		out.Body = s
		setDefaultHeader(out.Headers, "Content-Type", "text/plain; charset=utf-8")

	case function.ResponseBinary:
		var file function.FileData
		switch v := resp.Data.(type) {
		case function.FileData:
			file = v
		case *function.FileData:
			if v == nil {
				return out, errors.New("binary response carries a nil file")
			}
			file = *v
		default:
			return out, fmt.Errorf("binary response carries %T", resp.Data)
		}
		out.Body = base64.StdEncoding.EncodeToString(file.Bytes)
		out.IsBase64Encoded = true
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		setDefaultHeader(out.Headers, "Content-Type", contentType)

	default:
		b, err := json.Marshal(resp.Data)
		if err != nil {
			return out, err
		}
		out.Body = string(b)
		setDefaultHeader(out.Headers, "Content-Type", "application/json")
	}

	return out, nil
}

func setDefaultHeader(headers map[string]string, name, value string) {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return
		}
	}
	headers[name] = value
}

// invocationID prefers the Lambda request ID so logs can be correlated with
// CloudWatch.
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
