package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/finsnap/finsnap-go/core"
)

// TransportScript is one canned exchange: the response (or error) the fake
// transport returns for the next request it sees.
type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// FakeTransport replays scripted responses in order and records every
// request it receives. When the scripts run out it repeats the last one.
type FakeTransport struct {
	mu       sync.Mutex
	kind     string
	scripts  []TransportScript
	requests []core.TransportRequest
}

func NewFakeTransport(scripts ...TransportScript) *FakeTransport {
	return &FakeTransport{
		kind:    "fake",
		scripts: append([]TransportScript(nil), scripts...),
	}
}

func (t *FakeTransport) Kind() string {
	if t == nil {
		return ""
	}
	return t.kind
}

func (t *FakeTransport) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if t == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport is nil")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests = append(t.requests, cloneTransportRequest(req))
	index := len(t.requests) - 1
	if index < len(t.scripts) {
		script := t.scripts[index]
		return cloneTransportResponse(script.Response), script.Err
	}
	if len(t.scripts) > 0 {
		last := t.scripts[len(t.scripts)-1]
		return cloneTransportResponse(last.Response), last.Err
	}
	return core.TransportResponse{
		StatusCode: 200,
		Headers:    map[string]string{},
	}, nil
}

// Append adds more scripted exchanges after construction.
func (t *FakeTransport) Append(scripts ...TransportScript) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts = append(t.scripts, scripts...)
}

// Requests returns a copy of every request seen so far, in order.
func (t *FakeTransport) Requests() []core.TransportRequest {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(t.requests))
	for _, item := range t.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// RequestCount reports how many requests reached the transport, optionally
// filtered by path prefix.
func (t *FakeTransport) RequestCount(pathPrefix string) int {
	count := 0
	for _, req := range t.Requests() {
		if pathPrefix == "" || strings.HasPrefix(req.Path, pathPrefix) {
			count++
		}
	}
	return count
}

// JSONScript builds a scripted exchange whose body is the JSON encoding of
// payload.
func JSONScript(statusCode int, payload any) TransportScript {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("devkit: marshal scripted payload: %v", err))
	}
	return TransportScript{
		Response: core.TransportResponse{
			StatusCode: statusCode,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       body,
		},
	}
}

// ErrorScript builds a scripted exchange that fails with err before any
// response is produced.
func ErrorScript(err error) TransportScript {
	return TransportScript{Err: err}
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:    in.Method,
		Path:      in.Path,
		Headers:   map[string]string{},
		Query:     map[string]string{},
		Body:      append([]byte(nil), in.Body...),
		Timeout:   in.Timeout,
		Anonymous: in.Anonymous,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	return out
}

var _ core.Transport = (*FakeTransport)(nil)
