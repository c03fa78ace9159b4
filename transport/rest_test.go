package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/finsnap/finsnap-go/core"
)

type stubDoer struct {
	requests []*http.Request
	status   int
	body     string
	err      error
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return nil, d.err
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(d.body))),
	}, nil
}

type staticTokenSource struct {
	token string
	err   error
}

func (s staticTokenSource) AccessToken(context.Context) (string, error) {
	return s.token, s.err
}

func TestRESTAdapterInjectsBearerToken(t *testing.T) {
	doer := &stubDoer{body: `{}`}
	adapter := NewRESTAdapter("https://api.finsnap.cl", staticTokenSource{token: "acc_1"}, doer)

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodGet,
		Path:   "/connections",
	})
	if err != nil {
		t.Fatalf("rest request: %v", err)
	}
	if len(doer.requests) != 1 {
		t.Fatalf("expected one http request, got %d", len(doer.requests))
	}
	req := doer.requests[0]
	if got := req.Header.Get("Authorization"); got != "Bearer acc_1" {
		t.Fatalf("expected bearer header, got %q", got)
	}
	if req.URL.String() != "https://api.finsnap.cl/connections" {
		t.Fatalf("unexpected url %q", req.URL.String())
	}
}

func TestRESTAdapterAnonymousSkipsToken(t *testing.T) {
	doer := &stubDoer{body: `{}`}
	adapter := NewRESTAdapter("https://api.finsnap.cl", staticTokenSource{token: "acc_1"}, doer)

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:    http.MethodPost,
		Path:      "auth/login",
		Anonymous: true,
	})
	if err != nil {
		t.Fatalf("rest request: %v", err)
	}
	req := doer.requests[0]
	if got := req.Header.Get("Authorization"); got != "" {
		t.Fatalf("expected no bearer header on anonymous request, got %q", got)
	}
	if req.URL.Path != "/auth/login" {
		t.Fatalf("expected leading slash to be added, got %q", req.URL.Path)
	}
}

func TestRESTAdapterQueryAndHeaders(t *testing.T) {
	doer := &stubDoer{body: `{}`}
	adapter := NewRESTAdapter("https://api.finsnap.cl", nil, doer)

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Path:    "/connections",
		Query:   map[string]string{"status": "active"},
		Headers: map[string]string{"X-Request-ID": "req_1"},
	})
	if err != nil {
		t.Fatalf("rest request: %v", err)
	}
	req := doer.requests[0]
	if got := req.URL.Query().Get("status"); got != "active" {
		t.Fatalf("expected query param to pass through, got %q", got)
	}
	if got := req.Header.Get("X-Request-ID"); got != "req_1" {
		t.Fatalf("expected custom header to pass through, got %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected default json content type, got %q", got)
	}
}

func TestRESTAdapterNetworkFailure(t *testing.T) {
	doer := &stubDoer{err: errors.New("dial tcp: connection refused")}
	adapter := NewRESTAdapter("https://api.finsnap.cl", nil, doer)

	_, err := adapter.Do(context.Background(), core.TransportRequest{Path: "/connections"})
	if err == nil {
		t.Fatalf("expected network error")
	}
	if !core.HasTextCode(err, core.ClientErrorNetwork) {
		t.Fatalf("expected %s, got %v", core.ClientErrorNetwork, err)
	}
}

func TestDecodeResponseSuccess(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	res := core.TransportResponse{StatusCode: http.StatusOK, Body: []byte(`{"name":"SII Empresa"}`)}
	if err := DecodeResponse(res, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Name != "SII Empresa" {
		t.Fatalf("expected decoded body, got %+v", out)
	}
}

func TestDecodeResponseErrorMapping(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		textCode string
	}{
		{http.StatusUnauthorized, `{"detail":"invalid credentials"}`, core.ClientErrorAuth},
		{http.StatusConflict, `{"detail":"sync already in progress"}`, core.ClientErrorConflict},
		{http.StatusBadRequest, `{"detail":"name is required"}`, core.ClientErrorBadInput},
		{http.StatusNotFound, `{"detail":"connection not found"}`, core.ClientErrorNotFound},
		{http.StatusBadGateway, ``, core.ClientErrorNetwork},
	}
	for _, tc := range cases {
		err := DecodeResponse(core.TransportResponse{StatusCode: tc.status, Body: []byte(tc.body)}, nil)
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if !core.HasTextCode(err, tc.textCode) {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.textCode, err)
		}
	}
}
