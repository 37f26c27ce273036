package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientCallExternal(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Connection") != "" {
			t.Errorf("hop-by-hop header Connection should have been stripped")
		}
		if r.Header.Get("X-Forwarded-For") != "203.0.113.9:54321" {
			t.Errorf("X-Forwarded-For = %q, want %q", r.Header.Get("X-Forwarded-For"), "203.0.113.9:54321")
		}
		if r.Header.Get("X-Forwarded-Host") != "original.example" {
			t.Errorf("X-Forwarded-Host = %q, want %q", r.Header.Get("X-Forwarded-Host"), "original.example")
		}
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("upstream body"))
	}))
	defer upstream.Close()

	client := NewHTTPClient(5 * time.Second)
	headers := http.Header{"Connection": {"keep-alive"}, "X-Custom": {"v"}}

	resp, err := client.CallExternal(context.Background(), upstream.URL, http.MethodGet, headers, nil, "203.0.113.9:54321", "original.example")
	if err != nil {
		t.Fatalf("CallExternal() error = %v", err)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
	if string(resp.Body) != "upstream body" {
		t.Errorf("Body = %q, want %q", resp.Body, "upstream body")
	}
	if resp.Headers.Get("X-Upstream") != "yes" {
		t.Errorf("expected X-Upstream header to be preserved")
	}
}

func TestHTTPClientCallExternalWithBody(t *testing.T) {
	var received string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		received = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	client := NewHTTPClient(5 * time.Second)
	_, err := client.CallExternal(context.Background(), upstream.URL, http.MethodPost, nil, []byte(`{"id":1}`), "", "")
	if err != nil {
		t.Fatalf("CallExternal() error = %v", err)
	}
	if received != `{"id":1}` {
		t.Errorf("upstream received %q, want %q", received, `{"id":1}`)
	}
}

func TestHTTPClientCallExternalUnreachable(t *testing.T) {
	client := NewHTTPClient(time.Second)
	_, err := client.CallExternal(context.Background(), "http://127.0.0.1:1", http.MethodGet, nil, nil, "", "")
	if err == nil {
		t.Fatal("expected error calling unreachable upstream")
	}
}

func TestRemoveHopByHopHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "keep-alive")
	h.Set("X-Custom", "value")
	removeHopByHopHeaders(h)

	if h.Get("Connection") != "" {
		t.Error("Connection header should be removed")
	}
	if h.Get("X-Custom") != "value" {
		t.Error("X-Custom header should be preserved")
	}
}
