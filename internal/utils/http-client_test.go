package utils

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMediaHTTPClientDecodesGzip(t *testing.T) {
	payload := []byte("gzipped media bytes")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write(payload)
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	client := NewMediaHTTPClient(HTTPClientConfig{})
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Errorf("Expecting decompressed payload, got %q", body)
	}
	if resp.Header.Get("Content-Encoding") != "" {
		t.Error("Content-Encoding header must be stripped after decoding")
	}
	if resp.ContentLength != -1 {
		t.Errorf("Expecting unknown content length after decoding, got %d", resp.ContentLength)
	}
}

func TestMediaHTTPClientHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "custom-agent" {
			t.Errorf("Expecting user agent %q, got %q", "custom-agent", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token123" {
			t.Errorf("Expecting authorization header, got %q", got)
		}
	}))
	defer ts.Close()

	client := NewMediaHTTPClient(HTTPClientConfig{UserAgent: "custom-agent"})
	client.SetHeader("Authorization", "Bearer token123")
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
}
