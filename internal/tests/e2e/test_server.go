package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wabdevconsult/batuta/internal/app"
	"github.com/wabdevconsult/batuta/internal/config"
)

// TestServer is one run of the console: a container restored from storage
// and its router behind an httptest server
type TestServer struct {
	Container *app.Container
	Server    *httptest.Server
	Client    *http.Client
}

// StartConsole builds a console on cfg the way main does, minus the listener
func StartConsole(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	c.Restore(ctx)

	ts := &TestServer{
		Container: c,
		Server:    httptest.NewServer(app.NewRouter(c)),
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
	t.Cleanup(ts.Stop)
	return ts
}

// Stop closes the listener and the container. Safe to call twice.
func (s *TestServer) Stop() {
	if s.Server != nil {
		s.Server.Close()
		s.Server = nil
	}
	if s.Container != nil {
		s.Container.Close()
		s.Container = nil
	}
}

// Response is a decoded console reply
type Response struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

// Data returns the "data" member as a map
func (r *Response) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

func (s *TestServer) Do(t *testing.T, method, path string, body any) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, s.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := &Response{Status: resp.StatusCode, Raw: raw, Body: map[string]any{}}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}
