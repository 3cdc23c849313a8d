package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type echoPayload struct {
	Value int `json:"value"`
}

func TestClientGetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/items" {
			t.Errorf("path = %s, want /items", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"value":1},{"value":2}]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTimeout(5*time.Second))
	resp, err := client.Get(context.Background(), "/items")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var items []echoPayload
	if err := resp.JSON(&items); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if len(items) != 2 || items[0].Value != 1 || items[1].Value != 2 {
		t.Fatalf("items = %+v", items)
	}
}

func TestClientGetRejectsRelativeURLWithoutBase(t *testing.T) {
	client := NewClient()
	if _, err := client.Get(context.Background(), "/items"); err == nil {
		t.Fatal("expected error for relative URL with no base")
	}
}

func TestClientPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body echoPayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.Value != 7 {
			t.Errorf("value = %d, want 7", body.Value)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"value":7}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithBearerToken("tok"), WithUserAgent("test-agent"))
	resp, err := client.Post(context.Background(), "/items", echoPayload{Value: 7})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var got echoPayload
	if err := resp.JSON(&got); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got.Value != 7 {
		t.Fatalf("got = %+v", got)
	}
}

func TestClientResolveURLAcceptsAbsoluteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":9}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Get(context.Background(), server.URL+"/absolute")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got echoPayload
	if err := resp.JSON(&got); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got.Value != 9 {
		t.Fatalf("got = %+v", got)
	}
}
