package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codewithboateng/codesafe/internal/model"
)

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEnhance_SendsChatRequest(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"safe()"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, Model: "m1", APIKey: "sk-1"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Enhance(context.Background(), Request{
		Code:     "eval(x)",
		FileName: "a.js",
		Findings: []model.Finding{{Rule: "no-eval", Severity: model.SeverityHigh, Line: 1, Message: "eval"}},
	})
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if out != "safe()" {
		t.Fatalf("out = %q", out)
	}
	if auth != "Bearer sk-1" || got.Model != "m1" || len(got.Messages) != 2 {
		t.Fatalf("request = %+v auth=%q", got, auth)
	}
	if !strings.Contains(got.Messages[1].Content, "eval(x)") || !strings.Contains(got.Messages[1].Content, "line 1 [high] no-eval") {
		t.Fatalf("prompt = %q", got.Messages[1].Content)
	}
}

func TestEnhance_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"upstream 500", http.StatusInternalServerError, `{"error":"boom"}`, ErrUpstream},
		{"bad json", http.StatusOK, `not json`, ErrUpstream},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrEmptyResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			c, _ := New(Config{Endpoint: srv.URL})
			if _, err := c.Enhance(context.Background(), Request{Code: "x"}); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	c, _ := New(Config{Endpoint: "http://127.0.0.1:1"})
	if _, err := c.Enhance(context.Background(), Request{Code: "  "}); err == nil {
		t.Fatalf("empty code must fail before any request")
	}
}
