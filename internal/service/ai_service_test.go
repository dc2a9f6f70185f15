package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aicourse_backend/internal/config"
	"aicourse_backend/internal/util"
)

func chatResponse(content string) string {
	resp := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"role": "assistant", "content": content},
			},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestGenerateJSONSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(chatResponse(`{"courseName":"X","modules":[]}`)))
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model", TimeoutSeconds: 5})
	obj, err := svc.GenerateJSON(context.Background(), "sys", "usr", "course_outline", outlineSchema)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["courseName"] != "X" {
		t.Errorf("parsed object = %v", obj)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
	rf, ok := gotBody["response_format"].(map[string]interface{})
	if !ok || rf["type"] != "json_schema" {
		t.Fatalf("response_format = %v", gotBody["response_format"])
	}
	js, ok := rf["json_schema"].(map[string]interface{})
	if !ok || js["name"] != "course_outline" || js["strict"] != true {
		t.Errorf("json_schema = %v", rf["json_schema"])
	}
	msgs, ok := gotBody["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
}

func TestGenerateJSONRequiresSchema(t *testing.T) {
	svc := NewAIService(config.AIConfig{BaseURL: "http://unused", Model: "m"})
	if _, err := svc.GenerateJSON(context.Background(), "s", "u", "", nil); err == nil {
		t.Fatal("missing schema should fail before any request")
	}
}

func TestGenerateJSONStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"throttled", http.StatusTooManyRequests, util.ErrRateLimited},
		{"server error", http.StatusInternalServerError, util.ErrUpstreamUnavailable},
		{"bad gateway", http.StatusBadGateway, util.ErrUpstreamUnavailable},
		{"rejected", http.StatusBadRequest, util.ErrUpstreamBadRequest},
		{"unauthorized", http.StatusUnauthorized, util.ErrUpstreamBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			svc := NewAIService(config.AIConfig{BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
			_, err := svc.GenerateJSON(context.Background(), "s", "u", "n", map[string]interface{}{"type": "object"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateJSONMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(chatResponse("not json at all")))
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	if _, err := svc.GenerateJSON(context.Background(), "s", "u", "n", map[string]interface{}{"type": "object"}); err == nil {
		t.Fatal("malformed model output should fail")
	}
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, hasFormat := body["response_format"]; hasFormat {
			t.Error("plain text request must not carry response_format")
		}
		w.Write([]byte(chatResponse("hello")))
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	got, err := svc.GenerateText(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hello" {
		t.Errorf("content = %q", got)
	}
}

func TestGenerateTextNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	if _, err := svc.GenerateText(context.Background(), "s", "u"); err == nil {
		t.Fatal("empty choices should fail")
	}
}
