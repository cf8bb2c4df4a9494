package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arenoe-studio/gmailsense/internal/domain"
)

func testInput() Input {
	return Input{
		Subject: "Your OTP code",
		From:    "noreply@bank.example",
		Date:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Body:    "Your code is 123456",
	}
}

// chatOK wraps an inner content string in the chat-completions envelope.
func chatOK(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(url string) *Client {
	return New("test-key", Options{
		APIURL:  url,
		Model:   "google/gemini-2.5-flash-lite",
		Referer: "https://example.com",
		Title:   "test",
	}, nil)
}

func TestClassify_Success(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, chatOK(`{"category":"PRIORITY","subcategory":"security","confidence":0.95,"reason":"login alert"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Classify(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got.Category != domain.CategoryPriority {
		t.Errorf("Category = %q, want PRIORITY", got.Category)
	}
	if got.Subcategory != "security" {
		t.Errorf("Subcategory = %q, want security", got.Subcategory)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
	if gotReq.Model != "google/gemini-2.5-flash-lite" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.Temperature != 0.1 {
		t.Errorf("request temperature = %v, want 0.1", gotReq.Temperature)
	}
	if gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %q, want json_object", gotReq.ResponseFormat.Type)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
}

func TestClassify_NullSubcategoryNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatOK(`{"category":"GENERAL","subcategory":"null","confidence":0.7,"reason":"info"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Classify(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got.Subcategory != "" {
		t.Errorf("Subcategory = %q, want empty for literal null", got.Subcategory)
	}
}

func TestClassify_Non200IsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Classify(context.Background(), testInput())
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Classify() error = %v, want *RemoteError", err)
	}
	if remoteErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", remoteErr.StatusCode)
	}
	if remoteErr.Body == "" {
		t.Error("RemoteError should carry the raw response body")
	}
}

func TestClassify_UnparsableContentFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatOK("I think this is probably a newsletter."))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Classify(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Classify() should not fail on unparsable content, got: %v", err)
	}
	if got.Category != domain.CategoryGeneral {
		t.Errorf("Category = %q, want safe-default GENERAL", got.Category)
	}
	if got.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", got.Confidence)
	}
	if got.Reason != "parse error" {
		t.Errorf("Reason = %q, want %q", got.Reason, "parse error")
	}
}

func TestClassify_MalformedEnvelopeIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Classify(context.Background(), testInput()); err == nil {
		t.Fatal("Classify() should fail when the response envelope is not JSON")
	}
}

func TestClassify_EmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Classify(context.Background(), testInput()); err == nil {
		t.Fatal("Classify() should fail when the response has no choices")
	}
}
