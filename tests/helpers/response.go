package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// DecodeJSONBody decodes an HTTP response body into out and closes it.
func DecodeJSONBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", string(body), err)
	}
}

// RequireStatus fails the test when the response status differs.
func RequireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("Expected status %d, got %d", want, resp.StatusCode)
	}
}
