package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// Envelope mirrors the JSON response wrapper every endpoint returns.
type Envelope struct {
	Status    int             `json:"status"`
	Message   json.RawMessage `json:"message"`
	OK        bool            `json:"ok"`
	Timestamp int64           `json:"timestamp"`
	URL       string          `json:"url"`
	Type      string          `json:"type,omitempty"`
}

// AssertStatus verifies the HTTP status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// ParseJSON decodes the response body into the target
func ParseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	defer resp.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// ParseEnvelope decodes the response envelope and unmarshals its
// message payload into target when target is non-nil.
func ParseEnvelope(t *testing.T, resp *http.Response, target interface{}) *Envelope {
	t.Helper()
	var env Envelope
	ParseJSON(t, resp, &env)
	if target != nil && len(env.Message) > 0 {
		if err := json.Unmarshal(env.Message, target); err != nil {
			t.Fatalf("Failed to decode envelope message: %v. Message: %s", err, string(env.Message))
		}
	}
	return &env
}
