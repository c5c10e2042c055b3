package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rr := httptest.NewRecorder()

	JSON(rr, req, http.StatusCreated, "Contact created", map[string]int{"id": 7})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body["success"] != true || body["message"] != "Contact created" || body["request_id"] != "req-1" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if data, ok := body["data"].(map[string]any); !ok || data["id"] != float64(7) {
		t.Fatalf("unexpected data: %+v", body["data"])
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Fatalf("expected timestamp, got %+v", body)
	}
}

func TestJSONNullData(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, httptest.NewRequest(http.MethodPost, "/x", nil), http.StatusOK, "done", nil)

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if v, ok := body["data"]; !ok || v != nil {
		t.Fatalf("expected explicit null data, got %+v", body)
	}
}

func TestErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	rr := httptest.NewRecorder()

	Error(rr, req, http.StatusBadRequest, "BAD_REQUEST", "Validation failed", []string{"email: invalid"})

	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json, got %q", got)
	}
	var body struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		Code    string   `json:"code"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Success || body.Code != "BAD_REQUEST" || body.Message != "Validation failed" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "email: invalid" {
		t.Fatalf("unexpected errors: %+v", body.Errors)
	}
}

func TestErrorEmptyDetailsEncodeAsArray(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusNotFound, "NOT_FOUND", "Contact not found", nil)

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if errs, ok := body["errors"].([]any); !ok || len(errs) != 0 {
		t.Fatalf("expected empty errors array, got %+v", body["errors"])
	}
}

func TestErrorProblemDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Accept", "application/problem+json")
	req.Header.Set("X-Request-Id", "req-2")
	rr := httptest.NewRecorder()

	Error(rr, req, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", nil)

	if got := rr.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected application/problem+json, got %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode problem details: %v", err)
	}
	want := map[string]any{
		"type":       "urn:problem:debt-ledger:token-expired",
		"title":      "Expired Token",
		"status":     float64(http.StatusUnauthorized),
		"code":       "TOKEN_EXPIRED",
		"instance":   "/api/v1/auth/me",
		"request_id": "req-2",
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s: got %+v want %+v", k, body[k], v)
		}
	}
}

func TestErrorContentNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		wantCT string
	}{
		{name: "jsonThenProblem", accept: "application/json, application/problem+json", wantCT: "application/problem+json"},
		{name: "problemWithQuality", accept: "application/problem+json;q=0.5", wantCT: "application/problem+json"},
		{name: "problemWithQualityZero", accept: "application/problem+json;q=0", wantCT: "application/json"},
		{name: "problemWithQualityZeroDecimal", accept: "application/problem+json; q=0.000", wantCT: "application/json"},
		{name: "missingAccept", accept: "", wantCT: "application/json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			rr := httptest.NewRecorder()
			Error(rr, req, http.StatusBadRequest, "BAD_REQUEST", "bad input", nil)
			if got := rr.Header().Get("Content-Type"); got != tc.wantCT {
				t.Fatalf("expected %q, got %q", tc.wantCT, got)
			}
		})
	}
}

func TestProblemTitleFallsBackToStatusText(t *testing.T) {
	if got := problemTitle("DUPLICATE_EMAIL", http.StatusConflict); got != "Conflict" {
		t.Fatalf("expected Conflict, got %q", got)
	}
	if got := problemTitle("", 799); got != "Error" {
		t.Fatalf("expected Error, got %q", got)
	}
}
