package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusRequestEntityTooLarge, "too big", map[string]any{"rule": "size"})

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["rule"] != "size" || body["detail"] != "too big" || body["title"] != "Request Entity Too Large" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["type"] == "about:blank" {
		t.Errorf("expected a specific type URI for 413")
	}
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"id": "f1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Body.String() != `{"id":"f1"}` {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, make(chan int))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unencodable payload: status = %d, want 500", rec.Code)
	}
}

func TestOptionalString(t *testing.T) {
	var req struct {
		Name    OptionalString `json:"name"`
		OwnerID OptionalString `json:"owner_id"`
		Mime    OptionalString `json:"mime_type"`
	}
	if err := json.Unmarshal([]byte(`{"name":"a.txt","owner_id":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !req.Name.Present || req.Name.Value == nil || *req.Name.Value != "a.txt" {
		t.Errorf("name = %+v", req.Name)
	}
	if !req.OwnerID.IsNull() {
		t.Errorf("owner_id should be explicit null: %+v", req.OwnerID)
	}
	if req.Mime.Present {
		t.Errorf("mime_type should be absent")
	}

	if err := json.Unmarshal([]byte(`{"name":42}`), &req); err == nil {
		t.Error("expected error for non-string value")
	}
}
