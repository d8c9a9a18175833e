package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/engine"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store, err := contract.Load("../../configs/voice_contract.yaml", "1.0.0")
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.Config{Logger: log, Store: store})
	return New(log, eng, nil).Handler(nil)
}

func postGenerate(t *testing.T, h http.Handler, body, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var e struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return e.Error, e.Code
}

func TestGenerate_OK(t *testing.T) {
	h := newTestHandler(t)
	rec := postGenerate(t, h, `{"prompt":"I feel really heavy today","emotional_lang":"en"}`, "s1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	var resp struct {
		ResponseText string `json:"response_text"`
		Trace        struct {
			Turn       int     `json:"turn"`
			Skeleton   *string `json:"skeleton"`
			ReplayHash string  `json:"replay_hash"`
		} `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := "That sounds really heavy. It makes sense you feel this way. If you want, you can tell me more."
	if resp.ResponseText != want {
		t.Errorf("response_text = %q, want %q", resp.ResponseText, want)
	}
	if resp.Trace.Turn != 1 || resp.Trace.Skeleton == nil || *resp.Trace.Skeleton != "A" {
		t.Errorf("trace = %+v", resp.Trace)
	}
	if !strings.HasPrefix(resp.Trace.ReplayHash, "sha256:") {
		t.Errorf("replay_hash = %q", resp.Trace.ReplayHash)
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"prompt":`},
		{"unknown field", `{"prompt":"hi","extra":true}`},
		{"trailing garbage", `{"prompt":"hi"} {"prompt":"again"}`},
		{"empty prompt", `{"prompt":""}`},
		{"whitespace prompt", `{"prompt":"   "}`},
		{"missing prompt", `{"emotional_lang":"en"}`},
		{"bad language", `{"prompt":"hi","emotional_lang":"fr"}`},
		{"prompt too long", `{"prompt":"` + strings.Repeat("a", 10001) + `"}`},
	}
	for _, tt := range tests {
		rec := postGenerate(t, h, tt.body, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
			continue
		}
		if _, code := decodeError(t, rec); code != "INVALID_INPUT" {
			t.Errorf("%s: code = %q, want INVALID_INPUT", tt.name, code)
		}
	}
}

func TestGenerate_PromptLimitCountsRunes(t *testing.T) {
	h := newTestHandler(t)

	// Exactly 10000 multibyte runes passes the limit.
	prompt := strings.Repeat("द", 10000)
	rec := postGenerate(t, h, `{"prompt":"`+prompt+`"}`, "runes")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for a 10000-rune prompt", rec.Code)
	}
}

func TestGenerate_SessionHeaderDefault(t *testing.T) {
	h := newTestHandler(t)

	// Two headerless requests share the default session: the turn advances.
	body := `{"prompt":"I feel really heavy today"}`
	postGenerate(t, h, body, "")
	rec := postGenerate(t, h, body, "")

	var resp struct {
		Trace struct {
			Turn int `json:"turn"`
		} `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Trace.Turn != 2 {
		t.Errorf("turn = %d, want 2 (shared default session)", resp.Trace.Turn)
	}

	// A distinct session id starts fresh.
	rec = postGenerate(t, h, body, "other")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Trace.Turn != 1 {
		t.Errorf("turn = %d, want 1 for a new session", resp.Trace.Turn)
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("GET", "/generate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestVersion(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("GET", "/version", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var v struct {
		EngineName    string `json:"engine_name"`
		EngineVersion string `json:"engine_version"`
		ReleaseStage  string `json:"release_stage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.EngineName != EngineName || v.EngineVersion != EngineVersion || v.ReleaseStage != ReleaseStage {
		t.Errorf("version = %+v", v)
	}
}

func TestMetricsEndpointRegistered(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
