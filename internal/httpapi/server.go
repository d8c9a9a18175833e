// Package httpapi exposes the engine over HTTP. The surface is deliberately
// small: POST /generate runs one turn, GET /version reports the fixed build
// identity, and the health and metrics endpoints serve operations. Response
// bodies contain no timestamps, request ids, or any other nondeterministic
// field.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/engine"
	"github.com/indiandesillm/inference-core/internal/health"
	"github.com/indiandesillm/inference-core/internal/observe"
)

// Build identity served by GET /version. Static by contract.
const (
	EngineName    = "indian-desi-llm-inference-core"
	EngineVersion = "1.0.0"
	ReleaseStage  = "B20"
)

// maxPromptChars bounds the prompt length in characters, not bytes.
const maxPromptChars = 10000

// defaultSessionID groups requests that carry no X-Session-ID header.
const defaultSessionID = "default"

// Server wires the engine into HTTP handlers.
type Server struct {
	log    *slog.Logger
	engine *engine.Engine
	health *health.Handler
}

// New creates a server around eng. hh may be nil when health endpoints are
// not wanted (tests).
func New(log *slog.Logger, eng *engine.Engine, hh *health.Handler) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, engine: eng, health: hh}
}

// Handler returns the full route set wrapped in the observability
// middleware.
func (s *Server) Handler(m *observe.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}
	if m == nil {
		return mux
	}
	return observe.Middleware(m)(mux)
}

type generateRequest struct {
	Prompt        string `json:"prompt"`
	EmotionalLang string `json:"emotional_lang"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Request body unreadable or too large.",
			Code:  "INVALID_INPUT",
		})
		return
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	var req generateRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Request body must be a JSON object with prompt and optional emotional_lang.",
			Code:  "INVALID_INPUT",
		})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Request body must contain a single JSON object.",
			Code:  "INVALID_INPUT",
		})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Field prompt must be a non-empty string.",
			Code:  "INVALID_INPUT",
		})
		return
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptChars {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Field prompt exceeds the 10000 character limit.",
			Code:  "INVALID_INPUT",
		})
		return
	}

	lang := contract.LangEN
	switch req.EmotionalLang {
	case "", "en":
	case "hi":
		lang = contract.LangHI
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Field emotional_lang must be \"en\" or \"hi\".",
			Code:  "INVALID_INPUT",
		})
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	resp, err := s.engine.Generate(r.Context(), engine.Request{
		Prompt:        req.Prompt,
		EmotionalLang: lang,
		SessionID:     sessionID,
	})
	if err != nil {
		s.log.Error("turn failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Inference failed.",
			Code:  "INFERENCE_FAILED",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type versionResponse struct {
	EngineName    string `json:"engine_name"`
	EngineVersion string `json:"engine_version"`
	ReleaseStage  string `json:"release_stage"`
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		EngineName:    EngineName,
		EngineVersion: EngineVersion,
		ReleaseStage:  ReleaseStage,
	})
}

// writeJSON encodes v with the given status code. Encoding failures after
// the header is written can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Error("response encode failed", "error", err)
	}
}
