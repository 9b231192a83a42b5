package smile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"smile-design-server/modules/common/config"
)

type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler creates a handler backed by a fresh Service.
func NewHandler(cfg *config.Config) *Handler {
	h := &Handler{
		service:  NewService(cfg),
		maxBytes: 10 << 20,
	}
	if cfg != nil && cfg.MaxRequestBytes > 0 {
		h.maxBytes = cfg.MaxRequestBytes
	}
	return h
}

// RegisterRoutes wires the smile endpoints.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/smile").Subrouter()
	api.Use(RequestIDMiddleware)
	api.HandleFunc("/validate", h.HandleValidate).Methods("POST", "OPTIONS")
	api.HandleFunc("/prompt", h.HandlePrompt).Methods("POST", "OPTIONS")
}

// RequestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// HandleValidate - POST /api/smile/validate
// 옵션만 검증해서 isValid/errors 반환 (항상 200)
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	opts, err := h.readOptions(w, r)
	if err != nil {
		log.Printf("❌ [Smile] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, PromptResponse{
			ErrorMessage: "Invalid request format",
			ErrorCode:    ErrCodeInvalidRequest,
		})
		return
	}

	result := h.service.Validate(r.Context(), opts)
	writeJSON(w, http.StatusOK, ValidateResponse{
		RequestID:        RequestIDFrom(r.Context()),
		ValidationResult: result,
	})
}

// HandlePrompt - POST /api/smile/prompt
// 검증 후 프롬프트 문서를 컴파일해서 반환
func (h *Handler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	opts, err := h.readOptions(w, r)
	if err != nil {
		log.Printf("❌ [Smile] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, PromptResponse{
			ErrorMessage: "Invalid request format",
			ErrorCode:    ErrCodeInvalidRequest,
		})
		return
	}

	prepared, result := h.service.Prepare(r.Context(), opts)
	if prepared == nil {
		writeJSON(w, http.StatusBadRequest, PromptResponse{
			RequestID:    RequestIDFrom(r.Context()),
			Errors:       result.Errors,
			ErrorMessage: "Invalid treatment options",
			ErrorCode:    ErrCodeInvalidOptions,
		})
		return
	}

	writeJSON(w, http.StatusOK, newPromptResponse(prepared))
}

// readOptions builds a fresh OptionSet from a JSON, multipart or urlencoded body.
func (h *Handler) readOptions(w http.ResponseWriter, r *http.Request) (OptionSet, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("content type: %w", err)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if body == nil {
			return nil, errors.New("json body must be an object")
		}
		return OptionsFromMap(body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return OptionsFromValues(url.Values(r.MultipartForm.Value)), nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return OptionsFromValues(r.Form), nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ [Smile] Failed to encode response: %v", err)
	}
}
