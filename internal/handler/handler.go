package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/helloca/ai-service/internal/logging"
	"github.com/helloca/ai-service/internal/models"
	"github.com/helloca/ai-service/internal/validator"
)

const (
	// ResponsePrefix is prepended to every echoed chat message.
	ResponsePrefix = "AI Response to: "
	// RunningMessage is the body of GET /.
	RunningMessage = "HelloCA AI Service is running"
	// MaxBodyBytes caps the size of a chat request body.
	MaxBodyBytes = 1 << 20
)

// Handler serves the public HTTP routes. It holds no state.
type Handler struct{}

// NewHandler returns a ready Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, models.RootResponse{Message: RunningMessage})
}

// Chat handles POST /api/chat. The reply echoes the message behind a fixed
// prefix and passes context through untouched.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, models.ErrorResponse{Detail: "Request Entity Too Large"})
			return
		}
		h.RenderError(w, r, &InternalError{Err: fmt.Errorf("read request body: %w", err)})
		return
	}

	req, err := validator.DecodeChatRequest(body)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, Reply(req))
}

// NotFound answers unknown paths with the same detail body as other errors.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, models.ErrorResponse{Detail: "Not Found"})
}

// MethodNotAllowed answers known paths hit with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusMethodNotAllowed, models.ErrorResponse{Detail: "Method Not Allowed"})
}

// Reply builds the echo response for req.
func Reply(req *models.ChatRequest) models.ChatResponse {
	var message string
	if req.Message != nil {
		message = *req.Message
	}
	return models.ChatResponse{
		Response: ResponsePrefix + message,
		Context:  req.Context,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logging.Entry(r.Context()).WithError(err).Error("failed to encode response")
	}
}
