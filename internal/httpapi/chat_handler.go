package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"chatconnect/internal/domain"
	"chatconnect/internal/service"
)

const maxBodyBytes = 1 << 20

type chatHandler struct {
	svc    domain.ChatService
	logger zerolog.Logger
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []domain.Message `json:"messages"`
}

// Chat handles POST /api/chat.
func (h *chatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	reply, err := h.svc.Reply(r.Context(), req.Messages)
	if errors.Is(err, service.ErrNoMessages) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "messages must not be empty"})
		return
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("chat reply failed")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
