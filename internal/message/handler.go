package message

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/whisper-api/internal/auth"
	"github.com/redmonkez12/whisper-api/internal/httputil"
	"github.com/redmonkez12/whisper-api/internal/logging"
)

// Handler contains HTTP handlers for the message exchange endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SendMessageRequest represents the anonymous send request body
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// AcceptMessagesRequest represents the accepting toggle request body
type AcceptMessagesRequest struct {
	AcceptMessages bool `json:"acceptMessages"`
}

// MessagesResponse carries the owner's mailbox
type MessagesResponse struct {
	httputil.APIResponse
	Messages []*Message `json:"messages"`
}

// AcceptMessagesResponse carries the accepting flag
type AcceptMessagesResponse struct {
	httputil.APIResponse
	IsAcceptingMessages bool `json:"isAcceptingMessages"`
}

// SendMessage handles anonymous message delivery
// @Summary      Send an anonymous message
// @Description  Deliver a message to a username. No authentication and no sender identity.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body SendMessageRequest true "Recipient username and content"
// @Success      200 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Content out of bounds"
// @Failure      403 {object} httputil.APIResponse "Recipient not accepting messages"
// @Failure      404 {object} httputil.APIResponse "Unknown recipient"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/send-message [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid send-message request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	_, err := h.service.Send(r.Context(), req.Username, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrContentTooShort), errors.Is(err, ErrContentTooLong):
			httputil.RespondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrRecipientNotFound):
			httputil.RespondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrNotAccepting):
			httputil.RespondError(w, "User is not accepting messages", httputil.CodeNotAcceptingMessages, http.StatusForbidden)
		default:
			logger.Error("send message failed", "error", err.Error())
			httputil.RespondError(w, "Error sending message", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondSuccess(w, "Message sent successfully", http.StatusOK)
}

// GetMessages handles mailbox retrieval
// @Summary      List received messages
// @Description  Return the caller's messages, newest first. An empty mailbox is an empty list.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessagesResponse
// @Failure      401 {object} httputil.APIResponse
// @Failure      404 {object} httputil.APIResponse "Account no longer exists"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/get-messages [get]
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Not authenticated", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	messages, err := h.service.List(r.Context(), identity.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httputil.RespondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("list messages failed", "error", err.Error())
		httputil.RespondError(w, "Error fetching messages", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessagesResponse{
		APIResponse: httputil.APIResponse{Success: true, Message: "Messages fetched successfully"},
		Messages:    messages,
	}, http.StatusOK)
}

// DeleteMessage handles message deletion
// @Summary      Delete a message
// @Description  Delete one of the caller's messages by id. Messages owned by other accounts report not found.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageid path string true "Message id"
// @Success      200 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Malformed message id"
// @Failure      401 {object} httputil.APIResponse
// @Failure      404 {object} httputil.APIResponse "Message not found or not owned"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/delete-message/{messageid} [delete]
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Not authenticated", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	messageID, err := uuid.Parse(chi.URLParam(r, "messageid"))
	if err != nil {
		httputil.RespondError(w, "invalid message id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	err = h.service.Delete(r.Context(), identity.AccountID, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Message not found or already deleted", httputil.CodeMessageNotFound, http.StatusNotFound)
			return
		}
		logger.Error("delete message failed", "error", err.Error())
		httputil.RespondError(w, "Error deleting message", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "Message deleted", http.StatusOK)
}

// GetAcceptMessages handles accepting flag retrieval
// @Summary      Read the accepting flag
// @Description  Return whether the caller currently accepts anonymous messages, read fresh from storage.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} AcceptMessagesResponse
// @Failure      401 {object} httputil.APIResponse
// @Failure      404 {object} httputil.APIResponse "Account no longer exists"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/accept-messages [get]
func (h *Handler) GetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Not authenticated", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	accepting, err := h.service.GetAccepting(r.Context(), identity.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httputil.RespondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("get accepting flag failed", "error", err.Error())
		httputil.RespondError(w, "Error fetching message acceptance status", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, AcceptMessagesResponse{
		APIResponse:         httputil.APIResponse{Success: true, Message: "Message acceptance status fetched successfully"},
		IsAcceptingMessages: accepting,
	}, http.StatusOK)
}

// SetAcceptMessages handles accepting flag updates
// @Summary      Toggle the accepting flag
// @Description  Enable or disable receiving anonymous messages for the caller.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AcceptMessagesRequest true "Desired flag"
// @Success      200 {object} AcceptMessagesResponse
// @Failure      400 {object} httputil.APIResponse
// @Failure      401 {object} httputil.APIResponse "Account no longer exists"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/accept-messages [post]
func (h *Handler) SetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Not authenticated", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req AcceptMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid accept-messages request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.SetAccepting(r.Context(), identity.AccountID, req.AcceptMessages)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// The session outlived the account; treat it as an auth failure.
			httputil.RespondError(w, "User not found", httputil.CodeUserNotFound, http.StatusUnauthorized)
			return
		}
		logger.Error("set accepting flag failed", "error", err.Error())
		httputil.RespondError(w, "Error updating message acceptance status", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, AcceptMessagesResponse{
		APIResponse:         httputil.APIResponse{Success: true, Message: "Message acceptance status updated successfully"},
		IsAcceptingMessages: req.AcceptMessages,
	}, http.StatusOK)
}
