package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yanqian/lumee/internal/domain/assistant"
	apperrors "github.com/yanqian/lumee/pkg/errors"
)

// Handler wires the HTTP transport to the chat service.
type Handler struct {
	chatSvc  assistant.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc assistant.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "http.handler"),
	}
}

// Chat answers one user utterance.
func (h *Handler) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if claims, ok := getClaims(c); ok {
		req.UserID = claims.UserID
	}
	req.UserInput = strings.TrimSpace(req.UserInput)
	if err := h.validate.Struct(req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.chatSvc.Chat(c.Request.Context(), req)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case assistant.CodeResolutionFailed:
			c.JSON(http.StatusOK, assistant.ChatResponse{Reply: apperrors.MessageOf(err), SessionID: req.SessionID})
			return
		case "invalid_input":
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", apperrors.MessageOf(err), err))
		case "llm_error":
			abortWithError(c, NewHTTPError(http.StatusBadGateway, "llm_error", apperrors.DetailOf(err), err))
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "chat_failed", "something went wrong", err))
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetSession forgets the conversation history of one session.
func (h *Handler) ResetSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "session id is required", nil))
		return
	}
	if err := h.chatSvc.Reset(c.Request.Context(), sessionID); err != nil {
		status := http.StatusInternalServerError
		code := "reset_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
