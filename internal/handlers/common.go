package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"user_id", h.extractUserID(c),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.requestLogger(c).Warn(message, fields...)
}

// requestLogger carries request_id, method and path when ContextLogger ran.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger.With(
		"request_id", utils.GetRequestID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	))
}

func (h *BaseHandler) extractUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, resp)
}

// handleServiceError maps service and session errors to HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAssessmentNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Assessment not found", err)
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, services.ErrEssayAlreadySubmitted):
		h.RespondWithError(c, http.StatusConflict, "Essay already submitted", err)
	case errors.Is(err, delivery.ErrSubmissionInProgress):
		h.RespondWithError(c, http.StatusConflict, "Submission already in progress", err)
	case errors.Is(err, delivery.ErrSessionFinished), errors.Is(err, delivery.ErrNoAssessment):
		h.RespondWithError(c, http.StatusConflict, "Session is not active", err)
	case errors.Is(err, delivery.ErrQuestionOutOfRange),
		errors.Is(err, delivery.ErrSelectionLimit),
		errors.Is(err, delivery.ErrUnknownAnswerType),
		errors.Is(err, delivery.ErrAnswerTypeMismatch),
		errors.Is(err, delivery.ErrMissingAnswer),
		errors.Is(err, delivery.ErrInvalidMode),
		errors.Is(err, delivery.ErrUnknownTab),
		errors.Is(err, delivery.ErrNotWritingSection),
		errors.Is(err, delivery.ErrInvalidEssayPart):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "Resource conflict", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
