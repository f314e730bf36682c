package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	BaseHandler
	deliveryService services.DeliveryService
}

func NewDeliveryHandler(deliveryService services.DeliveryService, logger utils.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		BaseHandler:     NewBaseHandler(logger),
		deliveryService: deliveryService,
	}
}

// StartSession loads an assessment and opens a session for the current user
// @Summary Start session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.StartSessionRequest true "Assessment and mode"
// @Success 201 {object} services.SessionResponse
// @Success 303 "Essay already submitted, redirected home"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *DeliveryHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting session", "assessment_id", req.AssessmentID, "mode", req.Mode)

	session, err := h.deliveryService.Start(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the session state and its assessment
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *DeliveryHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	session, err := h.deliveryService.State(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// EndSession discards a session without submitting
// @Summary End session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *DeliveryHandler) EndSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.deliveryService.End(c.Request.Context(), userID, sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetMode switches between test, practice and edit. The attempt restarts.
// @Summary Set delivery mode
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SetModeRequest true "Mode"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/mode [put]
func (h *DeliveryHandler) SetMode(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	var req services.SetModeRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.deliveryService.SetMode(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RecordAnswer stores or replaces the answer of one question
// @Summary Record answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body delivery.AnswerInput true "Answer"
// @Success 200 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [put]
func (h *DeliveryHandler) RecordAnswer(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	var req delivery.AnswerInput
	if !h.bind(c, &req) {
		return
	}

	session, err := h.deliveryService.RecordAnswer(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RecordEssay stores the text typed for a writing part
// @Summary Record essay
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param part path int true "Writing part (1 or 2)"
// @Param request body services.EssayRequest true "Essay text"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/essays/{part} [put]
func (h *DeliveryHandler) RecordEssay(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	part, err := strconv.Atoi(c.Param("part"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid part", err, err.Error())
		return
	}
	var req services.EssayRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.deliveryService.RecordEssay(c.Request.Context(), userID, sessionID, part, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Next moves focus forward
// @Summary Next question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/next [post]
func (h *DeliveryHandler) Next(c *gin.Context) {
	h.navigate(c, services.DirectionNext)
}

// Previous moves focus back
// @Summary Previous question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/previous [post]
func (h *DeliveryHandler) Previous(c *gin.Context) {
	h.navigate(c, services.DirectionPrevious)
}

func (h *DeliveryHandler) navigate(c *gin.Context, dir services.Direction) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	session, err := h.deliveryService.Navigate(c.Request.Context(), userID, sessionID, dir)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SelectQuestion jumps to a question number
// @Summary Select question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SelectQuestionRequest true "Question number"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/select [post]
func (h *DeliveryHandler) SelectQuestion(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	var req services.SelectQuestionRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.deliveryService.SelectQuestion(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetTab shows another part, or the delivering screen
// @Summary Set tab
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SetTabRequest true "Tab"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/tab [put]
func (h *DeliveryHandler) SetTab(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}
	var req services.SetTabRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.deliveryService.SetTab(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Submit grades and stores the attempt
// @Summary Submit session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} delivery.Outcome
// @Success 303 "Essay already submitted, redirected home"
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *DeliveryHandler) Submit(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting session", "session_id", sessionID)

	outcome, err := h.deliveryService.Submit(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// handleSessionError sends a writing duplicate home instead of reporting it.
func (h *DeliveryHandler) handleSessionError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrEssayAlreadySubmitted) {
		h.LogWarn(c, "Essay already submitted, redirecting", "redirect", h.deliveryService.HomePath())
		c.Redirect(http.StatusSeeOther, h.deliveryService.HomePath())
		return
	}
	h.handleServiceError(c, err)
}

func (h *DeliveryHandler) sessionParams(c *gin.Context) (string, string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return "", "", false
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return "", "", false
	}
	return userID, sessionID, true
}

func (h *DeliveryHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}
