package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/errors"
	"github.com/johnquangdev/meeting-bot/internal/adapter/dto/bot"
	"github.com/johnquangdev/meeting-bot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	botuse "github.com/johnquangdev/meeting-bot/internal/usecase/bot"
	"github.com/johnquangdev/meeting-bot/pkg/validator"
)

// Bot handles the meeting bot session endpoints
type Bot struct {
	svc    botuse.Service
	logger *zap.Logger
}

// NewBot creates a new bot handler
func NewBot(svc botuse.Service, logger *zap.Logger) *Bot {
	return &Bot{svc: svc, logger: logger}
}

// Join sends a bot into a meeting
// @Summary      Join meeting
// @Description  Launches a browser, joins the meeting at meetingUrl and starts live transcription
// @Tags         Bot
// @Accept       json
// @Produce      json
// @Param        request  body      bot.JoinRequest       true  "Session to start"
// @Success      200      {object}  bot.JoinResponse
// @Failure      400      {object}  common.ErrorResponse  "Missing or invalid fields"
// @Failure      409      {object}  common.ErrorResponse  "Session already active"
// @Failure      500      {object}  common.ErrorResponse  "Failed to join meeting"
// @Router       /join [post]
func (h *Bot) Join(c echo.Context) error {
	var req bot.JoinRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}

	info, err := h.svc.Join(c.Request().Context(), req.SessionID, req.MeetingURL)
	if err != nil {
		return HandleError(h.logger, c, joinError(req.SessionID, err))
	}

	return HandleSuccess(h.logger, c, bot.JoinResponse{
		Success:   true,
		SessionID: info.ID,
	})
}

// Leave takes a bot out of a meeting and returns the transcription
// @Summary      Leave meeting
// @Description  Stops transcription, closes the browser and returns the compiled transcript with a summary
// @Tags         Bot
// @Accept       json
// @Produce      json
// @Param        request  body      bot.LeaveRequest      true  "Session to stop"
// @Success      200      {object}  bot.LeaveResponse
// @Failure      400      {object}  common.ErrorResponse  "Missing sessionId"
// @Failure      404      {object}  common.ErrorResponse  "Session not found"
// @Failure      500      {object}  bot.LeaveErrorResponse "Failed to leave meeting"
// @Router       /leave [post]
func (h *Bot) Leave(c echo.Context) error {
	var req bot.LeaveRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("sessionId is required"))
	}

	transcription, err := h.svc.Leave(c.Request().Context(), req.SessionID)
	switch {
	case err == nil:
		return HandleSuccess(h.logger, c, bot.LeaveResponse{
			Success:       true,
			Transcription: presenter.ToTranscriptionResponse(transcription),
		})
	case stdErrors.Is(err, entities.ErrSessionNotFound):
		return HandleError(h.logger, c, errors.ErrNotFound("Session"))
	case stdErrors.Is(err, entities.ErrTeardownFailed) && transcription != nil:
		appErr := errors.ErrTeardownFailed(req.SessionID, err)
		h.logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
		return c.JSON(appErr.HTTPCode, bot.LeaveErrorResponse{
			Error:         appErr.Message,
			Code:          appErr.Code,
			Transcription: presenter.ToTranscriptionResponse(transcription),
		})
	default:
		return HandleError(h.logger, c, errors.ErrTeardownFailed(req.SessionID, err))
	}
}

// ListSessions lists registered sessions
// @Summary      List sessions
// @Tags         Bot
// @Produce      json
// @Success      200  {object}  bot.SessionListResponse
// @Router       /sessions [get]
func (h *Bot) ListSessions(c echo.Context) error {
	sessions := h.svc.ListSessions(c.Request().Context())
	return HandleSuccess(h.logger, c, presenter.ToSessionListResponse(sessions))
}

// GetSession returns one registered session
// @Summary      Get session
// @Tags         Bot
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  bot.SessionResponse
// @Failure      404  {object}  common.ErrorResponse  "Session not found"
// @Router       /sessions/{id} [get]
func (h *Bot) GetSession(c echo.Context) error {
	info, err := h.svc.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		if stdErrors.Is(err, entities.ErrSessionNotFound) {
			return HandleError(h.logger, c, errors.ErrNotFound("Session"))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToSessionResponse(info))
}

func validationError(err error) errors.AppError {
	if validator.HasTag(err, "required") {
		return errors.ErrInvalidArgument(entities.ErrInvalidSessionRequest.Error())
	}
	if validator.HasTag(err, validator.TagMeetingURL) {
		return errors.ErrInvalidArgument("meetingUrl must be an http or https URL")
	}
	return errors.ErrInvalidPayload()
}

func joinError(sessionID string, err error) errors.AppError {
	switch {
	case stdErrors.Is(err, entities.ErrInvalidSessionRequest):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, entities.ErrSessionAlreadyActive):
		return errors.ErrSessionAlreadyActive(sessionID)
	case stdErrors.Is(err, entities.ErrUnexpectedFault):
		return errors.ErrInternal(err)
	default:
		return errors.ErrJoinFailed(sessionID, err)
	}
}
