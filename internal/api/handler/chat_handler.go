package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Reply answers a chatbot message for the current user.
//
// @Summary      Ask the chatbot
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      chatRequest  true  "Message"
// @Success      200   {object}  chatResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /chat [post]
func (h *ChatHandler) Reply(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, chatResponse{Reply: h.service.Reply(c.Request().Context(), p.UserID, req.Message)})
}
