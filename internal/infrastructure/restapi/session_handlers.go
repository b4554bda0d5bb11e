package restapi

import (
	"net/http"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the wallet session, notifications and confirmations.
type SessionHandler struct {
	session       port.SessionController
	notifications port.NotificationFeed
	confirmations port.ConfirmationQueue
}

func NewSessionHandler(s port.SessionController, n port.NotificationFeed, q port.ConfirmationQueue) *SessionHandler {
	return &SessionHandler{session: s, notifications: n, confirmations: q}
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) Connect(c *gin.Context) {
	if err := h.session.Connect(c.Request.Context()); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.session.Disconnect()
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) SwitchNetwork(c *gin.Context) {
	if err := h.session.SwitchNetwork(c.Request.Context()); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.notifications.List()})
}

func (h *SessionHandler) DismissNotification(c *gin.Context) {
	h.notifications.Dismiss(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) ListConfirmations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"confirmations": h.confirmations.Pending()})
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

// ResolveConfirmation answers a pending prompt with "confirm" or "cancel".
func (h *SessionHandler) ResolveConfirmation(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var d entity.Decision
	switch req.Decision {
	case "confirm":
		d = entity.DecisionConfirm
	case "cancel":
		d = entity.DecisionCancel
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": `Decision must be "confirm" or "cancel"`})
		return
	}

	if err := h.confirmations.Resolve(c.Param("id"), d); err != nil {
		errorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
