package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hatstore-backend/internal/models"
	"hatstore-backend/internal/services"
)

// secretTokenHeader carries the shared secret Telegram echoes back on
// every webhook delivery when one was set via setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler dispatches inbound bot updates. It is stateless: each
// delivery is handled on its own, and except for a secret mismatch the
// response is always a generic acknowledgment so the platform never
// redelivers.
type WebhookHandler struct {
	telegram services.TelegramAPI
	spin     *services.SpinService
	secret   string
	logger   zerolog.Logger
}

func NewWebhookHandler(telegram services.TelegramAPI, spin *services.SpinService, secret string, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		telegram: telegram,
		spin:     spin,
		secret:   secret,
		logger:   logger.With().Str("component", "webhook").Logger(),
	}
}

func (h *WebhookHandler) HandleUpdate(c *gin.Context) {
	if h.secret != "" {
		received := c.GetHeader(secretTokenHeader)
		if received != h.secret {
			h.logger.Warn().Msg("Webhook secret mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
	}

	var update models.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode webhook update")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// An update may in principle carry both event kinds; both branches run.
	if update.PreCheckoutQuery != nil {
		h.telegram.AnswerPreCheckoutQuery(c.Request.Context(), update.PreCheckoutQuery.ID)
	}

	if update.Message != nil && update.Message.SuccessfulPayment != nil {
		h.handleSuccessfulPayment(c, update.Message)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) handleSuccessfulPayment(c *gin.Context, msg *models.Message) {
	var chatID int64
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}

	defaultUserID := chatID
	if msg.From != nil {
		defaultUserID = msg.From.ID
	}

	payload := services.DecodeInvoicePayload(msg.SuccessfulPayment.InvoicePayload, defaultUserID)

	result, err := h.spin.PerformSpin(c.Request.Context(), payload.UserID, payload.BetAmount)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", payload.UserID).Msg("Spin after payment failed")
		return
	}

	// Private copy of the report for the payer. Best-effort.
	h.telegram.SendMessage(c.Request.Context(), strconv.FormatInt(chatID, 10), "Your spin result:\n"+result.Text, 0)
}
