package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hatstore-backend/internal/config"
	"hatstore-backend/internal/models"
	"hatstore-backend/internal/services"
)

type SpinHandler struct {
	cfg      *config.Config
	spin     *services.SpinService
	telegram services.TelegramAPI
	history  *services.HistoryService
	logger   zerolog.Logger
}

func NewSpinHandler(cfg *config.Config, spin *services.SpinService, telegram services.TelegramAPI, history *services.HistoryService, logger zerolog.Logger) *SpinHandler {
	return &SpinHandler{
		cfg:      cfg,
		spin:     spin,
		telegram: telegram,
		history:  history,
		logger:   logger.With().Str("component", "spin-handler").Logger(),
	}
}

// SendSlotDice rolls the channel dice and returns the reel outcome only.
func (h *SpinHandler) SendSlotDice(c *gin.Context) {
	if !h.cfg.BotConfigured() || !h.cfg.ChannelConfigured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Telegram bot not configured"})
		return
	}

	result, ok := h.performSpin(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, result.Public())
}

// Spin performs a spin and returns the full result, report text included.
func (h *SpinHandler) Spin(c *gin.Context) {
	result, ok := h.performSpin(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SpinHandler) performSpin(c *gin.Context) (*models.SpinResult, bool) {
	var req models.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return nil, false
	}

	userID := "unknown"
	if req.UserID != 0 {
		userID = strconv.FormatInt(req.UserID, 10)
	}

	result, err := h.spin.PerformSpin(c.Request.Context(), userID, req.BetAmount)
	if err != nil {
		h.logger.Error().Err(err).Msg("Spin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Dice send failed", "details": err.Error()})
		return nil, false
	}

	return result, true
}

// CreateInvoice creates a Telegram Stars payment link for one spin.
func (h *SpinHandler) CreateInvoice(c *gin.Context) {
	if !h.cfg.BotConfigured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Telegram bot not configured"})
		return
	}

	var req models.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var payloadUser interface{} = "unknown"
	if req.UserID != 0 {
		payloadUser = req.UserID
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"userId":    payloadUser,
		"betAmount": req.BetAmount,
	})

	title := fmt.Sprintf("\U0001F3B0 Slot Spin - %d Stars", req.BetAmount)
	description := fmt.Sprintf("Spin the slot machine for %d Telegram Stars", req.BetAmount)

	invoiceURL, err := h.telegram.CreateInvoiceLink(c.Request.Context(), title, description, string(payload), "XTR", req.BetAmount)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create invoice")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice_url": invoiceURL})
}

// GetSpins lists recent spins; ?my=1 restricts to the caller's own.
func (h *SpinHandler) GetSpins(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	my := c.Query("my") == "1" || c.Query("my") == "true"

	userID, authenticated := c.Get("user_id")
	if my && !authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if h.history == nil {
		c.JSON(http.StatusOK, []*services.HistoryEntry{})
		return
	}

	var (
		entries []*services.HistoryEntry
		err     error
	)
	if my {
		entries, err = h.history.GetUserSpins(c.Request.Context(), strconv.FormatInt(userID.(int64), 10), limit)
	} else {
		entries, err = h.history.GetRecentSpins(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read spin history")
		entries = nil
	}

	if entries == nil {
		entries = []*services.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// History lists one user's spins, by explicit user_id or by the caller's
// own identity.
func (h *SpinHandler) History(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	target := c.Query("user_id")
	if target == "" {
		userID, authenticated := c.Get("user_id")
		if !authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		target = strconv.FormatInt(userID.(int64), 10)
	}

	entries := []*services.HistoryEntry{}
	if h.history != nil {
		found, err := h.history.GetUserSpins(c.Request.Context(), target, limit)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to read spin history")
		} else if found != nil {
			entries = found
		}
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Status reports process health and which credentials are present.
func (h *SpinHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"ts": time.Now().Format(time.RFC3339),
		"env": gin.H{
			"port":               h.cfg.Port,
			"bot_configured":     h.cfg.BotConfigured(),
			"channel_configured": h.cfg.ChannelConfigured(),
		},
	})
}
