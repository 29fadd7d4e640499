package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hatstore-backend/internal/models"
	"hatstore-backend/internal/services"
)

type AuthHandler struct {
	sessions    services.SessionStore
	authService *services.AuthService
	jwtService  *services.JWTService
	logger      zerolog.Logger
}

func NewAuthHandler(sessions services.SessionStore, authService *services.AuthService, jwtService *services.JWTService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		authService: authService,
		jwtService:  jwtService,
		logger:      logger.With().Str("component", "auth-handler").Logger(),
	}
}

// Authenticate records the WebApp profile in the session store. When the
// request carries init data that verifies against the bot token, the
// response also carries a signed session token.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Profile == nil || req.Profile.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile.id is required"})
		return
	}

	sessions, err := h.sessions.Load()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read sessions, starting fresh")
		sessions = map[string]models.SessionRecord{}
	}

	userID := strconv.FormatInt(req.Profile.ID, 10)
	sessions[userID] = models.NewSessionRecord(req.Profile, req.InitData)

	if err := h.sessions.Save(sessions); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write sessions")
	}

	response := gin.H{
		"ok":     true,
		"userId": req.Profile.ID,
	}

	if _, verified := h.authService.VerifyInitData(req.InitData); verified {
		token, err := h.jwtService.GenerateToken(req.Profile.ID, models.GenerateSessionID())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to sign session token")
		} else {
			response["token"] = token
		}
	}

	c.JSON(http.StatusOK, response)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	if user, exists := c.Get("user"); exists {
		c.JSON(http.StatusOK, user)
		return
	}

	// Bearer tokens carry only the user id; resolve the profile from the
	// session store.
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	sessions, err := h.sessions.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	record, ok := sessions[strconv.FormatInt(userID.(int64), 10)]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, models.TelegramUser{
		ID:           record.ID,
		FirstName:    record.FirstName,
		LastName:     record.LastName,
		Username:     record.Username,
		PhotoURL:     record.PhotoURL,
		LanguageCode: record.LanguageCode,
	})
}
