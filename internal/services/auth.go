package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"hatstore-backend/internal/models"
)

// authScheme marks platform-signed WebApp data in the Authorization header.
const authScheme = "tma "

// AuthService validates Telegram WebApp init data against the bot token.
type AuthService struct {
	botToken string
	logger   zerolog.Logger
}

func NewAuthService(botToken string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		botToken: botToken,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// VerifyInitData checks the keyed-hash signature of a WebApp init-data blob.
// It returns the parsed key/value claims when the signature matches and
// (nil, false) in every other case; malformed input is not an error.
//
// The scheme is fixed by the platform: drop the hash field, render the
// remaining pairs as "key=value", sort those strings, join with newlines,
// then HMAC-SHA-256 the result with a key derived as
// HMAC-SHA-256(key="WebAppData", message=botToken).
func (s *AuthService) VerifyInitData(initData string) (map[string]string, bool) {
	if s.botToken == "" || initData == "" {
		return nil, false
	}

	parsed, err := url.ParseQuery(initData)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to parse init data")
		return nil, false
	}

	expectedHash := parsed.Get("hash")
	if expectedHash == "" {
		return nil, false
	}

	claims := make(map[string]string, len(parsed))
	checkPairs := make([]string, 0, len(parsed))
	for key := range parsed {
		value := parsed.Get(key)
		claims[key] = value
		if key != "hash" {
			checkPairs = append(checkPairs, key+"="+value)
		}
	}
	sort.Strings(checkPairs)
	checkString := strings.Join(checkPairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(s.botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(expectedHash)) {
		return nil, false
	}

	return claims, true
}

// UserFromInitData verifies the blob and decodes the user claim.
func (s *AuthService) UserFromInitData(initData string) (*models.TelegramUser, bool) {
	claims, ok := s.VerifyInitData(initData)
	if !ok {
		return nil, false
	}

	userJSON, ok := claims["user"]
	if !ok {
		return nil, false
	}

	var user models.TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to decode user claim")
		return nil, false
	}

	return &user, true
}

// UserFromAuthHeader resolves the "tma <init-data>" Authorization scheme.
// Headers without that scheme are anonymous, not invalid.
func (s *AuthService) UserFromAuthHeader(header string) (*models.TelegramUser, bool) {
	if !strings.HasPrefix(header, authScheme) {
		return nil, false
	}
	return s.UserFromInitData(header[len(authScheme):])
}
