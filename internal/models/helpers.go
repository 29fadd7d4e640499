package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return fmt.Sprintf("sess_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSpinID() string {
	return fmt.Sprintf("spin_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// NewSessionRecord builds the session-store entry for a profile.
func NewSessionRecord(profile *TelegramUser, initData string) SessionRecord {
	return SessionRecord{
		ID:           profile.ID,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Username:     profile.Username,
		PhotoURL:     profile.PhotoURL,
		LanguageCode: profile.LanguageCode,
		ReceivedAt:   time.Now().Format(time.RFC3339),
		InitData:     initData,
	}
}
