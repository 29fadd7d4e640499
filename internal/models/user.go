package models

// TelegramUser is the profile embedded in WebApp init data and in
// webhook messages.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// SessionRecord is the per-user entry in the session store. One record
// per user id, latest write wins.
type SessionRecord struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	ReceivedAt   string `json:"received_at"`
	InitData     string `json:"init_data,omitempty"`
}

type AuthRequest struct {
	Profile  *TelegramUser `json:"profile" binding:"required"`
	InitData string        `json:"init_data"`
}
