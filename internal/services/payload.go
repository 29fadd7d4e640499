package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"hatstore-backend/internal/models"
)

// DecodeInvoicePayload extracts (userId, betAmount) from the opaque payload
// attached to a completed payment. Two encodings are accepted: a JSON
// object, or "key:value" tokens separated by commas or semicolons. Nothing
// here ever fails; anything unreadable decodes to the caller's defaults so
// the payment acknowledgment is never blocked.
func DecodeInvoicePayload(payload string, defaultUserID int64) models.PaymentPayload {
	result := models.PaymentPayload{
		UserID:    strconv.FormatInt(defaultUserID, 10),
		BetAmount: 0,
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return result
	}

	if strings.HasPrefix(payload, "{") {
		decodeJSONPayload(payload, &result)
		return result
	}

	decodeDelimitedPayload(payload, &result)
	return result
}

func decodeJSONPayload(payload string, result *models.PaymentPayload) {
	var parsed struct {
		UserID    json.RawMessage `json:"userId"`
		BetAmount int64           `json:"betAmount"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return
	}

	if id, ok := rawToString(parsed.UserID); ok {
		result.UserID = id
	}
	if parsed.BetAmount > 0 {
		result.BetAmount = parsed.BetAmount
	}
}

func decodeDelimitedPayload(payload string, result *models.PaymentPayload) {
	payload = strings.ReplaceAll(payload, ",", "|")
	payload = strings.ReplaceAll(payload, ";", "|")

	for _, part := range strings.Split(payload, "|") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "userId", "uid":
			if value != "" {
				result.UserID = value
			}
		case "betAmount", "bet":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
				result.BetAmount = n
			} else {
				result.BetAmount = 0
			}
		}
	}
}

// rawToString renders the userId field, which the client may encode as a
// JSON number or a string, as its plain text form.
func rawToString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, asString != ""
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String(), true
	}

	return "", false
}
