package models

// MappingEntry is one row of the dice-mapping source: a slot dice value
// (1..64) and the three raw symbol names it decodes to.
type MappingEntry struct {
	Value  int    `json:"value"`
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

// SpinResult is the outcome of a single spin. Immutable once built.
type SpinResult struct {
	Symbols       []string `json:"symbols"`
	DiceValue     int      `json:"diceValue"`
	IsWin         bool     `json:"isWin"`
	IsJackpot     bool     `json:"isJackpot"`
	Text          string   `json:"text,omitempty"`
	DiceMessageID int64    `json:"diceMessageId,omitempty"`
}

// Public strips the channel-facing fields for endpoints that only report
// the reel outcome.
func (r *SpinResult) Public() map[string]interface{} {
	return map[string]interface{}{
		"symbols":   r.Symbols,
		"diceValue": r.DiceValue,
		"isWin":     r.IsWin,
		"isJackpot": r.IsJackpot,
	}
}

// SpinSnapshot is the single durably stored record of the most recent spin.
type SpinSnapshot struct {
	Timestamp string      `json:"ts"`
	UserID    string      `json:"userId"`
	BetAmount int64       `json:"betAmount"`
	Result    *SpinResult `json:"result"`
}

// PaymentPayload is what an invoice payload decodes to. User ids are
// normalized to their decimal string form.
type PaymentPayload struct {
	UserID    string
	BetAmount int64
}

type SpinRequest struct {
	UserID    int64 `json:"userId"`
	BetAmount int64 `json:"betAmount"`
}

type InvoiceRequest struct {
	BetAmount int64 `json:"bet_amount" binding:"required,min=1"`
	UserID    int64 `json:"user_id"`
}
