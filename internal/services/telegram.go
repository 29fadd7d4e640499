package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"hatstore-backend/internal/config"
)

// TelegramAPI is the slice of the Bot API this service depends on.
// Handlers and the spin orchestrator take this interface so tests can
// substitute a fake gateway.
type TelegramAPI interface {
	SendDice(ctx context.Context) (*DiceResult, error)
	SendMessage(ctx context.Context, chatID, text string, replyToMessageID int64)
	AnswerPreCheckoutQuery(ctx context.Context, queryID string)
	CreateInvoiceLink(ctx context.Context, title, description, payload, currency string, amount int64) (string, error)
}

// DiceResult is what a sendDice call yields: the rolled value and the id
// of the channel message carrying the animation.
type DiceResult struct {
	Value     int
	MessageID int64
}

// slotEmoji selects the 1..64 slot-machine dice on the platform side.
const slotEmoji = "\U0001F3B0"

// TelegramService talks to the Bot API over HTTPS. The bot credential is
// part of the URL path; every response is an {ok, result|description}
// envelope.
type TelegramService struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewTelegramService(cfg *config.Config, logger zerolog.Logger) *TelegramService {
	return &TelegramService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func (s *TelegramService) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", s.cfg.TelegramAPIBase, s.cfg.BotToken, method)
}

// call posts a JSON body to a Bot API method and decodes the envelope.
func (s *TelegramService) call(ctx context.Context, method string, body interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %v", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL(method), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %v", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %v", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %v", method, err)
	}

	if !envelope.OK {
		return nil, fmt.Errorf("telegram %s failed: %s (code %d)", method, envelope.Description, envelope.ErrorCode)
	}

	return envelope.Result, nil
}

// SendDice rolls the slot dice in the configured channel. Failures
// propagate: without a roll there is no spin.
func (s *TelegramService) SendDice(ctx context.Context) (*DiceResult, error) {
	if !s.cfg.BotConfigured() || !s.cfg.ChannelConfigured() {
		return nil, fmt.Errorf("telegram bot not configured")
	}

	result, err := s.call(ctx, "sendDice", map[string]interface{}{
		"chat_id": s.cfg.ChannelID,
		"emoji":   slotEmoji,
	})
	if err != nil {
		return nil, err
	}

	var message struct {
		MessageID int64 `json:"message_id"`
		Dice      struct {
			Value int `json:"value"`
		} `json:"dice"`
	}
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("failed to decode dice message: %v", err)
	}

	return &DiceResult{
		Value:     message.Dice.Value,
		MessageID: message.MessageID,
	}, nil
}

// SendMessage is best-effort: a lost notification must not fail whatever
// triggered it, so errors are logged and dropped here.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string, replyToMessageID int64) {
	body := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if replyToMessageID != 0 {
		body["reply_to_message_id"] = replyToMessageID
	}

	if _, err := s.call(ctx, "sendMessage", body); err != nil {
		s.logger.Warn().Err(err).Str("chat_id", chatID).Msg("Failed to send message")
	}
}

// AnswerPreCheckoutQuery approves a pending payment. Best-effort: the
// platform retries delivery on its own schedule.
func (s *TelegramService) AnswerPreCheckoutQuery(ctx context.Context, queryID string) {
	_, err := s.call(ctx, "answerPreCheckoutQuery", map[string]interface{}{
		"pre_checkout_query_id": queryID,
		"ok":                    true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query_id", queryID).Msg("Failed to answer pre-checkout query")
	}
}

// CreateInvoiceLink creates a Telegram Stars invoice. Stars payments use
// the XTR currency and an empty provider token.
func (s *TelegramService) CreateInvoiceLink(ctx context.Context, title, description, payload, currency string, amount int64) (string, error) {
	if !s.cfg.BotConfigured() {
		return "", fmt.Errorf("telegram bot not configured")
	}

	result, err := s.call(ctx, "createInvoiceLink", map[string]interface{}{
		"title":          title,
		"description":    description,
		"payload":        payload,
		"provider_token": "",
		"currency":       currency,
		"prices": []map[string]interface{}{
			{"label": fmt.Sprintf("Spin for %d Stars", amount), "amount": amount},
		},
	})
	if err != nil {
		return "", err
	}

	var url string
	if err := json.Unmarshal(result, &url); err != nil {
		return "", fmt.Errorf("failed to decode invoice link: %v", err)
	}

	return url, nil
}

// ChatIDString renders a numeric chat id the way the Bot API accepts it
// in JSON string form.
func ChatIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}

var _ TelegramAPI = (*TelegramService)(nil)
