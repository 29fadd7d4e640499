package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hatstore-backend/internal/handlers"
	"hatstore-backend/internal/models"
	"hatstore-backend/internal/services"
)

type fakeTelegram struct {
	diceValue int
	diceErr   error

	diceCalls      int
	answeredQuery  string
	answeredCalls  int
	messages       []sentMessage
	invoiceURL     string
	invoicePayload string
}

type sentMessage struct {
	chatID  string
	text    string
	replyTo int64
}

func (f *fakeTelegram) SendDice(ctx context.Context) (*services.DiceResult, error) {
	f.diceCalls++
	if f.diceErr != nil {
		return nil, f.diceErr
	}
	return &services.DiceResult{Value: f.diceValue, MessageID: 777}, nil
}

func (f *fakeTelegram) SendMessage(ctx context.Context, chatID, text string, replyToMessageID int64) {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, replyTo: replyToMessageID})
}

func (f *fakeTelegram) AnswerPreCheckoutQuery(ctx context.Context, queryID string) {
	f.answeredCalls++
	f.answeredQuery = queryID
}

func (f *fakeTelegram) CreateInvoiceLink(ctx context.Context, title, description, payload, currency string, amount int64) (string, error) {
	f.invoicePayload = payload
	if f.invoiceURL == "" {
		return "", fmt.Errorf("not configured")
	}
	return f.invoiceURL, nil
}

type failingMappingSource struct{}

func (failingMappingSource) Read() ([]models.MappingEntry, error) {
	return nil, fmt.Errorf("no mapping file")
}

type memoryLastSpinStore struct {
	snapshot *models.SpinSnapshot
}

func (s *memoryLastSpinStore) Write(snapshot models.SpinSnapshot) error {
	s.snapshot = &snapshot
	return nil
}

func newWebhookRouter(telegram *fakeTelegram, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mapper := services.NewSymbolMapper(failingMappingSource{}, zerolog.Nop())
	spin := services.NewSpinService(telegram, mapper, &memoryLastSpinStore{}, "@test_channel", zerolog.Nop())
	handler := handlers.NewWebhookHandler(telegram, spin, secret, zerolog.Nop())

	router := gin.New()
	router.POST("/api/telegram-webhook", handler.HandleUpdate)
	return router
}

func postWebhook(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/telegram-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const paymentUpdate = `{
	"update_id": 1,
	"message": {
		"message_id": 5,
		"from": {"id": 1, "first_name": "Ada"},
		"chat": {"id": 99, "type": "private"},
		"successful_payment": {
			"currency": "XTR",
			"total_amount": 10,
			"invoice_payload": "{\"userId\":1,\"betAmount\":10}"
		}
	}
}`

func TestWebhookRejectsBadSecret(t *testing.T) {
	telegram := &fakeTelegram{diceValue: 64}
	router := newWebhookRouter(telegram, "s3cret")

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing header", nil},
		{"wrong secret", map[string]string{"X-Telegram-Bot-Api-Secret-Token": "wrong"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWebhook(router, paymentUpdate, tt.headers)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Status = %d, want 401", w.Code)
			}
		})
	}

	if telegram.diceCalls != 0 {
		t.Errorf("Rejected deliveries must not roll dice, got %d calls", telegram.diceCalls)
	}
}

func TestWebhookPaymentTriggersSpin(t *testing.T) {
	telegram := &fakeTelegram{diceValue: 64}
	router := newWebhookRouter(telegram, "s3cret")

	w := postWebhook(router, paymentUpdate, map[string]string{
		"X-Telegram-Bot-Api-Secret-Token": "s3cret",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("Body = %s, want ok acknowledgment", w.Body.String())
	}

	if telegram.diceCalls != 1 {
		t.Errorf("Expected exactly one dice roll, got %d", telegram.diceCalls)
	}

	// One channel report plus one private notice to the payer.
	if len(telegram.messages) != 2 {
		t.Fatalf("Expected 2 outbound messages, got %d", len(telegram.messages))
	}
	report := telegram.messages[0]
	if report.chatID != "@test_channel" || report.replyTo != 777 {
		t.Errorf("Channel report = %+v", report)
	}
	if !strings.Contains(report.text, "User: 1") || !strings.Contains(report.text, "Bet: 10") {
		t.Errorf("Report text:\n%s", report.text)
	}
	notice := telegram.messages[1]
	if notice.chatID != "99" {
		t.Errorf("Private notice went to %q, want 99", notice.chatID)
	}
	if !strings.HasPrefix(notice.text, "Your spin result:\n") {
		t.Errorf("Notice text:\n%s", notice.text)
	}
}

func TestWebhookPreCheckoutApproved(t *testing.T) {
	telegram := &fakeTelegram{diceValue: 64}
	router := newWebhookRouter(telegram, "")

	w := postWebhook(router, `{"update_id":2,"pre_checkout_query":{"id":"q1","currency":"XTR","total_amount":10}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if telegram.answeredCalls != 1 || telegram.answeredQuery != "q1" {
		t.Errorf("Pre-checkout answers = %d for %q, want 1 for q1", telegram.answeredCalls, telegram.answeredQuery)
	}
	if telegram.diceCalls != 0 {
		t.Error("Pre-checkout alone must not roll dice")
	}
}

func TestWebhookBothBranchesRun(t *testing.T) {
	telegram := &fakeTelegram{diceValue: 64}
	router := newWebhookRouter(telegram, "")

	combined := strings.Replace(paymentUpdate, `"update_id": 1,`,
		`"update_id": 3, "pre_checkout_query": {"id": "q2"},`, 1)

	w := postWebhook(router, combined, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if telegram.answeredCalls != 1 {
		t.Errorf("Pre-checkout branch did not run, answers=%d", telegram.answeredCalls)
	}
	if telegram.diceCalls != 1 {
		t.Errorf("Payment branch did not run, rolls=%d", telegram.diceCalls)
	}
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name string
		body string
		fake *fakeTelegram
	}{
		{"spin failure", paymentUpdate, &fakeTelegram{diceErr: fmt.Errorf("telegram down")}},
		{"malformed body", "{not json", &fakeTelegram{diceValue: 64}},
		{"irrelevant update", `{"update_id":9,"message":{"message_id":1,"text":"hi","chat":{"id":5}}}`, &fakeTelegram{diceValue: 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newWebhookRouter(tt.fake, "")
			w := postWebhook(router, tt.body, nil)
			if w.Code != http.StatusOK {
				t.Errorf("Status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), `"ok":true`) {
				t.Errorf("Body = %s", w.Body.String())
			}
		})
	}
}

func TestWebhookPayloadFallsBackToSender(t *testing.T) {
	telegram := &fakeTelegram{diceValue: 64}
	router := newWebhookRouter(telegram, "")

	body := strings.Replace(paymentUpdate, `"{\"userId\":1,\"betAmount\":10}"`, `"garbage"`, 1)
	w := postWebhook(router, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if len(telegram.messages) == 0 {
		t.Fatal("Spin should still run with default payload")
	}
	// Sender id 1 becomes the user id; the bet defaults to zero.
	if !strings.Contains(telegram.messages[0].text, "User: 1") || !strings.Contains(telegram.messages[0].text, "Bet: 0") {
		t.Errorf("Report text:\n%s", telegram.messages[0].text)
	}
}
