package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hatstore-backend/internal/models"
)

// Broadcaster fans a finished spin out to connected clients. Implementations
// must not block.
type Broadcaster interface {
	BroadcastSpin(result *models.SpinResult)
}

// displayGlyphs maps canonical symbol names to the glyphs used in the
// channel report. Unknown symbols render as their raw name.
var displayGlyphs = map[string]string{
	"777":   "7️⃣",
	"lemon": "\U0001F34B",
	"grape": "\U0001F347",
	"bar":   "\U0001F3B0",
}

const (
	statusJackpot = "\U0001F3B0\U0001F4B0 JACKPOT! \U0001F4B0\U0001F3B0"
	statusWin     = "✅ WIN"
	statusLose    = "❌ Lose"

	reportDivider = "━━━━━━━━━━━━━━"
)

// SpinService sequences a complete spin: roll the remote dice, map the
// value to symbols, report to the channel and snapshot the outcome.
type SpinService struct {
	telegram    TelegramAPI
	mapper      *SymbolMapper
	lastSpin    LastSpinStore
	channelID   string
	history     *HistoryService
	broadcaster Broadcaster
	logger      zerolog.Logger
}

func NewSpinService(telegram TelegramAPI, mapper *SymbolMapper, lastSpin LastSpinStore, channelID string, logger zerolog.Logger) *SpinService {
	return &SpinService{
		telegram:  telegram,
		mapper:    mapper,
		lastSpin:  lastSpin,
		channelID: channelID,
		logger:    logger.With().Str("component", "spin").Logger(),
	}
}

// WithHistory attaches the optional spin-history store.
func (s *SpinService) WithHistory(history *HistoryService) *SpinService {
	s.history = history
	return s
}

// WithBroadcaster attaches the optional live feed.
func (s *SpinService) WithBroadcaster(b Broadcaster) *SpinService {
	s.broadcaster = b
	return s
}

// PerformSpin is the one externally observable state transition of the
// service: exactly one remote roll, one channel report and one snapshot
// overwrite per successful call. A failed roll aborts with nothing
// persisted; nothing after the roll can fail the spin.
func (s *SpinService) PerformSpin(ctx context.Context, userID string, betAmount int64) (*models.SpinResult, error) {
	dice, err := s.telegram.SendDice(ctx)
	if err != nil {
		return nil, fmt.Errorf("dice roll failed: %w", err)
	}

	symbols, mapped := s.mapper.SymbolsFor(dice.Value)
	if !mapped {
		s.logger.Warn().Int("value", dice.Value).Msg("Spin hit unmapped dice value")
	}

	isWin := allEqual(symbols)
	isJackpot := dice.Value == mappingSize

	result := &models.SpinResult{
		Symbols:       symbols,
		DiceValue:     dice.Value,
		IsWin:         isWin,
		IsJackpot:     isJackpot,
		Text:          formatReport(userID, betAmount, dice.Value, symbols, isWin, isJackpot),
		DiceMessageID: dice.MessageID,
	}

	s.telegram.SendMessage(ctx, s.channelID, result.Text, dice.MessageID)

	snapshot := models.SpinSnapshot{
		Timestamp: time.Now().Format(time.RFC3339),
		UserID:    userID,
		BetAmount: betAmount,
		Result:    result,
	}
	if err := s.lastSpin.Write(snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist last spin")
	}

	if s.history != nil {
		if err := s.history.RecordSpin(ctx, snapshot); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record spin history")
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSpin(result)
	}

	return result, nil
}

func allEqual(symbols []string) bool {
	for _, sym := range symbols[1:] {
		if sym != symbols[0] {
			return false
		}
	}
	return true
}

func formatReport(userID string, betAmount int64, diceValue int, symbols []string, isWin, isJackpot bool) string {
	glyphs := make([]string, len(symbols))
	for i, sym := range symbols {
		if glyph, ok := displayGlyphs[sym]; ok {
			glyphs[i] = glyph
		} else {
			glyphs[i] = sym
		}
	}

	status := statusLose
	if isJackpot {
		status = statusJackpot
	} else if isWin {
		status = statusWin
	}

	lines := []string{
		reportDivider,
		fmt.Sprintf("\U0001F464 User: %s", userID),
		fmt.Sprintf("\U0001F4B0 Bet: %d", betAmount),
		reportDivider,
		fmt.Sprintf("\U0001F3B2 Value: %d/%d", diceValue, mappingSize),
		fmt.Sprintf("\U0001F3AF Result: %s", strings.Join(glyphs, " ")),
		reportDivider,
		status,
		reportDivider,
	}

	return strings.Join(lines, "\n")
}
