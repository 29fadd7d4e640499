package services

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// mappingSize is the number of distinct values the slot dice can land on.
// A mapping source that does not cover all of them is rejected outright.
const mappingSize = 64

// neutralSymbols is returned for values the table does not cover. Three
// distinct symbols, so an unmapped value can never read as a win.
var neutralSymbols = []string{"bar", "lemon", "grape"}

// fallbackMapping covers only the four triple values. It is used when the
// mapping source is unreadable or incomplete.
var fallbackMapping = map[int][]string{
	1:  {"bar", "bar", "bar"},
	22: {"grape", "grape", "grape"},
	43: {"lemon", "lemon", "lemon"},
	64: {"777", "777", "777"},
}

// SymbolMapper converts slot dice values into game symbols. The table is
// loaded once at construction and immutable afterwards.
type SymbolMapper struct {
	mapping map[int][]string
	logger  zerolog.Logger
}

func NewSymbolMapper(source MappingSource, logger zerolog.Logger) *SymbolMapper {
	m := &SymbolMapper{
		logger: logger.With().Str("component", "symbol-mapper").Logger(),
	}

	mapping, err := loadMapping(source)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load dice mapping, using fallback")
		m.mapping = fallbackMapping
		return m
	}

	m.logger.Info().Int("values", len(mapping)).Msg("Dice mapping loaded")
	m.mapping = mapping
	return m
}

func loadMapping(source MappingSource) (map[int][]string, error) {
	entries, err := source.Read()
	if err != nil {
		return nil, err
	}

	mapping := make(map[int][]string, len(entries))
	for _, e := range entries {
		mapping[e.Value] = []string{
			normalizeSymbol(e.First),
			normalizeSymbol(e.Second),
			normalizeSymbol(e.Third),
		}
	}

	if len(mapping) != mappingSize {
		return nil, fmt.Errorf("mapping must contain %d values, found %d", mappingSize, len(mapping))
	}

	return mapping, nil
}

// normalizeSymbol lower-cases a raw symbol name. The source spells the
// seven as a word; the rest of the system uses the "777" token.
func normalizeSymbol(s string) string {
	s = strings.ToLower(s)
	if s == "seven" {
		return "777"
	}
	return s
}

// SymbolsFor returns the symbol triple for a dice value. Unknown values
// yield the neutral triple and ok=false so the caller can log the gap;
// the lookup itself never fails.
func (m *SymbolMapper) SymbolsFor(value int) (symbols []string, ok bool) {
	if symbols, ok := m.mapping[value]; ok {
		return symbols, true
	}
	m.logger.Warn().Int("value", value).Msg("Missing dice value mapping")
	return neutralSymbols, false
}
