package services

import "time"

const (
	KeySpinRecord  = "spin:%s"
	KeyRecentSpins = "spins:recent"
	KeyUserSpins   = "user:%s:spins"

	TTLSpinRecord = 30 * 24 * time.Hour // 30 days

	// Only the most recent spins are retained per index.
	HistoryKeep = 100
)
