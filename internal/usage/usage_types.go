package usage

import "time"

// UsageData is the root structure stored on disk.
type UsageData struct {
	Version   string          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds token counters broken down by dimension.
type AggregatedStats struct {
	Total      TokenCounts            `json:"total"`
	ByProvider map[string]TokenCounts `json:"by_provider"`
	ByModel    map[string]TokenCounts `json:"by_model"`
	ByPersona  map[string]TokenCounts `json:"by_persona"`
	BySession  map[string]TokenCounts `json:"by_session"`
	Requests   int64                  `json:"requests"`
}

func newAggregatedStats() AggregatedStats {
	return AggregatedStats{
		ByProvider: make(map[string]TokenCounts),
		ByModel:    make(map[string]TokenCounts),
		ByPersona:  make(map[string]TokenCounts),
		BySession:  make(map[string]TokenCounts),
	}
}

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
