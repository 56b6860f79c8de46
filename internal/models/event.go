package models

import "time"

// GapEventType classifies the latest bar's opening-gap behavior.
type GapEventType string

const (
	GapNone         GapEventType = "NONE"
	GapReversal     GapEventType = "REVERSAL"
	GapContinuation GapEventType = "CONTINUATION"
)

// Reference level names shared by analyzers and confirmation.
const (
	LevelPrevClose     = "prev_close"
	LevelOpen          = "open"
	LevelClose         = "close"
	LevelBoxUpper      = "box_upper"
	LevelBoxLower      = "box_lower"
	LevelBreakoutLevel = "breakout_level"
)

// GapEvent is the result of scoring the latest opening gap against the
// symbol's own gap history. Ephemeral: recomputed every run, never persisted.
type GapEvent struct {
	Type          GapEventType       `json:"type"`
	Score         float64            `json:"score"`
	GapSize       float64            `json:"gap_size"`
	ReversalRatio float64            `json:"reversal_ratio"`
	ZScore        float64            `json:"z_score"`
	RefLevels     map[string]float64 `json:"ref_levels,omitempty"`
}

// BreakoutDirection indicates which side of the consolidation box the
// latest close escaped through.
type BreakoutDirection string

const (
	BreakoutNone BreakoutDirection = ""
	BreakoutUp   BreakoutDirection = "UP"
	BreakoutDown BreakoutDirection = "DOWN"
)

// ConsolidationBox is the high/low range of the squeeze window.
// Upper is always >= Lower.
type ConsolidationBox struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// SqueezeReleaseEvent is the result of scoring a volatility
// compression-to-expansion transition. Same lifecycle as GapEvent.
type SqueezeReleaseEvent struct {
	Score           float64           `json:"score"`
	SqueezeStrength float64           `json:"squeeze_strength"`
	ReleaseStrength float64           `json:"release_strength"`
	Direction       BreakoutDirection `json:"breakout_direction,omitempty"`
	BreakoutLevel   float64           `json:"breakout_level,omitempty"`
	Box             ConsolidationBox  `json:"box"`
	VolRatio        float64           `json:"vol_ratio"`
}

// SymbolEvent pairs the two daily anomaly scores for one symbol on one
// evaluation date; input to the watchlist builder.
type SymbolEvent struct {
	Symbol  string              `json:"symbol"`
	Date    time.Time           `json:"date"`
	Gap     GapEvent            `json:"gap_event"`
	Squeeze SqueezeReleaseEvent `json:"squeeze_event"`
}

// Watchlist event type labels, derived from whichever sub-event scored higher.
const (
	EventGapReversal     = "GAP_REVERSAL"
	EventGapContinuation = "GAP_CONTINUATION"
	EventSqueezeRelease  = "SQUEEZE_RELEASE"
)

// WatchlistEntry is one ranked row of the shortlist handed to intraday
// confirmation. Lifetime is a single pipeline run.
type WatchlistEntry struct {
	Symbol    string              `json:"symbol"`
	Date      time.Time           `json:"date"`
	EventType string              `json:"event_type"`
	Score     float64             `json:"score"`
	KeyLevels map[string]float64  `json:"key_levels"`
	Gap       GapEvent            `json:"gap_event"`
	Squeeze   SqueezeReleaseEvent `json:"squeeze_event"`
}
