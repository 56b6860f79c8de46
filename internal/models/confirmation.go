package models

// ConfirmationStatus is the terminal state of the intraday confirmation
// state machine for one watchlist entry.
type ConfirmationStatus string

const (
	StatusNotEvaluated ConfirmationStatus = "NOT_EVALUATED"
	StatusConfirmed    ConfirmationStatus = "CONFIRMED"
	StatusNotConfirmed ConfirmationStatus = "NOT_CONFIRMED"
)

// Structure tags attached by the confirmation checks.
const (
	TagORBreakoutUp   = "OR_BREAKOUT_UP"
	TagORBreakoutDown = "OR_BREAKOUT_DOWN"
	TagORNoBreakout   = "OR_NO_BREAKOUT"
	TagVolExpansion   = "VOL_EXPANSION"
)

// OpeningRangeAnalysis describes how the session behaved relative to the
// opening range (first 30 minutes).
type OpeningRangeAnalysis struct {
	Tag     string  `json:"tag,omitempty"`
	Quality float64 `json:"quality"`
	High    float64 `json:"or_high,omitempty"`
	Low     float64 `json:"or_low,omitempty"`
}

// KeyLevelAnalysis describes whether intraday price tested one of the
// event's reference levels.
type KeyLevelAnalysis struct {
	Reacted     bool    `json:"reacted"`
	Tag         string  `json:"tag,omitempty"`
	Level       float64 `json:"level,omitempty"`
	BarsAtLevel int     `json:"bars_at_level,omitempty"`
}

// VolumeAnalysis compares first-half vs second-half session volume.
type VolumeAnalysis struct {
	Expanded bool    `json:"expanded"`
	Ratio    float64 `json:"vol_ratio"`
}

// ConfirmationResult is the terminal output of the pipeline for one
// watchlist entry: confirmed iff at least one structure check fired.
type ConfirmationResult struct {
	Status        ConfirmationStatus   `json:"status"`
	Confirmed     bool                 `json:"confirmed"`
	StructureTags []string             `json:"structure_tags,omitempty"`
	OpeningRange  OpeningRangeAnalysis `json:"or_analysis"`
	KeyLevel      KeyLevelAnalysis     `json:"level_analysis"`
	Volume        VolumeAnalysis       `json:"vol_analysis"`
}
