package models

import (
	"fmt"
	"time"
)

// ErrorKind classifies why a symbol dropped out of a scan.
type ErrorKind string

const (
	ErrDataUnavailable     ErrorKind = "data_unavailable"
	ErrInsufficientHistory ErrorKind = "insufficient_history"
	ErrFetchFailed         ErrorKind = "fetch_failed"
)

// SymbolError records a per-symbol failure. Failures are informational:
// the scan continues and surfaces them in the result, never as a hard error.
type SymbolError struct {
	Symbol string    `json:"symbol"`
	Kind   ErrorKind `json:"kind"`
	Err    error     `json:"-"`
}

func (e *SymbolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Symbol, e.Kind)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// ConfirmedEvent pairs a watchlist entry with its intraday confirmation.
type ConfirmedEvent struct {
	WatchlistEntry
	Confirmation ConfirmationResult `json:"confirmation"`
}

// ScanStats summarizes one pipeline run.
type ScanStats struct {
	SymbolsScanned int `json:"symbols_scanned"`
	DailyEvents    int `json:"daily_events"`
	WatchlistSize  int `json:"watchlist_size"`
	ConfirmedCount int `json:"confirmed_count"`
	FailureCount   int `json:"failure_count"`
}

// ScanResult is the terminal output of a pipeline run.
type ScanResult struct {
	RunID           string           `json:"run_id"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	Watchlist       []WatchlistEntry `json:"watchlist"`
	ConfirmedEvents []ConfirmedEvent `json:"confirmed_events"`
	Failures        []*SymbolError   `json:"failures,omitempty"`
	Stats           ScanStats        `json:"stats"`
}
