package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Request succeeded
	SymbolFail     = "✗" // Request failed
	SymbolWarning  = "⚠" // Some requests failed
	SymbolPending  = "○" // Nothing loaded yet
	SymbolProgress = "◐" // In flight
	SymbolComplete = "●" // Loaded
	SymbolSkipped  = "⊘" // Skipped
)
