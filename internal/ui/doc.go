// Package ui provides terminal output components for sensorboard's one-shot
// commands: the branded header, the sensor table, the per-sensor fetch
// progress, the status spinner, the fetch summary and sparklines shared
// with the dashboard.
//
// # Color Scheme
//
// Semantic colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Succeeded requests, healthy sensors
//	ColorError     (red)    - Failed requests, sensors reporting errors
//	ColorWarning   (yellow) - Stale sensors, warning logs
//	ColorInfo      (cyan)   - Sparklines and targets
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (for --no-color).
//
// # Progress Usage
//
//	p := ui.NewParallelProgress(isTTY)
//	p.AddTask("server status", 1)
//	p.AddTask("tum-esm-midcost-raspi-1", 3)
//	p.Start()
//	// ... p.RequestDone(name, err == nil) once per finished request ...
//	p.Stop()
//
// A single request gets a Spinner instead:
//
//	s := ui.NewSpinner("Fetching status")
//	s.Start()
//	s.Success() // or s.Fail()
package ui
