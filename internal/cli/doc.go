// Package cli implements the sensorboard command-line interface.
//
// Each Cobra command parses its flags and hands off to a command function
// (fetchCommand, statusCommand, ...) that takes its writers as arguments so
// tests can drive it against an httptest server.
//
// # Command Structure
//
//	sensorboard monitor             - Live TUI dashboard
//	sensorboard fetch               - Fetch once and print a summary
//	sensorboard status              - Print the server status document
//	sensorboard sensors [add]       - List or add configured sensors
//	sensorboard init                - Create .sensorboard.yaml
//	sensorboard history <sensor>    - Export recorded history
//	sensorboard version             - Print build information
//
// # Dependencies
//
// newApp loads and validates the config, applies the global flags and
// builds the logger, telemetry client and state store every command
// shares. app.recorder attaches history recording when storage.backend
// enables it. Release everything with app.Close.
//
// # Output
//
// One-shot commands print styled text by default. --format json wraps the
// result in a JSONEnvelope; --format yaml writes the bare document.
package cli
