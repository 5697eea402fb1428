// Package monitor implements the sensorboard TUI: a list of sensors with a
// status indicator and last-activity times, and a scrollable detail view.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: holds a snapshot of the state store, the display order and
//     the selection
//   - Update: processes keystrokes, store notifications and populate reports
//   - View: renders the current snapshot
//
// # Message Flow
//
// The model never talks to the network itself:
//
//  1. populateCmd runs a populate cycle in the background
//  2. every successful request writes into the state store
//  3. the store notifies its subscribers; stateMsg refreshes the snapshot
//  4. reportMsg arrives once all requests have settled
//
// Every card looks itself up in the snapshot by its own name, so sensors
// whose requests failed or are still in flight render a neutral indicator
// and "never" while the rest of the list shows real data.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Re-fetch everything
//	s           - Cycle sort order (config/name/status/last data)
//	j/k, ↑/↓    - Navigate sensor list
//	Enter       - Open sensor detail view
//	Esc         - Back
//	?           - Toggle help overlay
package monitor
