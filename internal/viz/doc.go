// Package viz is the live terminal view of a running simulation.
//
// [Model] is a Bubble Tea program that doubles as the controller's frame
// scheduler: every tea.Tick runs the frame callbacks registered through
// [Model.RequestFrame], so all stepping and all commands happen on the
// Bubble Tea update goroutine.
//
// # Key Bindings
//
//	Space - Start/Stop
//	R     - Reset to the initial state
//	+/-   - Longer/shorter time step
//	Tab   - Cycle the displayed field
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
