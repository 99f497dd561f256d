// Package command implements the append-only shade command log and its
// admission policy.
//
// Every accepted command is one immutable row: what was asked, by whom,
// from which source, and what mode the device was effectively in at the
// moment of admission. The core never updates or deletes rows; status
// stays "pending" until a future device-facing controller reports back.
//
// Admission is a single gate. Manual commands are always accepted.
// Schedule-sourced commands are refused while a manual hold is in
// effect, while the schedule is disabled, or while today is skipped —
// all three refusals surface as the same conflict class.
package command
