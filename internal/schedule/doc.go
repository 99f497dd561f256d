// Package schedule stores weekly shade schedules and their date-scoped
// suspensions.
//
// A device has at most one schedule. The weekly program is keyed by
// short day codes (M, T, W, Th, F, Sa, Su) at the API boundary and
// saved wholesale: every save replaces the full entry set in one
// transaction, so concurrent editors resolve to last-writer-wins.
//
// "Skip today" is modelled as an override row keyed by device and UTC
// date, expiring at the end of that day. Expired overrides are treated
// as absent; re-enabling the schedule purges any override dated today
// or later.
package schedule
