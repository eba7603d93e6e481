// Package state shares trending search data between the background refresher
// and the UI.
//
// The refresher goroutine calls Update after each query to the counter
// backend; the UI reads a Snapshot on its own tick. Store guards the data with
// a sync.RWMutex and both directions copy the slice, so neither side can
// mutate what the other holds.
//
// On error Update keeps the previous list, records LastError and bumps
// ConsecutiveFailures. A success resets the counter. IsOffline reports two or
// more failures in a row, which the UI shows as a stale marker on the
// trending panel.
//
// The zero Store is ready to use.
package state
