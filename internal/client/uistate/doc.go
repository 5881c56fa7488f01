// Package uistate holds transient presentation state that outlives a single
// command: the notification snackbar and the delete confirmation dialog.
// Both are safe for concurrent use; the snackbar auto-dismisses on a timer
// goroutine.
package uistate
