// Package cli provides the interactive foldershare command-line client.
//
// It wires configuration, the HTTP API client and the page coordinators
// from package services into a read-eval-print loop. Before the loop starts
// the client waits (with exponential backoff) for the API to answer, then a
// background watcher keeps the online/offline indicator current.
//
// At the top level the user manages folders (folders, mkdir, rmdir, open).
// Inside an opened folder the file commands (files, upload, view, link, rm)
// are gated by the folder's access state: a protected folder must be
// unlocked with its password first.
//
// The loop is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
