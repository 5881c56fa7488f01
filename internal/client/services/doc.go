// Package services contains the application logic of the foldershare client.
//
// Controllers own one slice of state each and are driven by the CLI:
//
//   - Uploader: one file upload at a time with percent progress and status.
//   - FolderList / FileList: server-ordered collections, refresh and the
//     two-step delete flow through a uistate.DeleteDialog.
//   - ConnectionTests: the ping and database diagnostics.
//
// HomePage and FolderDetailPage wire controllers together and route results
// into a shared uistate.Snackbar. Every failure is turned into state (a
// field error, a list error or a notice) and also returned to the caller.
// A refresh that follows a mutation is issued only after the mutation's
// response arrived.
package services

import "github.com/dmitrijs2005/foldershare/internal/common"

// ErrBusy is returned when a trigger is used while its action is in flight.
var ErrBusy = common.ErrBusy
