// Package access decides whether file operations on a folder are permitted.
//
// A Controller is created per opened folder. It loads the folder, works out
// whether the folder is public or password protected, verifies passwords
// and tracks the session grant the server keeps in a cookie. A 401 seen
// while the folder was verified revokes the grant locally and clears the
// signed URL cache, since cached URLs were issued under the old grant.
//
//	Unknown -> Loading -> Public
//	                   -> NeedsPassword <-> Verified
//	                   -> LoadError
//
// File listing and every file action must pass Permit first; denied actions
// are reported to the user and never sent.
package access
