// Package apitest provides an in-memory implementation of the folder sharing
// HTTP API for tests.
//
// The server keeps folders and files in memory, hashes folder passwords with
// bcrypt and tracks per-session folder grants through the "session" cookie.
// Signed URLs are real SigV4 presigned S3 GET URLs whose endpoint is the
// server's own /storage route, so a client can fetch file content with them.
//
//	srv, err := apitest.New()
//	...
//	defer srv.Close()
//	c, err := client.NewHTTPClient(srv.URL)
package apitest
