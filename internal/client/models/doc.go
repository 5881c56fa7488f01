// Package models defines the client-side view of the folder sharing API:
// folders, files and the small status payloads returned by the service.
//
// The JSON tags follow the API's snake_case field names. Decoding is
// lenient where the backend is: file sizes may arrive as numbers or numeric
// strings, and timestamps may lack a timezone.
package models
