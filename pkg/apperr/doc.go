// Package apperr defines the error taxonomy shared by the authorization
// and membership services: NotFound, Forbidden and Conflict.
//
// Services raise these typed errors; the HTTP boundary (pkg/httputil)
// maps them to status codes. The service layer never performs that
// mapping itself.
package apperr
