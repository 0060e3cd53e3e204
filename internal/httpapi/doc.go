// Package httpapi exposes the intake form service over HTTP for a browser or
// desktop front end.
//
//	GET  /healthz
//	GET  /api/v1/schema
//	POST /api/v1/sessions
//	POST /api/v1/sessions/{session_id}/autofill
//	POST /api/v1/forms
//	GET  /api/v1/forms/latest
package httpapi
