// Package api exposes the mix pipeline over HTTP.
//
// Routes:
//
//	GET  /         service status, version, endpoints, binary availability
//	GET  /healthz  plain-text liveness, 503 when ffmpeg is missing
//	POST /mix      stems in, MP3 attachment out
//
// Every POST /mix gets a fresh request id, returned in X-Request-Id and in
// every error body. Validation failures answer 400 with the offending value;
// processing failures answer 500 after all scratch files are removed.
package api
