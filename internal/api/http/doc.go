// Package http provides HTTP request handlers for the terminal service.
//
// Handlers expose service discovery and execution plus a REST surface over
// terminal sessions. Tool-level failures surface as structured results with
// success=false; only transport problems produce HTTP error statuses.
package http
