// Package middleware provides HTTP middleware for the API layer: CORS,
// per-IP and global rate limiting, and request correlation ids.
package middleware
