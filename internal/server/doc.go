// Package server wires configuration, logging, metrics, the service
// registry, and the terminal provider into a running HTTP server.
//
// It owns the router, the optional idle-session reaper, and graceful
// shutdown: the listener drains first, then every terminal session closes.
package server
