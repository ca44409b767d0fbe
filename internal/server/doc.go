// Package server wires and runs the host's transport server.
//
// It provides orchestration for the HTTP server lifecycle and the
// background workers, including startup, signal handling, and graceful
// shutdown.
package server
