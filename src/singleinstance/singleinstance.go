// Package singleinstance lets one resident Anemone own the overlay. Later
// invocations delegate their mode request to it over loopback TCP.
package singleinstance

import (
	"context"
	"errors"

	"anemone/src/mode"
)

// ErrBusy is reported to a client when the resident is already showing an overlay.
var ErrBusy = errors.New("resident is busy")

// Server owns the TCP endpoint and hands delegated requests to the resident.
type Server interface {
	// Start listens on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next delegated request, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one delegated request awaiting its reply.
type Conn interface {
	Request() Request
	// RespondCommitted sends the committed payload text.
	RespondCommitted(text string) error
	RespondCancelled() error
	RespondError(msg string) error
	Close() error
}

type Request struct {
	Mode mode.Mode
}

// Reply is what the resident answered.
type Reply struct {
	Committed bool
	Text      string
}

// Client delegates a mode request to a resident, if one is running.
type Client interface {
	// TryRun returns delegated=false, err=nil when no resident answers.
	TryRun(ctx context.Context, m mode.Mode) (delegated bool, reply Reply, err error)
}

func NewServer() Server { return newTCPServer() }

func NewClient() Client { return newTCPClient() }
